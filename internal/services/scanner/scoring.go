package scanner

import "linkscan/internal/domain"

const (
	whitelistModifier = -50
	safeBrowsingHit   = 40
	phishVerifiedHit  = 40
)

// Signals is everything the scoring formula consumes. It only ever holds
// payloads; source failures have already been folded into fallbacks.
type Signals struct {
	Whitelisted     bool
	Engines         domain.EngineCounts
	AbuseConfidence int
	SafeBrowsing    bool
	PhishVerified   bool
	Domain          domain.DomainInfo
	Heuristics      HeuristicResult
}

// Score computes one contribution per category. The raw score is
// breakdown.Sum(); Clamp it for the final score.
func Score(s Signals) domain.ScoreBreakdown {
	b := domain.ScoreBreakdown{
		VirusTotal: engineScore(s.Engines),
		AbuseIPDB:  abuseScore(s.AbuseConfidence),
		AgeScore:   ageScore(s.Domain.AgeDays),
		Heuristics: s.Heuristics.Score,
	}
	if s.Whitelisted {
		b.Whitelist = whitelistModifier
	}
	if s.SafeBrowsing {
		b.GoogleSafeBrowsing = safeBrowsingHit
	}
	if s.PhishVerified {
		b.PhishTank = phishVerifiedHit
	}
	return b
}

// engineScore is floor(positives/total * 50) plus a step penalty on the
// absolute number of flagging engines.
func engineScore(c domain.EngineCounts) int {
	if c.Positives <= 0 || c.Total <= 0 {
		return 0
	}
	ratio := c.Positives * 50 / c.Total
	switch {
	case c.Positives >= 10:
		return ratio + 40
	case c.Positives >= 5:
		return ratio + 30
	case c.Positives >= 2:
		return ratio + 20
	default:
		return ratio + 10
	}
}

func abuseScore(confidence int) int {
	if confidence <= 0 {
		return 0
	}
	return confidence * 3 / 10
}

func ageScore(days *int) int {
	if days == nil {
		return 0
	}
	switch d := *days; {
	case d < 7:
		return 30
	case d < 30:
		return 20
	case d < 90:
		return 10
	case d > 1825:
		return -10
	}
	return 0
}

// Clamp bounds a raw score to [0,100].
func Clamp(raw int) int {
	return max(0, min(100, raw))
}

// Classify maps a final score to its label.
func Classify(score int) domain.Classification {
	switch {
	case score >= 51:
		return domain.Malicious
	case score >= 21:
		return domain.Suspicious
	default:
		return domain.Safe
	}
}
