package scanner

import (
	"fmt"
	"strings"

	"linkscan/internal/domain"
)

const (
	noSignalsReason   = "no threat signals detected"
	unreachableReason = "Domain does not resolve to an IP (site is offline or invalid)"
)

// Verdict map keys.
const (
	verdictSafeBrowsing = "Google Safe Browsing"
	verdictVirusTotal   = "VirusTotal"
	verdictPhishTank    = "PhishTank"
	verdictAbuseIPDB    = "AbuseIPDB"
)

func assemble(t domain.ScanTarget, s Signals, ip domain.IPInfo, b domain.ScoreBreakdown) domain.ThreatVerdict {
	final := Clamp(b.Sum())
	class := Classify(final)
	info := s.Domain
	return domain.ThreatVerdict{
		URL:            t.URL,
		Score:          final,
		FinalScore:     final,
		Classification: class,
		ThreatLevel:    class,
		Breakdown:      b,
		Reasons:        reasons(s, b),
		APIVerdicts:    apiVerdicts(s),
		DomainInfo:     &info,
		IPInfo:         &ip,
	}
}

// unreachable is the terminal verdict for a host that does not resolve.
func unreachable(url string) domain.ThreatVerdict {
	return domain.ThreatVerdict{
		URL:            url,
		Classification: domain.Unreachable,
		ThreatLevel:    domain.Unreachable,
		Reasons:        []string{unreachableReason},
		APIVerdicts:    map[string]string{},
	}
}

func reasons(s Signals, b domain.ScoreBreakdown) []string {
	var out []string
	if b.Whitelist < 0 {
		out = append(out, fmt.Sprintf("Whitelist modifier: %d", b.Whitelist))
	}
	if b.VirusTotal > 0 {
		out = append(out, fmt.Sprintf("VirusTotal: %d/%d engines (%d pts)", s.Engines.Positives, s.Engines.Total, b.VirusTotal))
	}
	if b.AbuseIPDB > 0 {
		out = append(out, fmt.Sprintf("AbuseIPDB: %d%% confidence (%d pts)", s.AbuseConfidence, b.AbuseIPDB))
	}
	if b.GoogleSafeBrowsing > 0 {
		out = append(out, fmt.Sprintf("Google Safe Browsing: MALICIOUS (%d pts)", b.GoogleSafeBrowsing))
	}
	if b.PhishTank > 0 {
		out = append(out, fmt.Sprintf("PhishTank: VERIFIED PHISHING (%d pts)", b.PhishTank))
	}
	if b.AgeScore > 0 {
		out = append(out, fmt.Sprintf("Domain age: registered %d days ago (%d pts)", *s.Domain.AgeDays, b.AgeScore))
	}
	if b.Heuristics > 0 {
		out = append(out, fmt.Sprintf("Structural heuristics triggered: %s (%d pts)", strings.Join(s.Heuristics.Signals, ", "), b.Heuristics))
	}
	if len(out) == 0 {
		out = append(out, noSignalsReason)
	}
	return out
}

// apiVerdicts reports raw source answers, independent of their weight.
func apiVerdicts(s Signals) map[string]string {
	vt := "Clean"
	if s.Engines.Total > 0 {
		vt = fmt.Sprintf("%d/%d matches", s.Engines.Positives, s.Engines.Total)
	}
	sb := "Clean"
	if s.SafeBrowsing {
		sb = "MALICIOUS"
	}
	pt := "Not in database"
	if s.PhishVerified {
		pt = "VERIFIED PHISHING"
	}
	return map[string]string{
		verdictSafeBrowsing: sb,
		verdictVirusTotal:   vt,
		verdictPhishTank:    pt,
		verdictAbuseIPDB:    fmt.Sprintf("%d%% confidence", s.AbuseConfidence),
	}
}
