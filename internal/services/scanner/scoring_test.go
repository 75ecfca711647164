package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"linkscan/internal/domain"
)

func intPtr(n int) *int { return &n }

func TestEngineScore(t *testing.T) {
	cases := []struct {
		pos, total, want int
	}{
		{0, 0, 0},
		{0, 70, 0},
		{3, 0, 0},
		{1, 70, 10},
		{2, 70, 21},
		{5, 70, 33},
		{10, 20, 65},
		{70, 70, 90},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, engineScore(domain.EngineCounts{Positives: tc.pos, Total: tc.total}), "%d/%d", tc.pos, tc.total)
	}
}

func TestAbuseScore(t *testing.T) {
	assert.Equal(t, 0, abuseScore(0))
	assert.Equal(t, 0, abuseScore(3))
	assert.Equal(t, 1, abuseScore(4))
	assert.Equal(t, 26, abuseScore(87))
	assert.Equal(t, 30, abuseScore(100))
}

func TestAgeScore(t *testing.T) {
	assert.Equal(t, 0, ageScore(nil))
	assert.Equal(t, 30, ageScore(intPtr(0)))
	assert.Equal(t, 30, ageScore(intPtr(6)))
	assert.Equal(t, 20, ageScore(intPtr(7)))
	assert.Equal(t, 20, ageScore(intPtr(29)))
	assert.Equal(t, 10, ageScore(intPtr(89)))
	assert.Equal(t, 0, ageScore(intPtr(90)))
	assert.Equal(t, 0, ageScore(intPtr(1825)))
	assert.Equal(t, -10, ageScore(intPtr(1826)))
}

func TestClassify(t *testing.T) {
	for score := 0; score <= 100; score++ {
		got := Classify(score)
		switch {
		case score <= 20:
			assert.Equal(t, domain.Safe, got, score)
		case score <= 50:
			assert.Equal(t, domain.Suspicious, got, score)
		default:
			assert.Equal(t, domain.Malicious, got, score)
		}
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-60))
	assert.Equal(t, 42, Clamp(42))
	assert.Equal(t, 100, Clamp(245))
}

func TestScore_AllSignals(t *testing.T) {
	b := Score(Signals{
		Engines:         domain.EngineCounts{Positives: 10, Total: 20},
		AbuseConfidence: 50,
		SafeBrowsing:    true,
		PhishVerified:   true,
		Domain:          domain.DomainInfo{AgeDays: intPtr(3)},
		Heuristics:      HeuristicResult{Score: 55},
	})
	assert.Equal(t, domain.ScoreBreakdown{
		VirusTotal: 65, AbuseIPDB: 15, GoogleSafeBrowsing: 40, PhishTank: 40, AgeScore: 30, Heuristics: 55,
	}, b)
	assert.Equal(t, 245, b.Sum())
	assert.Equal(t, 100, Clamp(b.Sum()))
}

func TestScore_WhitelistPullsDown(t *testing.T) {
	b := Score(Signals{
		Whitelisted: true,
		Engines:     domain.EngineCounts{Positives: 2, Total: 70},
		Domain:      domain.DomainInfo{AgeDays: intPtr(9000)},
	})
	assert.Equal(t, -50, b.Whitelist)
	assert.Equal(t, -39, b.Sum())
	assert.Equal(t, 0, Clamp(b.Sum()))
}

func TestReasons(t *testing.T) {
	s := Signals{Whitelisted: true, Domain: domain.DomainInfo{AgeDays: intPtr(4000)}}
	assert.Equal(t, []string{"Whitelist modifier: -50"}, reasons(s, Score(s)))

	assert.Equal(t, []string{noSignalsReason}, reasons(Signals{}, Score(Signals{})))

	s = Signals{AbuseConfidence: 3}
	assert.Equal(t, []string{noSignalsReason}, reasons(s, Score(s)), "zero-point contributions stay silent")

	s = Signals{
		Engines:    domain.EngineCounts{Positives: 1, Total: 70},
		Domain:     domain.DomainInfo{AgeDays: intPtr(2)},
		Heuristics: HeuristicResult{Score: 25, Signals: []string{"raw-ip", "suspicious-tld"}},
	}
	assert.Equal(t, []string{
		"VirusTotal: 1/70 engines (10 pts)",
		"Domain age: registered 2 days ago (30 pts)",
		"Structural heuristics triggered: raw-ip, suspicious-tld (25 pts)",
	}, reasons(s, Score(s)))
}

func TestAPIVerdicts(t *testing.T) {
	assert.Equal(t, map[string]string{
		"Google Safe Browsing": "Clean",
		"VirusTotal":           "Clean",
		"PhishTank":            "Not in database",
		"AbuseIPDB":            "0% confidence",
	}, apiVerdicts(Signals{}))

	got := apiVerdicts(Signals{
		Engines:         domain.EngineCounts{Positives: 0, Total: 70},
		AbuseConfidence: 12,
		SafeBrowsing:    true,
		PhishVerified:   true,
	})
	assert.Equal(t, "0/70 matches", got["VirusTotal"])
	assert.Equal(t, "12% confidence", got["AbuseIPDB"])
	assert.Equal(t, "MALICIOUS", got["Google Safe Browsing"])
	assert.Equal(t, "VERIFIED PHISHING", got["PhishTank"])
}
