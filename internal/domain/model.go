package domain

// Core domain models used by the scanner. The JSON tags define the wire shape
// returned by the HTTP adapter; keep them stable.

// ScanTarget is the normalized form of a user-supplied URL. It is derived once
// per request and never mutated afterwards.
type ScanTarget struct {
	URL        string
	Host       string
	RootDomain string
	Suffix     string // public suffix, empty for literal IPs
	Subdomain  string // labels left of RootDomain
	IP         string // empty when the host did not resolve
	IsRawIP    bool
}

// Resolved reports whether the target can be scanned at all.
func (t ScanTarget) Resolved() bool { return t.IP != "" || t.IsRawIP }

// Outcome carries the result of one reputation source. Value is always usable:
// either the parsed response or the source's documented fallback. Degraded is
// set when the fallback was used and is only meant for diagnostics.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Note     string
}

// OK wraps a successful payload.
func OK[T any](v T) Outcome[T] { return Outcome[T]{Value: v} }

// Fallback wraps a source's neutral value together with the reason it was used.
func Fallback[T any](v T, note string) Outcome[T] {
	return Outcome[T]{Value: v, Degraded: true, Note: note}
}

// EngineCounts is the multi-engine scan result.
type EngineCounts struct {
	Positives int
	Total     int
}

type DomainInfo struct {
	AgeDays   *int   `json:"age_days"`
	Registrar string `json:"registrar"`
}

type IPInfo struct {
	IP      string `json:"ip"`
	Country string `json:"server_country"`
	ISP     string `json:"isp"`
}

const Unknown = "Unknown"

// UnknownDomain is the registry lookup fallback.
func UnknownDomain() DomainInfo { return DomainInfo{Registrar: Unknown} }

// UnknownIP is the geolocation fallback for ip; an empty ip becomes "Unknown".
func UnknownIP(ip string) IPInfo {
	if ip == "" {
		ip = Unknown
	}
	return IPInfo{IP: ip, Country: Unknown, ISP: Unknown}
}

// ScoreBreakdown holds one signed contribution per signal category.
type ScoreBreakdown struct {
	Whitelist          int `json:"whitelist"`
	VirusTotal         int `json:"virustotal"`
	AbuseIPDB          int `json:"abuseipdb"`
	GoogleSafeBrowsing int `json:"google_safe_browsing"`
	PhishTank          int `json:"phishtank"`
	AgeScore           int `json:"age_score"`
	Heuristics         int `json:"heuristics"`
}

// Sum is the raw, unclamped score.
func (b ScoreBreakdown) Sum() int {
	return b.Whitelist + b.VirusTotal + b.AbuseIPDB + b.GoogleSafeBrowsing + b.PhishTank + b.AgeScore + b.Heuristics
}

type Classification string

const (
	Safe        Classification = "SAFE"
	Suspicious  Classification = "SUSPICIOUS"
	Malicious   Classification = "MALICIOUS"
	Unreachable Classification = "UNREACHABLE"
)

// ThreatVerdict is the complete answer for one scanned URL.
type ThreatVerdict struct {
	URL            string            `json:"url"`
	Score          int               `json:"score"`
	FinalScore     int               `json:"final_score"`
	Classification Classification    `json:"classification"`
	ThreatLevel    Classification    `json:"threat_level"`
	Breakdown      ScoreBreakdown    `json:"breakdown"`
	Reasons        []string          `json:"reasons"`
	APIVerdicts    map[string]string `json:"api_verdicts"`
	DomainInfo     *DomainInfo       `json:"domain_info"`
	IPInfo         *IPInfo           `json:"ip_info"`
	FromCache      bool              `json:"from_cache"`
}
