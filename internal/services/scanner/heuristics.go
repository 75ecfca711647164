package scanner

import (
	"strings"
	"unicode/utf8"

	"linkscan/internal/domain"
	"linkscan/internal/services/brands"
)

const (
	rawIPPoints         = 15
	punycodePoints      = 15
	longURLPoints       = 5
	deepSubdomainPoints = 10
	suspiciousTLDPoints = 10
	typosquatPoints     = 40

	longURLThreshold    = 100
	deepSubdomainLabels = 3
	minTyposquatBrand   = 4
)

// HeuristicResult is the local structural analysis of a target.
type HeuristicResult struct {
	Score   int
	Signals []string
	// Brand is the trusted brand the root domain imitates, if any.
	Brand string
}

// Heuristics scores structural and lexical red flags. The typosquatting check
// is skipped for whitelisted targets.
func Heuristics(t domain.ScanTarget, catalog *brands.Catalog, whitelisted bool) HeuristicResult {
	var h HeuristicResult
	add := func(points int, signal string) {
		h.Score += points
		h.Signals = append(h.Signals, signal)
	}

	if t.IsRawIP {
		add(rawIPPoints, "raw-ip")
	}
	if strings.Contains(t.Host, "xn--") {
		add(punycodePoints, "punycode")
	}
	if len(t.URL) > longURLThreshold {
		add(longURLPoints, "long-url")
	}
	if subdomainDepth(t.Subdomain) >= deepSubdomainLabels {
		add(deepSubdomainPoints, "deep-subdomain")
	}
	if t.Suffix != "" && catalog.IsSuspiciousTLD("."+t.Suffix) {
		add(suspiciousTLDPoints, "suspicious-tld")
	}
	if !whitelisted {
		if brand, ok := imitates(t.RootDomain, catalog.Brands()); ok {
			h.Brand = brand
			add(typosquatPoints, "typosquat:"+brand)
		}
	}
	return h
}

func subdomainDepth(sub string) int {
	n := 0
	for _, label := range strings.Split(sub, ".") {
		if label != "" {
			n++
		}
	}
	return n
}

// imitates returns the first brand within edit distance 1-2 of root. Brands of
// minTyposquatBrand characters or fewer are ignored.
func imitates(root string, brands []string) (string, bool) {
	if root == "" {
		return "", false
	}
	rootLen := utf8.RuneCountInString(root)
	for _, brand := range brands {
		brandLen := utf8.RuneCountInString(brand)
		if brandLen <= minTyposquatBrand {
			continue
		}
		if diff := rootLen - brandLen; diff > 2 || diff < -2 {
			continue
		}
		if d := Distance(root, brand); d == 1 || d == 2 {
			return brand, true
		}
	}
	return "", false
}
