package scanner

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/publicsuffix"

	"linkscan/internal/domain"
)

var dottedQuad = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)\.(\d+)$`)

// normalizeURL trims raw and defaults the scheme to https.
func normalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		u = "https://" + u
	}
	return u
}

// isRawIPv4 matches a literal dotted-quad host with every group in 0..255.
func isRawIPv4(host string) bool {
	m := dottedQuad.FindStringSubmatch(host)
	if m == nil {
		return false
	}
	for _, g := range m[1:] {
		n, err := strconv.Atoi(g)
		if err != nil || n > 255 {
			return false
		}
	}
	return true
}

// parseTarget builds everything about the target except its IP.
func parseTarget(raw string) domain.ScanTarget {
	t := domain.ScanTarget{URL: normalizeURL(raw)}
	if u, err := url.Parse(t.URL); err == nil {
		t.Host = strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	}
	if t.Host == "" {
		return t
	}
	if isRawIPv4(t.Host) {
		t.IsRawIP = true
		t.RootDomain = t.Host
		return t
	}
	t.RootDomain, t.Suffix = registrable(t.Host)
	if t.Host != t.RootDomain {
		t.Subdomain = strings.TrimSuffix(t.Host, "."+t.RootDomain)
	}
	return t
}

// registrable returns the eTLD+1 of host and its public suffix, using only the
// ICANN section of the suffix list: evil.github.io belongs to github.io. Hosts
// the list cannot split fall back to their last two labels.
func registrable(host string) (root, suffix string) {
	suffix = icannSuffix(host)
	if rest, ok := strings.CutSuffix(host, "."+suffix); ok && rest != "" {
		if label := rest[strings.LastIndexByte(rest, '.')+1:]; label != "" {
			return label + "." + suffix, suffix
		}
	}
	labels := strings.Split(host, ".")
	if len(labels) >= 2 {
		labels = labels[len(labels)-2:]
	}
	root = strings.Join(labels, ".")
	if suffix == root {
		suffix = ""
	}
	return root, suffix
}

// icannSuffix drops privately registered suffixes (github.io, blogspot.com)
// until an ICANN-managed one remains.
func icannSuffix(host string) string {
	suffix, icann := publicsuffix.PublicSuffix(host)
	for !icann {
		i := strings.IndexByte(suffix, '.')
		if i < 0 {
			break
		}
		suffix, icann = publicsuffix.PublicSuffix(suffix[i+1:])
	}
	return suffix
}

// normalize parses raw and resolves its host. A failed lookup leaves IP empty.
func (s *Service) normalize(ctx context.Context, raw string) domain.ScanTarget {
	t := parseTarget(raw)
	if t.Host == "" {
		return t
	}
	ip, err := s.resolver.Resolve(ctx, t.Host)
	if err != nil {
		s.log.WithError(err).WithField("host", t.Host).Debug("dns resolution failed")
		return t
	}
	t.IP = ip
	return t
}
