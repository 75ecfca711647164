package scanner

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"linkscan/internal/cache"
	"linkscan/internal/domain"
	"linkscan/internal/logging"
	"linkscan/internal/ports"
	"linkscan/internal/services/brands"
)

var (
	ErrInvalidInput   = errString("URL cannot be empty")
	ErrAnalysisFailed = errString("analysis failed")
)

type errString string

func (e errString) Error() string { return string(e) }

// Sources are the reputation and intelligence lookups run for every scan.
type Sources struct {
	VirusTotal   ports.Source[domain.EngineCounts]
	AbuseIPDB    ports.Source[int]
	SafeBrowsing ports.Source[bool]
	PhishTank    ports.Source[bool]
	DomainAge    ports.Source[domain.DomainInfo]
	GeoIP        ports.Source[domain.IPInfo]
}

// Service is the URL threat scoring engine.
type Service struct {
	resolver ports.Resolver
	sources  Sources
	catalog  *brands.Catalog
	results  *cache.Cache[domain.ThreatVerdict]
	log      logrus.FieldLogger
}

// New builds the engine. results may be nil to disable caching; a nil
// catalog means the built-in lists and a nil log discards output.
func New(resolver ports.Resolver, sources Sources, catalog *brands.Catalog, results *cache.Cache[domain.ThreatVerdict], log logrus.FieldLogger) *Service {
	if catalog == nil {
		catalog = brands.Default()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Service{resolver: resolver, sources: sources, catalog: catalog, results: results, log: log}
}

// Analyze scores rawURL. Only blank input and internal failures return an
// error; an unresolvable host yields an UNREACHABLE verdict.
func (s *Service) Analyze(ctx context.Context, rawURL string) (domain.ThreatVerdict, error) {
	if strings.TrimSpace(rawURL) == "" {
		return domain.ThreatVerdict{}, ErrInvalidInput
	}
	target := s.normalize(ctx, rawURL)
	if !target.Resolved() {
		s.log.WithField("url", target.URL).Info("scan unreachable")
		return unreachable(target.URL), nil
	}
	if s.results == nil {
		return s.scan(ctx, target)
	}

	v, hit, err := s.results.GetOrLoad(ctx, resultKey(target), func(ctx context.Context) (domain.ThreatVerdict, bool, error) {
		v, err := s.scan(ctx, target)
		return v, err == nil, err
	})
	if err != nil {
		return domain.ThreatVerdict{}, err
	}
	v = clone(v)
	v.URL = target.URL
	v.FromCache = hit
	return v, nil
}

// resultKey folds case in the scheme and host only. Paths and queries are
// case-sensitive and so are the reputation lookups made for them.
func resultKey(t domain.ScanTarget) string {
	u, err := url.Parse(t.URL)
	if err != nil {
		return cache.Key("url", t.URL)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return cache.Key("url", u.String())
}

func (s *Service) scan(ctx context.Context, t domain.ScanTarget) (domain.ThreatVerdict, error) {
	start := time.Now()
	sig, ip, err := s.gather(ctx, t)
	if err != nil {
		return domain.ThreatVerdict{}, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	v := assemble(t, sig, ip, Score(sig))
	s.log.WithFields(logrus.Fields{
		"url":            v.URL,
		"score":          v.FinalScore,
		"raw_score":      v.Breakdown.Sum(),
		"classification": v.Classification,
		"duration_ms":    time.Since(start).Milliseconds(),
	}).Info("scan complete")
	return v, nil
}

// gather runs every source and the heuristics concurrently and waits for all
// of them. The batch is detached from ctx cancellation; each source bounds
// itself with its own timeout.
func (s *Service) gather(ctx context.Context, t domain.ScanTarget) (Signals, domain.IPInfo, error) {
	ctx = context.WithoutCancel(ctx)
	sig := Signals{Whitelisted: s.catalog.IsTrusted(t.RootDomain)}
	var ip domain.IPInfo

	var g errgroup.Group
	g.Go(task(func() { sig.Engines = check(ctx, s.sources.VirusTotal, t, s.log) }))
	g.Go(task(func() { sig.AbuseConfidence = check(ctx, s.sources.AbuseIPDB, t, s.log) }))
	g.Go(task(func() { sig.SafeBrowsing = check(ctx, s.sources.SafeBrowsing, t, s.log) }))
	g.Go(task(func() { sig.PhishVerified = check(ctx, s.sources.PhishTank, t, s.log) }))
	g.Go(task(func() { sig.Domain = check(ctx, s.sources.DomainAge, t, s.log) }))
	g.Go(task(func() { ip = check(ctx, s.sources.GeoIP, t, s.log) }))
	g.Go(task(func() { sig.Heuristics = Heuristics(t, s.catalog, sig.Whitelisted) }))
	if err := g.Wait(); err != nil {
		return Signals{}, domain.IPInfo{}, err
	}
	return sig, ip, nil
}

// check unwraps a source outcome, noting degraded sources for diagnostics.
func check[T any](ctx context.Context, src ports.Source[T], t domain.ScanTarget, log logrus.FieldLogger) T {
	out := src.Check(ctx, t)
	if out.Degraded {
		log.WithFields(logrus.Fields{"source": src.Name(), "url": t.URL, "note": out.Note}).Debug("source degraded, using fallback")
	}
	return out.Value
}

// task adapts fn for errgroup, reporting a panic as an error.
func task(fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		fn()
		return nil
	}
}

// clone copies the reference fields of a cached verdict.
func clone(v domain.ThreatVerdict) domain.ThreatVerdict {
	v.Reasons = slices.Clone(v.Reasons)
	v.APIVerdicts = maps.Clone(v.APIVerdicts)
	if v.DomainInfo != nil {
		d := *v.DomainInfo
		v.DomainInfo = &d
	}
	if v.IPInfo != nil {
		i := *v.IPInfo
		v.IPInfo = &i
	}
	return v
}
