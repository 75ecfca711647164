package reputation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/openrdap/rdap"

	"linkscan/internal/config"
	"linkscan/internal/domain"
)

// RDAP resolves a domain's registration date and registrar through the
// registry data access protocol. The default server, rdap.org, redirects to the
// authoritative registry, so no bootstrap lookup is needed.
type RDAP struct {
	endpoint
	client *rdap.Client
	server *url.URL
	now    func() time.Time
}

func NewRDAP(src config.Source, hc *http.Client) *RDAP {
	e := newEndpoint("rdap", src, hc)
	server, err := url.Parse(e.baseURL + "/")
	if err != nil {
		server = nil
	}
	return &RDAP{
		endpoint: e,
		client:   &rdap.Client{HTTP: e.http, UserAgent: userAgent},
		server:   server,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for age computation.
func (r *RDAP) WithClock(now func() time.Time) *RDAP {
	r.now = now
	return r
}

func (r *RDAP) Check(ctx context.Context, target domain.ScanTarget) domain.Outcome[domain.DomainInfo] {
	fallback := domain.UnknownDomain()
	if target.IsRawIP || target.RootDomain == "" {
		return domain.Fallback(fallback, "no registrable domain")
	}
	if r.server == nil {
		return domain.Fallback(fallback, "invalid rdap base url")
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.lookup(ctx, target.RootDomain)
	if err != nil {
		return domain.Fallback(fallback, err.Error())
	}

	info := domain.DomainInfo{Registrar: registrarName(res.Entities)}
	if created, ok := registeredAt(res.Events); ok {
		days := int(r.now().Sub(created).Hours() / 24)
		info.AgeDays = &days
	}
	if info.AgeDays == nil && info.Registrar == domain.Unknown {
		return domain.Fallback(fallback, "registry withheld registration data")
	}
	return domain.OK(info)
}

func (r *RDAP) lookup(ctx context.Context, root string) (*rdap.Domain, error) {
	req := (&rdap.Request{
		Type:   rdap.DomainRequest,
		Query:  root,
		Server: r.server,
	}).WithContext(ctx)
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.name, err)
	}
	d, ok := resp.Object.(*rdap.Domain)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected %T response", r.name, resp.Object)
	}
	return d, nil
}

// registeredAt returns the date of the first "registration" event.
func registeredAt(events []rdap.Event) (time.Time, bool) {
	for _, ev := range events {
		if ev.Action != "registration" {
			continue
		}
		t, err := time.Parse(time.RFC3339, ev.Date)
		return t, err == nil
	}
	return time.Time{}, false
}

// registrarName returns the vCard name of the registrar entity, or its handle.
func registrarName(entities []rdap.Entity) string {
	for _, e := range entities {
		if !slices.Contains(e.Roles, "registrar") {
			continue
		}
		if e.VCard != nil {
			if fn := e.VCard.Name(); fn != "" {
				return fn
			}
		}
		if e.Handle != "" {
			return e.Handle
		}
	}
	return domain.Unknown
}

// NoopDomainAge is selected when registry lookups are disabled.
type NoopDomainAge struct{}

func (NoopDomainAge) Name() string { return "rdap" }

func (NoopDomainAge) Check(context.Context, domain.ScanTarget) domain.Outcome[domain.DomainInfo] {
	return domain.Fallback(domain.UnknownDomain(), "registry lookup disabled")
}
