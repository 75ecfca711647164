package brands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"linkscan/internal/logging"
	"linkscan/internal/ports"
)

// DefaultTrusted is the built-in trusted-brand list.
var DefaultTrusted = []string{
	"google.com", "gov.in", "nic.in", "sbi.co.in", "rbi.org.in", "npci.org.in",
	"hdfc.com", "icicibank.com", "microsoft.com", "apple.com", "amazon.in",
}

// DefaultSuspiciousTLDs are suffixes frequently used for throwaway domains.
var DefaultSuspiciousTLDs = []string{".xyz", ".tk", ".top", ".gq", ".ml"}

// Catalog holds the trusted brands and suspicious TLDs. Its contents can be
// swapped atomically with Replace while scans read it.
type Catalog struct {
	snap atomic.Pointer[snapshot]
}

type snapshot struct {
	trusted map[string]struct{}
	ordered []string
	tlds    map[string]struct{}
}

func NewCatalog(trusted, tlds []string) *Catalog {
	sn := &snapshot{trusted: make(map[string]struct{}), tlds: make(map[string]struct{})}
	for _, b := range trusted {
		b = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(b), "."))
		if b == "" {
			continue
		}
		if _, dup := sn.trusted[b]; !dup {
			sn.trusted[b] = struct{}{}
			sn.ordered = append(sn.ordered, b)
		}
	}
	sort.Strings(sn.ordered)
	for _, t := range tlds {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, ".") {
			t = "." + t
		}
		sn.tlds[t] = struct{}{}
	}
	c := &Catalog{}
	c.snap.Store(sn)
	return c
}

func Default() *Catalog { return NewCatalog(DefaultTrusted, DefaultSuspiciousTLDs) }

// IsTrusted reports an exact match of a registrable domain.
func (c *Catalog) IsTrusted(root string) bool {
	_, ok := c.snap.Load().trusted[strings.ToLower(root)]
	return ok
}

// Brands returns the trusted brands in sorted order.
func (c *Catalog) Brands() []string { return c.snap.Load().ordered }

// IsSuspiciousTLD takes a suffix with its leading dot, e.g. ".xyz".
func (c *Catalog) IsSuspiciousTLD(suffix string) bool {
	_, ok := c.snap.Load().tlds[strings.ToLower(suffix)]
	return ok
}

// Replace swaps in the contents of next.
func (c *Catalog) Replace(next *Catalog) { c.snap.Store(next.snap.Load()) }

func (c *Catalog) counts() logrus.Fields {
	sn := c.snap.Load()
	return logrus.Fields{"brands": len(sn.ordered), "tlds": len(sn.tlds)}
}

// Service loads the catalog from a repository, falling back to the built-in
// lists when the repository is absent, empty or failing.
type Service struct {
	repo    ports.BrandRepository
	log     logrus.FieldLogger
	current *Catalog
}

func New(repo ports.BrandRepository, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logging.Discard()
	}
	return &Service{repo: repo, log: log}
}

// Load builds the catalog once at startup. Later calls to Refresh update the
// returned catalog in place.
func (s *Service) Load(ctx context.Context) *Catalog {
	if s.repo == nil {
		s.current = Default()
		return s.current
	}
	trusted, err := s.repo.TrustedBrands(ctx)
	if err != nil {
		s.log.WithError(err).Warn("trusted brands unavailable, using built-in list")
		trusted = nil
	}
	if len(trusted) == 0 {
		trusted = DefaultTrusted
	}
	tlds, err := s.repo.SuspiciousTLDs(ctx)
	if err != nil {
		s.log.WithError(err).Warn("suspicious tlds unavailable, using built-in list")
		tlds = nil
	}
	if len(tlds) == 0 {
		tlds = DefaultSuspiciousTLDs
	}
	s.current = NewCatalog(trusted, tlds)
	s.log.WithFields(s.current.counts()).Info("brand catalog loaded")
	return s.current
}

// Refresh re-reads the repository into the loaded catalog. Unlike Load it
// keeps the current contents when the repository fails.
func (s *Service) Refresh(ctx context.Context) error {
	if s.repo == nil || s.current == nil {
		return nil
	}
	trusted, err := s.repo.TrustedBrands(ctx)
	if err != nil {
		return fmt.Errorf("refresh trusted brands: %w", err)
	}
	tlds, err := s.repo.SuspiciousTLDs(ctx)
	if err != nil {
		return fmt.Errorf("refresh suspicious tlds: %w", err)
	}
	if len(trusted) == 0 {
		trusted = DefaultTrusted
	}
	if len(tlds) == 0 {
		tlds = DefaultSuspiciousTLDs
	}
	s.current.Replace(NewCatalog(trusted, tlds))
	s.log.WithFields(s.current.counts()).Debug("brand catalog refreshed")
	return nil
}
