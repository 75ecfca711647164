package ports

import (
	"context"

	"linkscan/internal/domain"
)

// Analyzer scores a single URL.
type Analyzer interface {
	Analyze(ctx context.Context, rawURL string) (domain.ThreatVerdict, error)
}

// Resolver maps a hostname to one IP address. An empty result means the host
// does not resolve.
type Resolver interface {
	Resolve(ctx context.Context, host string) (ip string, err error)
}

// Source is one reputation or intelligence lookup. Implementations never fail:
// any error, timeout or missing credential folds into the fallback payload of
// the returned Outcome.
type Source[T any] interface {
	Name() string
	Check(ctx context.Context, target domain.ScanTarget) domain.Outcome[T]
}
