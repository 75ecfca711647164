package ports

import "context"

// BrandRepository supplies the trusted-brand catalog used by the whitelist and
// typosquatting checks.
type BrandRepository interface {
	TrustedBrands(ctx context.Context) ([]string, error)
	// SuspiciousTLDs returns suffixes with a leading dot, e.g. ".xyz".
	SuspiciousTLDs(ctx context.Context) ([]string, error)
}
