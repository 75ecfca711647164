package brandfile

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Repository serves a brand catalog read from a YAML file:
//
//	trusted_brands: [paypal.com, google.com]
//	suspicious_tlds: [.xyz, .tk]
//
// The file is re-read on every call so catalog refreshes pick up edits.
type Repository struct {
	path string
}

type document struct {
	TrustedBrands  []string `yaml:"trusted_brands"`
	SuspiciousTLDs []string `yaml:"suspicious_tlds"`
}

// Open checks that path holds a readable catalog.
func Open(path string) (*Repository, error) {
	r := &Repository{path: path}
	if _, err := r.read(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) read() (document, error) {
	var doc document
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return doc, fmt.Errorf("read brand file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("parse brand file %s: %w", r.path, err)
	}
	return doc, nil
}

func (r *Repository) TrustedBrands(context.Context) ([]string, error) {
	doc, err := r.read()
	return doc.TrustedBrands, err
}

func (r *Repository) SuspiciousTLDs(context.Context) ([]string, error) {
	doc, err := r.read()
	return doc.SuspiciousTLDs, err
}
