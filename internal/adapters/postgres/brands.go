package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TrustedBrands implements ports.BrandRepository.
func (db *DB) TrustedBrands(ctx context.Context) ([]string, error) {
	return db.column(ctx, `SELECT domain FROM trusted_brands WHERE enabled ORDER BY domain`)
}

func (db *DB) SuspiciousTLDs(ctx context.Context) ([]string, error) {
	return db.column(ctx, `SELECT suffix FROM suspicious_tlds ORDER BY suffix`)
}

func (db *DB) column(ctx context.Context, query string) ([]string, error) {
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
