// README: Pricing store backed by PostgreSQL.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// GetRates returns the most recently activated rate row, or def when the
// table is empty.
func (s *Store) GetRates(ctx context.Context, def Rates) (Rates, error) {
	var r Rates
	err := s.db.QueryRow(ctx, `
		SELECT base_fare, per_km, per_min, currency
		FROM fare_rates
		WHERE active
		ORDER BY updated_at DESC
		LIMIT 1`).Scan(&r.BaseFare, &r.PerKm, &r.PerMin, &r.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("load fare rates: %w", err)
	}
	return r, nil
}
