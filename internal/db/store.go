package db

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Store reads calibration rows and comparable sales from Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schemaSQL)
	return err
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListRateCalibration returns rows in insertion order so that the first
// matching bracket is stable across loads.
func (s *Store) ListRateCalibration(ctx context.Context) ([]models.RateCalibrationEntry, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT region, crane_type, capacity_low, capacity_high, bare_monthly_rate, operated_ratio, COALESCE(source, '')
		FROM rate_calibration
		ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RateCalibrationEntry
	for rows.Next() {
		var e models.RateCalibrationEntry
		if err := rows.Scan(&e.Region, &e.CraneType, &e.CapacityLow, &e.CapacityHigh, &e.BareMonthlyRate, &e.OperatedRatio, &e.Source); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ListComparables(ctx context.Context) ([]models.Comparable, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, manufacturer, model, year, crane_type, capacity, price, COALESCE(region, ''), sold_at, COALESCE(source, '')
		FROM comparable_sales
		WHERE capacity > 0 AND price > 0
		ORDER BY sold_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Comparable
	for rows.Next() {
		var c models.Comparable
		if err := rows.Scan(&c.ID, &c.Manufacturer, &c.Model, &c.Year, &c.CraneType, &c.Capacity, &c.Price, &c.Region, &c.SoldAt, &c.Source); err != nil {
			return nil, err
		}
		if c.Source == "" {
			c.Source = "comparable_sales"
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ReplaceRateCalibration swaps the whole table in one transaction.
func (s *Store) ReplaceRateCalibration(ctx context.Context, entries []models.RateCalibrationEntry) (int64, error) {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{string(e.Region), string(e.CraneType), e.CapacityLow, e.CapacityHigh, e.BareMonthlyRate, e.OperatedRatio, e.Source})
	}
	var n int64
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM rate_calibration`); err != nil {
			return err
		}
		var err error
		n, err = tx.CopyFrom(ctx, pgx.Identifier{"rate_calibration"},
			[]string{"region", "crane_type", "capacity_low", "capacity_high", "bare_monthly_rate", "operated_ratio", "source"},
			pgx.CopyFromRows(rows))
		return err
	})
	return n, err
}

func (s *Store) UpsertComparables(ctx context.Context, comps []models.Comparable) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		for _, c := range comps {
			_, err := tx.Exec(ctx, `
				INSERT INTO comparable_sales (id, manufacturer, model, year, crane_type, capacity, price, region, sold_at, source)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				ON CONFLICT (id) DO UPDATE SET
					manufacturer = EXCLUDED.manufacturer,
					model = EXCLUDED.model,
					year = EXCLUDED.year,
					crane_type = EXCLUDED.crane_type,
					capacity = EXCLUDED.capacity,
					price = EXCLUDED.price,
					region = EXCLUDED.region,
					sold_at = EXCLUDED.sold_at,
					source = EXCLUDED.source`,
				c.ID, c.Manufacturer, c.Model, c.Year, string(c.CraneType), c.Capacity, c.Price, string(c.Region), c.SoldAt, c.Source)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
