package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Michael-Aga/shirel-beauty/libs/db"
	"github.com/Michael-Aga/shirel-beauty/services/booking-service/internal/model"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func (r *Repository) ListActiveServices(ctx context.Context) ([]model.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, duration_min, price, active
		FROM services
		WHERE active
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.DurationMin, &s.Price, &s.Active); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *Repository) GetService(ctx context.Context, id string) (model.Service, error) {
	var s model.Service
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, duration_min, price, active
		FROM services
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.DurationMin, &s.Price, &s.Active)
	return s, err
}

func (r *Repository) GetOverride(ctx context.Context, date string) (model.DayOverride, error) {
	var ov model.DayOverride
	err := r.pool.QueryRow(ctx, `
		SELECT id, date::text, is_closed, COALESCE(open_min, 0), COALESCE(close_min, 0)
		FROM day_overrides
		WHERE date = $1
	`, date).Scan(&ov.ID, &ov.Date, &ov.IsClosed, &ov.OpenMin, &ov.CloseMin)
	return ov, err
}

func (r *Repository) ListOverrides(ctx context.Context, from, to string) ([]model.DayOverride, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, date::text, is_closed, COALESCE(open_min, 0), COALESCE(close_min, 0)
		FROM day_overrides
		WHERE date >= $1 AND date <= $2
		ORDER BY date
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []model.DayOverride
	for rows.Next() {
		var ov model.DayOverride
		if err := rows.Scan(&ov.ID, &ov.Date, &ov.IsClosed, &ov.OpenMin, &ov.CloseMin); err != nil {
			return nil, err
		}
		overrides = append(overrides, ov)
	}
	return overrides, rows.Err()
}

func (r *Repository) UpsertOverride(ctx context.Context, ov model.DayOverride) (model.DayOverride, error) {
	var openMin, closeMin *int
	if !ov.IsClosed {
		openMin, closeMin = &ov.OpenMin, &ov.CloseMin
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO day_overrides (id, date, is_closed, open_min, close_min)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (date) DO UPDATE
		SET is_closed = EXCLUDED.is_closed,
			open_min = EXCLUDED.open_min,
			close_min = EXCLUDED.close_min
		RETURNING id, date::text, is_closed, COALESCE(open_min, 0), COALESCE(close_min, 0)
	`, uuid.NewString(), ov.Date, ov.IsClosed, openMin, closeMin).Scan(
		&ov.ID, &ov.Date, &ov.IsClosed, &ov.OpenMin, &ov.CloseMin)
	return ov, err
}

func (r *Repository) DeleteOverride(ctx context.Context, date string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM day_overrides WHERE date = $1`, date)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
