package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/site"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/database"
)

type siteRepository struct {
	db *database.DB
}

const siteColumns = `
	id, name, address, latitude, longitude, radius_meters,
	short_code, is_active, check_in_start_time, check_out_end_time,
	created_at, updated_at`

func scanSite(row pgx.Row) (site.Site, error) {
	var s site.Site
	err := row.Scan(
		&s.ID, &s.Name, &s.Address, &s.Latitude, &s.Longitude, &s.RadiusMeters,
		&s.ShortCode, &s.IsActive, &s.CheckInStartTime, &s.CheckOutEndTime,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// Create implements site.SiteRepository.
func (r *siteRepository) Create(ctx context.Context, s site.Site) (site.Site, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO sites (
			id, name, address, latitude, longitude, radius_meters,
			short_code, is_active, check_in_start_time, check_out_end_time
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		s.ID, s.Name, s.Address, s.Latitude, s.Longitude, s.RadiusMeters,
		s.ShortCode, s.IsActive, s.CheckInStartTime, s.CheckOutEndTime,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return site.Site{}, site.ErrShortCodeExists
		}
		return site.Site{}, fmt.Errorf("failed to create site: %w", err)
	}

	return s, nil
}

// Update implements site.SiteRepository.
func (r *siteRepository) Update(ctx context.Context, s site.Site) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE sites SET
			name = $2,
			address = $3,
			latitude = $4,
			longitude = $5,
			radius_meters = $6,
			short_code = $7,
			is_active = $8,
			check_in_start_time = $9,
			check_out_end_time = $10,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		s.ID, s.Name, s.Address, s.Latitude, s.Longitude, s.RadiusMeters,
		s.ShortCode, s.IsActive, s.CheckInStartTime, s.CheckOutEndTime,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return site.ErrShortCodeExists
		}
		return fmt.Errorf("failed to update site: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return site.ErrSiteNotFound
	}

	return nil
}

// GetByID implements site.SiteRepository.
func (r *siteRepository) GetByID(ctx context.Context, id string) (site.Site, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + siteColumns + ` FROM sites WHERE id = $1`

	s, err := scanSite(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return site.Site{}, site.ErrSiteNotFound
		}
		return site.Site{}, fmt.Errorf("failed to get site: %w", err)
	}

	return s, nil
}

// GetByShortCode implements site.SiteRepository.
func (r *siteRepository) GetByShortCode(ctx context.Context, code string) (site.Site, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + siteColumns + ` FROM sites WHERE short_code = $1`

	s, err := scanSite(q.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return site.Site{}, site.ErrSiteNotFound
		}
		return site.Site{}, fmt.Errorf("failed to get site by short code: %w", err)
	}

	return s, nil
}

// ListActive implements site.SiteRepository.
func (r *siteRepository) ListActive(ctx context.Context) ([]site.Site, error) {
	return r.list(ctx, `SELECT `+siteColumns+` FROM sites WHERE is_active ORDER BY name ASC`)
}

// List implements site.SiteRepository.
func (r *siteRepository) List(ctx context.Context) ([]site.Site, error) {
	return r.list(ctx, `SELECT `+siteColumns+` FROM sites ORDER BY name ASC`)
}

func (r *siteRepository) list(ctx context.Context, query string) ([]site.Site, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []site.Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sites: %w", err)
	}

	return sites, nil
}

// Deactivate implements site.SiteRepository.
func (r *siteRepository) Deactivate(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE sites SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate site: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return site.ErrSiteNotFound
	}

	return nil
}

func NewSiteRepository(db *database.DB) site.SiteRepository {
	return &siteRepository{db: db}
}
