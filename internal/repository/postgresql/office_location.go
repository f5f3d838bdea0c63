package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const officeLocationColumns = `id, name, latitude, longitude, radius_meters, allowed_ips, is_active, created_at`

type officeLocationRepository struct {
	db *database.DB
}

func NewOfficeLocationRepository(db *database.DB) attendance.OfficeLocationRepository {
	return &officeLocationRepository{db: db}
}

func scanOfficeLocation(row scanner) (attendance.OfficeLocation, error) {
	var l attendance.OfficeLocation
	err := row.Scan(&l.ID, &l.Name, &l.Latitude, &l.Longitude, &l.RadiusMeters, &l.AllowedIPs, &l.IsActive, &l.CreatedAt)
	return l, err
}

func (r *officeLocationRepository) Create(ctx context.Context, loc attendance.OfficeLocation) (attendance.OfficeLocation, error) {
	q := GetQuerier(ctx, r.db)
	if loc.AllowedIPs == nil {
		loc.AllowedIPs = []string{}
	}
	query := `
		INSERT INTO office_locations (name, latitude, longitude, radius_meters, allowed_ips, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + officeLocationColumns
	return scanOfficeLocation(q.QueryRow(ctx, query, loc.Name, loc.Latitude, loc.Longitude, loc.RadiusMeters, loc.AllowedIPs, loc.IsActive))
}

func (r *officeLocationRepository) GetByID(ctx context.Context, id string) (attendance.OfficeLocation, error) {
	q := GetQuerier(ctx, r.db)
	return scanOfficeLocation(q.QueryRow(ctx, `SELECT `+officeLocationColumns+` FROM office_locations WHERE id = $1`, id))
}

func (r *officeLocationRepository) List(ctx context.Context, activeOnly bool) ([]attendance.OfficeLocation, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT `+officeLocationColumns+` FROM office_locations WHERE (NOT $1 OR is_active) ORDER BY name`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query office locations: %w", err)
	}
	defer rows.Close()

	var out []attendance.OfficeLocation
	for rows.Next() {
		l, err := scanOfficeLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan office location: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *officeLocationRepository) Update(ctx context.Context, loc attendance.OfficeLocation) error {
	q := GetQuerier(ctx, r.db)
	if loc.AllowedIPs == nil {
		loc.AllowedIPs = []string{}
	}
	tag, err := q.Exec(ctx, `
		UPDATE office_locations
		SET name = $1, latitude = $2, longitude = $3, radius_meters = $4, allowed_ips = $5, is_active = $6
		WHERE id = $7`,
		loc.Name, loc.Latitude, loc.Longitude, loc.RadiusMeters, loc.AllowedIPs, loc.IsActive, loc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update office location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *officeLocationRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM office_locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete office location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
