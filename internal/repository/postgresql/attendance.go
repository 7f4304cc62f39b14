package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/attendance"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/database"
)

type attendanceRecordRepository struct {
	db *database.DB
}

const recordColumns = `
	id, user_id, day,
	check_in_time, check_in_site_id, check_in_site_name,
	check_in_latitude, check_in_longitude, check_in_method,
	check_out_time, check_out_site_id, check_out_site_name,
	check_out_latitude, check_out_longitude, check_out_method,
	work_hours, status,
	is_remote_checkin, different_checkout_location, missed_checkout,
	auto_checkout, gps_unverified,
	created_at, updated_at`

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Day,
		&rec.CheckInTime, &rec.CheckInSiteID, &rec.CheckInSiteName,
		&rec.CheckInLatitude, &rec.CheckInLongitude, &rec.CheckInMethod,
		&rec.CheckOutTime, &rec.CheckOutSiteID, &rec.CheckOutSiteName,
		&rec.CheckOutLatitude, &rec.CheckOutLongitude, &rec.CheckOutMethod,
		&rec.WorkHours, &rec.Status,
		&rec.IsRemoteCheckin, &rec.DifferentCheckoutLocation, &rec.MissedCheckout,
		&rec.AutoCheckout, &rec.GPSUnverified,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// Create implements attendance.RecordRepository.
func (a *attendanceRecordRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			id, user_id, day,
			check_in_time, check_in_site_id, check_in_site_name,
			check_in_latitude, check_in_longitude, check_in_method,
			status, is_remote_checkin, gps_unverified
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.ID,
		rec.UserID,
		rec.Day,
		rec.CheckInTime,
		rec.CheckInSiteID,
		rec.CheckInSiteName,
		rec.CheckInLatitude,
		rec.CheckInLongitude,
		rec.CheckInMethod,
		rec.Status,
		rec.IsRemoteCheckin,
		rec.GPSUnverified,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		// The unique (user_id, day) index violation stays in the chain
		// so the service can recognize the duplicate with errors.As.
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return rec, nil
}

// GetByUserAndDay implements attendance.RecordRepository.
func (a *attendanceRecordRepository) GetByUserAndDay(ctx context.Context, userID string, day time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE user_id = $1 AND day = $2
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, userID, day))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return &rec, nil
}

// Update implements attendance.RecordRepository.
func (a *attendanceRecordRepository) Update(ctx context.Context, rec attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records SET
			check_out_time = $2,
			check_out_site_id = $3,
			check_out_site_name = $4,
			check_out_latitude = $5,
			check_out_longitude = $6,
			check_out_method = $7,
			work_hours = $8,
			status = $9,
			different_checkout_location = $10,
			missed_checkout = $11,
			auto_checkout = $12,
			gps_unverified = $13,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		rec.ID,
		rec.CheckOutTime,
		rec.CheckOutSiteID,
		rec.CheckOutSiteName,
		rec.CheckOutLatitude,
		rec.CheckOutLongitude,
		rec.CheckOutMethod,
		rec.WorkHours,
		rec.Status,
		rec.DifferentCheckoutLocation,
		rec.MissedCheckout,
		rec.AutoCheckout,
		rec.GPSUnverified,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

// ListByUser implements attendance.RecordRepository.
func (a *attendanceRecordRepository) ListByUser(ctx context.Context, userID string, filter attendance.MyAttendanceFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.Date != nil && *filter.Date != "" {
		args = append(args, *filter.Date)
		conditions = append(conditions, fmt.Sprintf("day = $%d", len(args)))
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		args = append(args, *filter.StartDate)
		conditions = append(conditions, fmt.Sprintf("day >= $%d", len(args)))
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		args = append(args, *filter.EndDate)
		conditions = append(conditions, fmt.Sprintf("day <= $%d", len(args)))
	}
	if filter.Status != nil && *filter.Status != "" {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM attendance_records WHERE ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	// Sort columns come from the validated whitelist, never from raw input.
	sortColumn := map[string]string{
		"date":           "day",
		"check_in_time":  "check_in_time",
		"check_out_time": "check_out_time",
		"status":         "status",
	}[filter.SortBy]
	if sortColumn == "" {
		sortColumn = "day"
	}
	sortOrder := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM attendance_records WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		recordColumns, where, sortColumn, sortOrder, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendance records: %w", err)
	}

	return records, total, nil
}

// CountCheckinsAtSite implements attendance.RecordRepository.
func (a *attendanceRecordRepository) CountCheckinsAtSite(ctx context.Context, siteID string, day time.Time, until time.Time) (int, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT COUNT(*)
		FROM attendance_records
		WHERE check_in_site_id = $1 AND day = $2 AND check_in_time <= $3
	`

	var count int
	if err := q.QueryRow(ctx, query, siteID, day, until).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count check-ins at site: %w", err)
	}

	return count, nil
}

// GetStaleOpenRecords implements attendance.RecordRepository.
func (a *attendanceRecordRepository) GetStaleOpenRecords(ctx context.Context, before time.Time, limit int) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE day < $1 AND check_out_time IS NULL
		ORDER BY day ASC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale open records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stale open record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stale open records: %w", err)
	}

	return records, nil
}

func NewAttendanceRecordRepository(db *database.DB) attendance.RecordRepository {
	return &attendanceRecordRepository{db: db}
}
