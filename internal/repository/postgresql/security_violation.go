package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/device"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/database"
)

type securityViolationRepository struct {
	db *database.DB
}

const violationColumns = `
	id, device_id, ip_address, attempted_user_id, bound_user_id,
	violation_type, context, created_at`

func scanViolation(row pgx.Row) (device.Violation, error) {
	var v device.Violation
	err := row.Scan(
		&v.ID, &v.DeviceID, &v.IPAddress, &v.AttemptedUserID, &v.BoundUserID,
		&v.Type, &v.Context, &v.CreatedAt,
	)
	return v, err
}

// Create implements device.ViolationRepository.
func (r *securityViolationRepository) Create(ctx context.Context, v device.Violation) (device.Violation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO security_violations (
			id, device_id, ip_address, attempted_user_id, bound_user_id,
			violation_type, context, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := q.Exec(ctx, query,
		v.ID, v.DeviceID, v.IPAddress, v.AttemptedUserID, v.BoundUserID,
		v.Type, v.Context, v.CreatedAt,
	)
	if err != nil {
		return device.Violation{}, fmt.Errorf("failed to create security violation: %w", err)
	}

	return v, nil
}

// List implements device.ViolationRepository.
func (r *securityViolationRepository) List(ctx context.Context, filter device.ViolationFilter) ([]device.Violation, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	var args []interface{}

	if filter.UserID != nil && *filter.UserID != "" {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("attempted_user_id = $%d", len(args)))
	}
	if filter.DeviceID != nil && *filter.DeviceID != "" {
		args = append(args, *filter.DeviceID)
		conditions = append(conditions, fmt.Sprintf("device_id = $%d", len(args)))
	}
	if filter.Type != nil && *filter.Type != "" {
		args = append(args, strings.ToLower(*filter.Type))
		conditions = append(conditions, fmt.Sprintf("violation_type = $%d", len(args)))
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		args = append(args, *filter.StartDate)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d::date", len(args)))
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		args = append(args, *filter.EndDate)
		conditions = append(conditions, fmt.Sprintf("created_at < $%d::date + INTERVAL '1 day'", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM security_violations WHERE ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count security violations: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM security_violations WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		violationColumns, where, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list security violations: %w", err)
	}
	defer rows.Close()

	var violations []device.Violation
	for rows.Next() {
		v, err := scanViolation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan security violation: %w", err)
		}
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate security violations: %w", err)
	}

	return violations, total, nil
}

func NewSecurityViolationRepository(db *database.DB) device.ViolationRepository {
	return &securityViolationRepository{db: db}
}
