package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/leave"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/database"
)

type leaveStatusRepository struct {
	db *database.DB
}

// GetByUser implements leave.StatusRepository.
func (r *leaveStatusRepository) GetByUser(ctx context.Context, userID string) (*leave.Status, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT user_id, state, start_date, end_date, reason, updated_at
		FROM leave_statuses
		WHERE user_id = $1
	`

	var s leave.Status
	err := q.QueryRow(ctx, query, userID).Scan(
		&s.UserID, &s.State, &s.StartDate, &s.EndDate, &s.Reason, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get leave status: %w", err)
	}

	return &s, nil
}

// Upsert implements leave.StatusRepository. One row per user; a new
// state replaces the old one.
func (r *leaveStatusRepository) Upsert(ctx context.Context, s leave.Status) (leave.Status, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_statuses (user_id, state, start_date, end_date, reason, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			state = EXCLUDED.state,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			reason = EXCLUDED.reason,
			updated_at = EXCLUDED.updated_at
	`

	_, err := q.Exec(ctx, query, s.UserID, s.State, s.StartDate, s.EndDate, s.Reason, s.UpdatedAt)
	if err != nil {
		return leave.Status{}, fmt.Errorf("failed to upsert leave status: %w", err)
	}

	return s, nil
}

func NewLeaveStatusRepository(db *database.DB) leave.StatusRepository {
	return &leaveStatusRepository{db: db}
}
