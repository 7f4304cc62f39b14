package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/device"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/database"
)

type deviceSessionRepository struct {
	db *database.DB
}

const sessionColumns = `
	id, device_id, user_id, ip_address, device_name, device_class,
	browser_info, last_activity, is_active, created_at, updated_at`

func scanSession(row pgx.Row) (device.Session, error) {
	var s device.Session
	err := row.Scan(
		&s.ID, &s.DeviceID, &s.UserID, &s.IPAddress, &s.DeviceName, &s.DeviceClass,
		&s.BrowserInfo, &s.LastActivity, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// GetActiveBinding implements device.SessionRepository.
func (r *deviceSessionRepository) GetActiveBinding(ctx context.Context, deviceID string, excludeUserID string, since time.Time) (*device.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + sessionColumns + `
		FROM device_sessions
		WHERE device_id = $1
		  AND user_id <> $2
		  AND is_active
		  AND last_activity >= $3
		ORDER BY last_activity DESC
		LIMIT 1
	`

	s, err := scanSession(q.QueryRow(ctx, query, deviceID, excludeUserID, since))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get device binding: %w", err)
	}

	return &s, nil
}

// GetActiveByIP implements device.SessionRepository.
func (r *deviceSessionRepository) GetActiveByIP(ctx context.Context, ip string, excludeUserID string, excludeDeviceID string, since time.Time) (*device.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + sessionColumns + `
		FROM device_sessions
		WHERE ip_address = $1
		  AND user_id <> $2
		  AND device_id <> $3
		  AND is_active
		  AND last_activity >= $4
		ORDER BY last_activity DESC
		LIMIT 1
	`

	s, err := scanSession(q.QueryRow(ctx, query, ip, excludeUserID, excludeDeviceID, since))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session by ip: %w", err)
	}

	return &s, nil
}

// Upsert implements device.SessionRepository. The unique device_id
// index keeps one binding row per device; two users racing to bind a
// new device serialize on it and the last writer owns the device. The
// fraud check runs before Bind, so a takeover here only happens when
// the previous binding is stale or the caller already passed the
// conflict check.
func (r *deviceSessionRepository) Upsert(ctx context.Context, s device.Session) (device.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO device_sessions (
			id, device_id, user_id, ip_address, device_name, device_class,
			browser_info, last_activity, is_active
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (device_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			ip_address = EXCLUDED.ip_address,
			device_name = EXCLUDED.device_name,
			device_class = EXCLUDED.device_class,
			browser_info = EXCLUDED.browser_info,
			last_activity = EXCLUDED.last_activity,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		s.ID, s.DeviceID, s.UserID, s.IPAddress, s.DeviceName, s.DeviceClass,
		s.BrowserInfo, s.LastActivity, s.IsActive,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return device.Session{}, fmt.Errorf("failed to upsert device session: %w", err)
	}

	return s, nil
}

// ListByUser implements device.SessionRepository.
func (r *deviceSessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]device.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + sessionColumns + `
		FROM device_sessions
		WHERE user_id = $1
		ORDER BY last_activity DESC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list device sessions: %w", err)
	}
	defer rows.Close()

	var sessions []device.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate device sessions: %w", err)
	}

	return sessions, nil
}

func NewDeviceSessionRepository(db *database.DB) device.SessionRepository {
	return &deviceSessionRepository{db: db}
}
