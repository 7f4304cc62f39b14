package device

import (
	"context"
	"time"
)

type SessionRepository interface {
	// GetActiveBinding returns the most recent active session for a device
	// id owned by a different user, with activity at or after since.
	// Returns nil when the device is unbound or the binding has gone stale.
	GetActiveBinding(ctx context.Context, deviceID string, excludeUserID string, since time.Time) (*Session, error)

	// GetActiveByIP returns the most recent active session from the given
	// IP on a different device by a different user, with activity at or
	// after since. Catches shared-workstation buddy punching where device
	// ids differ.
	GetActiveByIP(ctx context.Context, ip string, excludeUserID string, excludeDeviceID string, since time.Time) (*Session, error)

	// Upsert establishes or refreshes the binding for (device, user).
	// Must be atomic per device id: two users racing to bind the same new
	// device must not both succeed.
	Upsert(ctx context.Context, s Session) (Session, error)

	// ListByUser returns a user's device sessions, most recent first.
	ListByUser(ctx context.Context, userID string, limit int) ([]Session, error)
}

type ViolationRepository interface {
	// Create appends a violation row. Rows are never updated or deleted.
	Create(ctx context.Context, v Violation) (Violation, error)

	List(ctx context.Context, filter ViolationFilter) ([]Violation, int64, error)
}
