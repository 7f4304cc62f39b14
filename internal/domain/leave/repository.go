package leave

import "context"

type StatusRepository interface {
	// GetByUser returns the user's current leave status. A user with no
	// row is treated as active by the caller.
	GetByUser(ctx context.Context, userID string) (*Status, error)

	// Upsert replaces the user's current status.
	Upsert(ctx context.Context, s Status) (Status, error)
}
