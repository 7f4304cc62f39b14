package attendance

import (
	"context"
	"time"
)

// RecordRepository defines data access for attendance records.
// Day parameters are midnight-truncated times in the service timezone.
type RecordRepository interface {
	// Create inserts a new record. The backing unique (user_id, day)
	// index makes concurrent duplicate check-ins fail with a constraint
	// violation; callers detect that via IsUniqueViolation.
	Create(ctx context.Context, rec Record) (Record, error)

	// GetByUserAndDay returns the user's record for a day, or nil when
	// none exists.
	GetByUserAndDay(ctx context.Context, userID string, day time.Time) (*Record, error)

	// Update writes check-out or auto-closure fields onto an existing record.
	Update(ctx context.Context, rec Record) error

	// ListByUser returns a user's records with filters and pagination.
	ListByUser(ctx context.Context, userID string, filter MyAttendanceFilter) ([]Record, int64, error)

	// CountCheckinsAtSite counts check-ins at a site on a day up to and
	// including the given time, used for the "Nth to arrive" position.
	CountCheckinsAtSite(ctx context.Context, siteID string, day time.Time, until time.Time) (int, error)

	// GetStaleOpenRecords returns open records from days before the given
	// day, oldest first, for the auto-close sweep.
	GetStaleOpenRecords(ctx context.Context, before time.Time, limit int) ([]Record, error)
}
