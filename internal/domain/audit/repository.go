package audit

import "context"

type Repository interface {
	// Create appends an audit entry. Entries are never mutated.
	Create(ctx context.Context, e Entry) error
}
