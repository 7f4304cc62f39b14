package site

import "context"

type SiteRepository interface {
	Create(ctx context.Context, s Site) (Site, error)
	Update(ctx context.Context, s Site) error
	GetByID(ctx context.Context, id string) (Site, error)

	// GetByShortCode looks a site up by its manual-entry code.
	GetByShortCode(ctx context.Context, code string) (Site, error)

	// ListActive returns all sites eligible for check-in/check-out.
	ListActive(ctx context.Context) ([]Site, error)

	List(ctx context.Context) ([]Site, error)

	// Deactivate flips the active flag; sites are never deleted so that
	// historical attendance keeps a valid reference.
	Deactivate(ctx context.Context, id string) error
}
