package device

import "context"

type ListViolationsResponse struct {
	TotalCount int64               `json:"total_count"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
	Violations []ViolationResponse `json:"violations"`
}

// Service exposes the device session and violation trails.
type Service interface {
	// ListViolations returns the security violation trail, admin only.
	ListViolations(ctx context.Context, filter ViolationFilter) (ListViolationsResponse, error)

	// ListMyDevices returns the authenticated user's recent device sessions.
	ListMyDevices(ctx context.Context) ([]SessionResponse, error)
}
