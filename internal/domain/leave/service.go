package leave

import "context"

// StatusService manages a user's self-service leave status.
type StatusService interface {
	GetMyStatus(ctx context.Context) (StatusResponse, error)
	UpdateMyStatus(ctx context.Context, req UpdateStatusRequest) (StatusResponse, error)
}
