package attendance

import "context"

// Service is the attendance lifecycle entry point exposed to the HTTP layer.
type Service interface {
	// CheckIn processes a check-in with fraud, leave and location gating.
	// Auto-closure of yesterday's open record runs first, best-effort.
	CheckIn(ctx context.Context, req CheckInRequest) (CheckInResponse, error)

	// CheckOut closes today's open record under the check-out proximity policy.
	CheckOut(ctx context.Context, req CheckOutRequest) (CheckOutResponse, error)

	// GetMyAttendance lists the authenticated user's records.
	GetMyAttendance(ctx context.Context, filter MyAttendanceFilter) (ListRecordsResponse, error)
}
