package leave

import "errors"

var (
	ErrStatusNotFound = errors.New("leave status not found")
	ErrInvalidState   = errors.New("invalid leave state")
)

// OnLeaveError rejects a check-in attempted during an approved leave
// period. It carries the window so the caller can render it.
type OnLeaveError struct {
	State     State
	StartDate string
	EndDate   string
}

func (e *OnLeaveError) Error() string {
	if e.StartDate == "" {
		return "you are currently on leave and cannot check in"
	}
	return "you are on approved leave from " + e.StartDate + " to " + e.EndDate + " and cannot check in during this period"
}
