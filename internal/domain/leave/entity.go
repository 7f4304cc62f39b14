package leave

import "time"

// State is a user's current leave standing. Anything other than
// StateActive blocks check-in.
type State string

const (
	StateActive    State = "active"
	StateOnLeave   State = "on_leave"
	StateSickLeave State = "sick_leave"
)

// ParseState validates a client-supplied state value.
func ParseState(s string) (State, bool) {
	switch State(s) {
	case StateActive, StateOnLeave, StateSickLeave:
		return State(s), true
	default:
		return "", false
	}
}

// Status is the current leave record for a user. One row per user,
// superseded on update rather than versioned.
type Status struct {
	UserID    string
	State     State
	StartDate *time.Time
	EndDate   *time.Time
	Reason    *string
	UpdatedAt time.Time
}

// CoversDay reports whether the status blocks attendance on the given day.
// A non-active state with no date window blocks indefinitely; with a
// window it blocks only inside [StartDate, EndDate]. The comparison is
// by calendar date: day arrives as a midnight in the service timezone
// while the window is stored as UTC midnights, so comparing instants
// would shift the window for any non-UTC service timezone.
func (s Status) CoversDay(day time.Time) bool {
	if s.State == StateActive {
		return false
	}
	if s.StartDate == nil || s.EndDate == nil {
		return true
	}
	d := day.Format("2006-01-02")
	return d >= s.StartDate.Format("2006-01-02") && d <= s.EndDate.Format("2006-01-02")
}
