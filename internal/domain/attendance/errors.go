package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	ErrLocationUnavailable = errors.New("location could not be determined; use a QR code or site code instead")
	ErrNoOpenSession       = errors.New("no check-in record found for today")
	ErrInvalidTimeOrder    = errors.New("check-out time is earlier than check-in time")
	ErrRecordNotFound      = errors.New("attendance record not found")
)

// AlreadyCheckedInError rejects a second check-in while today's record is
// still open. Carries the original check-in time for the client message.
type AlreadyCheckedInError struct {
	CheckInTime string
}

func (e *AlreadyCheckedInError) Error() string {
	return fmt.Sprintf("you have already checked in today at %s and are currently on duty", e.CheckInTime)
}

// AlreadyCompletedError rejects any further attendance mutation once
// today's record has both check-in and check-out set.
type AlreadyCompletedError struct {
	CheckInTime  string
	CheckOutTime string
	WorkHours    float64
}

func (e *AlreadyCompletedError) Error() string {
	return fmt.Sprintf("you have already completed your work for today: checked in at %s, checked out at %s (%.2f hours worked)",
		e.CheckInTime, e.CheckOutTime, e.WorkHours)
}
