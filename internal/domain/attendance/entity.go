package attendance

import (
	"time"
)

// Method records how a check-in or check-out was proven.
type Method string

const (
	MethodGPS        Method = "gps"
	MethodQR         Method = "qr"
	MethodManualCode Method = "manual_code"

	// MethodAutoSystem is only ever set by auto-closure of a missed
	// check-out, never by a client.
	MethodAutoSystem Method = "auto_system"
)

// Status tags the overall state of a day's record.
type Status string

const (
	StatusPresent    Status = "present"
	StatusAbsent     Status = "absent"
	StatusAutoClosed Status = "auto_closed"
)

// Record is one user's attendance for one calendar day. Created on
// check-in, mutated exactly once to add check-out fields (or by
// auto-closure), never deleted. At most one record exists per (user, day).
type Record struct {
	ID     string
	UserID string

	// Day is the attendance calendar day in the service timezone,
	// truncated to midnight. Backed by a unique (user_id, day) index.
	Day time.Time

	CheckInTime      time.Time
	CheckInSiteID    *string
	CheckInSiteName  *string
	CheckInLatitude  *float64
	CheckInLongitude *float64
	CheckInMethod    Method

	CheckOutTime      *time.Time
	CheckOutSiteID    *string
	CheckOutSiteName  *string
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
	CheckOutMethod    *Method

	// WorkHours is checkout minus checkin in fractional hours, rounded
	// to 2 decimals. Absent until the record is closed.
	WorkHours *float64

	Status Status

	IsRemoteCheckin           bool
	DifferentCheckoutLocation bool
	MissedCheckout            bool
	AutoCheckout              bool
	GPSUnverified             bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open reports whether the record is still awaiting a check-out.
func (r *Record) Open() bool {
	return r.CheckOutTime == nil
}
