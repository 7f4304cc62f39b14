package device

import "time"

// Class is the declared device class of a client, used to pick the
// allowed proximity radius. Unknown values resolve to ClassDesktop, the
// most permissive class, because desktop positioning is the least precise.
type Class string

const (
	ClassMobile  Class = "mobile"
	ClassTablet  Class = "tablet"
	ClassLaptop  Class = "laptop"
	ClassDesktop Class = "desktop"
)

// ParseClass normalizes a client-declared device class.
func ParseClass(s string) Class {
	switch Class(s) {
	case ClassMobile, ClassTablet, ClassLaptop, ClassDesktop:
		return Class(s)
	default:
		return ClassDesktop
	}
}

// Session tracks a device identifier's most recent use by a user.
// The first user to check in from a device while the session is active
// holds the binding; anyone else presenting the same device id is a conflict.
type Session struct {
	ID           string
	DeviceID     string
	UserID       string
	IPAddress    *string
	DeviceName   *string
	DeviceClass  Class
	BrowserInfo  *string
	LastActivity time.Time
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ViolationType classifies a recorded security violation.
type ViolationType string

const (
	ViolationCheckinAttempt       ViolationType = "checkin_attempt"
	ViolationDuplicateIPCheckin   ViolationType = "duplicate_ip_checkin"
	ViolationDoubleCheckinAttempt ViolationType = "double_checkin_attempt"
	ViolationQROutOfRange         ViolationType = "qr_out_of_range"
)

// Violation is an append-only audit row describing a blocked attempt.
type Violation struct {
	ID              string
	DeviceID        string
	IPAddress       *string
	AttemptedUserID string
	BoundUserID     *string
	Type            ViolationType
	Context         map[string]interface{}
	CreatedAt       time.Time
}
