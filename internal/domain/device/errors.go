package device

import "errors"

var (
	// ErrDeviceConflict: the device id is bound to a different user with
	// recent activity.
	ErrDeviceConflict = errors.New("this device is registered to another staff member")

	// ErrDuplicateIPCheckin: another user has an active session from the
	// same network address today.
	ErrDuplicateIPCheckin = errors.New("another staff member recently checked in from this network address")
)
