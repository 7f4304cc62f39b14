package fraud

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/device"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/audit"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/validator"
)

// DefaultActivityWindow is how long a device binding stays live after
// its last activity. A binding older than this no longer conflicts.
const DefaultActivityWindow = 2 * time.Hour

// Detector enforces device-to-account binding and same-network checks
// before any attendance mutation. Binding and IP lookups fail OPEN on
// store errors: a soft dependency outage must not lock out all
// attendance. The duplicate-entry rule is enforced by the lifecycle
// controller and fails closed there.
type Detector struct {
	sessions       device.SessionRepository
	sink           audit.Sink
	activityWindow time.Duration
}

func NewDetector(sessions device.SessionRepository, sink audit.Sink, activityWindow time.Duration) *Detector {
	if activityWindow <= 0 {
		activityWindow = DefaultActivityWindow
	}
	return &Detector{
		sessions:       sessions,
		sink:           sink,
		activityWindow: activityWindow,
	}
}

// Check runs the device-binding and shared-IP checks for a check-in
// attempt. A positive match always blocks and writes a violation row.
func (d *Detector) Check(ctx context.Context, userID string, info *device.Info, ip string, now time.Time) error {
	if info == nil || info.DeviceID == "" {
		return nil
	}

	since := now.Add(-d.activityWindow)

	bound, err := d.sessions.GetActiveBinding(ctx, info.DeviceID, userID, since)
	if err != nil {
		slog.Error("Device binding lookup failed, continuing without check",
			"device_id", info.DeviceID, "error", err)
	} else if bound != nil {
		d.sink.Violation(device.Violation{
			DeviceID:        info.DeviceID,
			IPAddress:       optionalIP(ip),
			AttemptedUserID: userID,
			BoundUserID:     &bound.UserID,
			Type:            device.ViolationCheckinAttempt,
			Context: map[string]interface{}{
				"device_name":         info.DeviceName,
				"device_type":         info.DeviceClass,
				"bound_last_activity": bound.LastActivity.Format(time.RFC3339),
			},
		})
		return device.ErrDeviceConflict
	}

	if validator.IsValidIP(ip) {
		other, err := d.sessions.GetActiveByIP(ctx, ip, userID, info.DeviceID, since)
		if err != nil {
			slog.Error("IP session lookup failed, continuing without check",
				"ip", ip, "error", err)
		} else if other != nil {
			d.sink.Violation(device.Violation{
				DeviceID:        info.DeviceID,
				IPAddress:       &ip,
				AttemptedUserID: userID,
				BoundUserID:     &other.UserID,
				Type:            device.ViolationDuplicateIPCheckin,
				Context: map[string]interface{}{
					"device_name":     info.DeviceName,
					"device_type":     info.DeviceClass,
					"other_device_id": other.DeviceID,
				},
			})
			return device.ErrDuplicateIPCheckin
		}
	}

	return nil
}

// RecordDoubleCheckin logs a same-account second check-in attempt. The
// same account means there is no conflicting user, but it may indicate
// session replay, so it still lands in the violations trail.
func (d *Detector) RecordDoubleCheckin(userID string, info *device.Info, ip string, checkInTime time.Time) {
	if info == nil || info.DeviceID == "" {
		return
	}
	d.sink.Violation(device.Violation{
		DeviceID:        info.DeviceID,
		IPAddress:       optionalIP(ip),
		AttemptedUserID: userID,
		BoundUserID:     &userID,
		Type:            device.ViolationDoubleCheckinAttempt,
		Context: map[string]interface{}{
			"device_name":         info.DeviceName,
			"device_type":         info.DeviceClass,
			"first_check_in_time": checkInTime.Format(time.RFC3339),
		},
	})
}

// Bind establishes or refreshes the device binding after a successful
// check-in. Best effort: a failed upsert is logged, never surfaced.
func (d *Detector) Bind(ctx context.Context, userID string, info *device.Info, ip string, now time.Time) {
	if info == nil || info.DeviceID == "" {
		return
	}

	s := device.Session{
		ID:           uuid.Must(uuid.NewV7()).String(),
		DeviceID:     info.DeviceID,
		UserID:       userID,
		IPAddress:    optionalIP(ip),
		DeviceClass:  device.ParseClass(info.DeviceClass),
		LastActivity: now,
		IsActive:     true,
	}
	if info.DeviceName != "" {
		s.DeviceName = &info.DeviceName
	}
	if info.BrowserInfo != "" {
		s.BrowserInfo = &info.BrowserInfo
	}

	if _, err := d.sessions.Upsert(ctx, s); err != nil {
		slog.Error("Failed to establish device binding",
			"device_id", info.DeviceID, "user_id", userID, "error", err)
	}
}

func optionalIP(ip string) *string {
	if !validator.IsValidIP(ip) {
		return nil
	}
	return &ip
}
