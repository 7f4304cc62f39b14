package device

import (
	"strings"

	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/validator"
)

// Info is the device fingerprint a client submits with a check-in/out.
type Info struct {
	DeviceID    string `json:"device_id"`
	DeviceName  string `json:"device_name,omitempty"`
	DeviceClass string `json:"device_type"`
	BrowserInfo string `json:"browser_info,omitempty"`
}

func (i *Info) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(i.DeviceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "device_info.device_id",
			Message: "device_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ViolationFilter struct {
	UserID    *string `json:"user_id,omitempty"`
	DeviceID  *string `json:"device_id,omitempty"`
	Type      *string `json:"type,omitempty"`
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *ViolationFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Type != nil {
		validTypes := []string{
			string(ViolationCheckinAttempt),
			string(ViolationDuplicateIPCheckin),
			string(ViolationDoubleCheckinAttempt),
			string(ViolationQROutOfRange),
		}
		if !validator.IsInSlice(strings.ToLower(*f.Type), validTypes) {
			errs = append(errs, validator.ValidationError{
				Field:   "type",
				Message: "type must be one of: checkin_attempt, duplicate_ip_checkin, double_checkin_attempt, qr_out_of_range",
			})
		}
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ViolationResponse struct {
	ID              string                 `json:"id"`
	DeviceID        string                 `json:"device_id"`
	IPAddress       *string                `json:"ip_address,omitempty"`
	AttemptedUserID string                 `json:"attempted_user_id"`
	BoundUserID     *string                `json:"bound_user_id,omitempty"`
	Type            string                 `json:"violation_type"`
	Context         map[string]interface{} `json:"context,omitempty"`
	CreatedAt       string                 `json:"created_at"`
}

type SessionResponse struct {
	ID           string  `json:"id"`
	DeviceID     string  `json:"device_id"`
	DeviceName   *string `json:"device_name,omitempty"`
	DeviceClass  string  `json:"device_type"`
	IPAddress    *string `json:"ip_address,omitempty"`
	LastActivity string  `json:"last_activity"`
	IsActive     bool    `json:"is_active"`
}
