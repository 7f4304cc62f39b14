package attendance

import (
	"strings"

	"github.com/qcc-workforce/attendance-backend-go/internal/domain/device"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/site"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	Latitude   *float64            `json:"latitude,omitempty"`
	Longitude  *float64            `json:"longitude,omitempty"`
	SiteID     *string             `json:"site_id,omitempty"`
	SiteCode   *string             `json:"site_code,omitempty"`
	Token      *site.LocationToken `json:"token,omitempty"`
	DeviceInfo *device.Info        `json:"device_info,omitempty"`

	// Populated by the handler from the request, not the body.
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude and longitude must be provided together",
		})
	}

	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if r.Token != nil {
		if validator.IsEmpty(r.Token.SiteID) || validator.IsEmpty(r.Token.Signature) || r.Token.IssuedAt <= 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "token",
				Message: "token must include site_id, issued_at and signature",
			})
		}
	}

	if r.SiteCode != nil && validator.IsEmpty(*r.SiteCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "site_code",
			Message: "site_code must not be empty",
		})
	}

	if r.DeviceInfo != nil {
		if err := r.DeviceInfo.Validate(); err != nil {
			var deviceErrs validator.ValidationErrors
			if ok := validator.AsValidationErrors(err, &deviceErrs); ok {
				errs = append(errs, deviceErrs...)
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CheckOutRequest struct {
	Latitude   *float64            `json:"latitude,omitempty"`
	Longitude  *float64            `json:"longitude,omitempty"`
	SiteID     *string             `json:"site_id,omitempty"`
	SiteCode   *string             `json:"site_code,omitempty"`
	Token      *site.LocationToken `json:"token,omitempty"`
	DeviceInfo *device.Info        `json:"device_info,omitempty"`

	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

func (r *CheckOutRequest) Validate() error {
	in := CheckInRequest{
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		SiteID:     r.SiteID,
		SiteCode:   r.SiteCode,
		Token:      r.Token,
		DeviceInfo: r.DeviceInfo,
	}
	return in.Validate()
}

type RecordResponse struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Day    string `json:"date"`

	CheckInTime      string   `json:"check_in_time"`
	CheckInSiteID    *string  `json:"check_in_site_id,omitempty"`
	CheckInSiteName  *string  `json:"check_in_site_name,omitempty"`
	CheckInLatitude  *float64 `json:"check_in_latitude,omitempty"`
	CheckInLongitude *float64 `json:"check_in_longitude,omitempty"`
	CheckInMethod    string   `json:"check_in_method"`

	CheckOutTime      *string  `json:"check_out_time,omitempty"`
	CheckOutSiteID    *string  `json:"check_out_site_id,omitempty"`
	CheckOutSiteName  *string  `json:"check_out_site_name,omitempty"`
	CheckOutLatitude  *float64 `json:"check_out_latitude,omitempty"`
	CheckOutLongitude *float64 `json:"check_out_longitude,omitempty"`
	CheckOutMethod    *string  `json:"check_out_method,omitempty"`

	WorkHours *float64 `json:"work_hours,omitempty"`
	Status    string   `json:"status"`

	IsRemoteCheckin           bool `json:"is_remote_checkin"`
	DifferentCheckoutLocation bool `json:"different_checkout_location"`
	MissedCheckout            bool `json:"missed_checkout"`
	AutoCheckout              bool `json:"auto_checkout"`
	GPSUnverified             bool `json:"gps_unverified"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// MissedCheckoutWarning is attached to a check-in response when
// yesterday's open record was auto-closed during the same call.
type MissedCheckoutWarning struct {
	Date    string `json:"date"`
	Message string `json:"message"`
}

type CheckInResponse struct {
	Record                RecordResponse         `json:"record"`
	Message               string                 `json:"message"`
	CheckInPosition       *int                   `json:"check_in_position,omitempty"`
	IsLateArrival         bool                   `json:"is_late_arrival"`
	MissedCheckoutWarning *MissedCheckoutWarning `json:"missed_checkout_warning,omitempty"`
}

type CheckOutResponse struct {
	Record  RecordResponse `json:"record"`
	Message string         `json:"message"`
}

type MyAttendanceFilter struct {
	Date      *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortBy    string `json:"sort_by"`    // date, check_in_time, check_out_time, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *MyAttendanceFilter) Validate() error {
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

	if f.Status != nil {
		validStatuses := []string{string(StatusPresent), string(StatusAbsent), string(StatusAutoClosed)}
		if !validator.IsInSlice(*f.Status, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: present, absent, auto_closed",
			})
		}
	}

	for field, value := range map[string]*string{
		"date":       f.Date,
		"start_date": f.StartDate,
		"end_date":   f.EndDate,
	} {
		if value != nil && *value != "" {
			if _, valid := validator.IsValidDate(*value); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	if f.SortBy != "" {
		validSortFields := []string{"date", "check_in_time", "check_out_time", "status"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: date, check_in_time, check_out_time, status",
			})
		}
	} else {
		f.SortBy = "date"
	}

	if f.SortOrder != "" {
		validSortOrders := []string{"asc", "desc"}
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), validSortOrders) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc"
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListRecordsResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Records    []RecordResponse `json:"records"`
}
