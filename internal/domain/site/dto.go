package site

import (
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/validator"
)

type CreateSiteRequest struct {
	Name             string  `json:"name"`
	Address          *string `json:"address,omitempty"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	RadiusMeters     int     `json:"radius_meters"`
	ShortCode        *string `json:"short_code,omitempty"`
	CheckInStartTime *string `json:"check_in_start_time,omitempty"`
	CheckOutEndTime  *string `json:"check_out_end_time,omitempty"`
}

func (r *CreateSiteRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if r.Latitude < -90 || r.Latitude > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude < -180 || r.Longitude > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if r.RadiusMeters <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "radius_meters",
			Message: "radius_meters must be a positive number",
		})
	}

	if r.ShortCode != nil && !validator.IsValidShortCode(*r.ShortCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "short_code",
			Message: "short_code must be 3-12 characters (A-Z, 0-9, dash)",
		})
	}

	if r.CheckInStartTime != nil {
		if _, ok := validator.IsValidClockTime(*r.CheckInStartTime); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "check_in_start_time",
				Message: "check_in_start_time must be in HH:MM format",
			})
		}
	}

	if r.CheckOutEndTime != nil {
		if _, ok := validator.IsValidClockTime(*r.CheckOutEndTime); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "check_out_end_time",
				Message: "check_out_end_time must be in HH:MM format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateSiteRequest struct {
	ID               string   `json:"-"`
	Name             *string  `json:"name,omitempty"`
	Address          *string  `json:"address,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	RadiusMeters     *int     `json:"radius_meters,omitempty"`
	ShortCode        *string  `json:"short_code,omitempty"`
	IsActive         *bool    `json:"is_active,omitempty"`
	CheckInStartTime *string  `json:"check_in_start_time,omitempty"`
	CheckOutEndTime  *string  `json:"check_out_end_time,omitempty"`
}

func (r *UpdateSiteRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "site id is required",
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

	if r.RadiusMeters != nil && *r.RadiusMeters <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "radius_meters",
			Message: "radius_meters must be a positive number",
		})
	}

	if r.ShortCode != nil && !validator.IsValidShortCode(*r.ShortCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "short_code",
			Message: "short_code must be 3-12 characters (A-Z, 0-9, dash)",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SiteResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Address          *string `json:"address,omitempty"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	RadiusMeters     int     `json:"radius_meters"`
	ShortCode        *string `json:"short_code,omitempty"`
	IsActive         bool    `json:"is_active"`
	CheckInStartTime *string `json:"check_in_start_time,omitempty"`
	CheckOutEndTime  *string `json:"check_out_end_time,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}
