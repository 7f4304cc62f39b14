package leave

import (
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/validator"
)

type UpdateStatusRequest struct {
	State     string  `json:"leave_status"`
	StartDate *string `json:"leave_start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"leave_end_date,omitempty"`   // YYYY-MM-DD
	Reason    *string `json:"leave_reason,omitempty"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	state, ok := ParseState(r.State)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_status",
			Message: "leave_status must be one of: active, on_leave, sick_leave",
		})
	}

	if ok && state != StateActive {
		if r.StartDate == nil || r.EndDate == nil {
			errs = append(errs, validator.ValidationError{
				Field:   "leave_start_date",
				Message: "start and end dates are required for leave",
			})
		} else {
			start, startOK := validator.IsValidDate(*r.StartDate)
			end, endOK := validator.IsValidDate(*r.EndDate)
			if !startOK {
				errs = append(errs, validator.ValidationError{
					Field:   "leave_start_date",
					Message: "leave_start_date must be in YYYY-MM-DD format",
				})
			}
			if !endOK {
				errs = append(errs, validator.ValidationError{
					Field:   "leave_end_date",
					Message: "leave_end_date must be in YYYY-MM-DD format",
				})
			}
			if startOK && endOK && end.Before(start) {
				errs = append(errs, validator.ValidationError{
					Field:   "leave_end_date",
					Message: "end date must be on or after start date",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type StatusResponse struct {
	UserID    string  `json:"user_id"`
	State     string  `json:"leave_status"`
	StartDate *string `json:"leave_start_date,omitempty"`
	EndDate   *string `json:"leave_end_date,omitempty"`
	Reason    *string `json:"leave_reason,omitempty"`
	UpdatedAt string  `json:"updated_at"`
}
