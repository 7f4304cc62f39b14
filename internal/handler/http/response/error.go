package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/qcc-workforce/attendance-backend-go/internal/domain/attendance"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/device"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/leave"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/site"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/geo"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/validator"
	"github.com/qcc-workforce/attendance-backend-go/internal/service/proximity"
	"github.com/qcc-workforce/attendance-backend-go/internal/service/qrtoken"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Validation errors carry their own field map
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Structured rejections with a detail payload
	var outOfRange *proximity.OutOfRangeError
	if errors.As(err, &outOfRange) {
		Error(w, http.StatusBadRequest, "OUT_OF_RANGE", err.Error(), map[string]string{
			"nearest_site":   outOfRange.NearestSite,
			"distance":       fmt.Sprintf("%.0f", outOfRange.Distance),
			"allowed_radius": fmt.Sprintf("%.0f", outOfRange.AllowedRadius),
		})
		return
	}

	var alreadyIn *attendance.AlreadyCheckedInError
	if errors.As(err, &alreadyIn) {
		Error(w, http.StatusConflict, "ALREADY_CHECKED_IN", err.Error(), map[string]string{
			"check_in_time": alreadyIn.CheckInTime,
		})
		return
	}

	var completed *attendance.AlreadyCompletedError
	if errors.As(err, &completed) {
		Error(w, http.StatusConflict, "ALREADY_COMPLETED", err.Error(), map[string]string{
			"check_in_time":  completed.CheckInTime,
			"check_out_time": completed.CheckOutTime,
			"work_hours":     fmt.Sprintf("%.2f", completed.WorkHours),
		})
		return
	}

	var onLeave *leave.OnLeaveError
	if errors.As(err, &onLeave) {
		details := map[string]string{"leave_status": string(onLeave.State)}
		if onLeave.StartDate != "" {
			details["leave_start_date"] = onLeave.StartDate
			details["leave_end_date"] = onLeave.EndDate
		}
		Error(w, http.StatusForbidden, "ON_LEAVE", err.Error(), details)
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrLocationUnavailable):
		Error(w, http.StatusBadRequest, "LOCATION_UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, attendance.ErrNoOpenSession):
		Error(w, http.StatusNotFound, "NO_OPEN_SESSION", err.Error(), nil)
	case errors.Is(err, attendance.ErrInvalidTimeOrder):
		Error(w, http.StatusBadRequest, "INVALID_TIME_ORDER", err.Error(), nil)
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")

	// Location token errors
	case errors.Is(err, qrtoken.ErrInvalidToken):
		Error(w, http.StatusBadRequest, "INVALID_TOKEN", err.Error(), nil)
	case errors.Is(err, qrtoken.ErrExpiredToken):
		Error(w, http.StatusBadRequest, "EXPIRED_TOKEN", err.Error(), nil)

	// Fraud rejections
	case errors.Is(err, device.ErrDeviceConflict):
		Error(w, http.StatusForbidden, "DEVICE_CONFLICT", err.Error(), nil)
	case errors.Is(err, device.ErrDuplicateIPCheckin):
		Error(w, http.StatusForbidden, "DUPLICATE_IP_CHECKIN", err.Error(), nil)

	// Coordinates
	case errors.Is(err, geo.ErrInvalidCoordinate):
		Error(w, http.StatusBadRequest, "INVALID_COORDINATE", err.Error(), nil)

	// Site domain errors
	case errors.Is(err, site.ErrSiteNotFound):
		NotFound(w, "Site not found")
	case errors.Is(err, site.ErrSiteInactive):
		Error(w, http.StatusBadRequest, "SITE_INACTIVE", err.Error(), nil)
	case errors.Is(err, site.ErrShortCodeExists):
		Conflict(w, "Short code already assigned to another site")

	// Leave domain errors
	case errors.Is(err, leave.ErrStatusNotFound):
		NotFound(w, "Leave status not found")
	case errors.Is(err, leave.ErrInvalidState):
		BadRequest(w, "Invalid leave state", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
