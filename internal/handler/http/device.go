package http

import (
	"net/http"
	"strconv"

	"github.com/qcc-workforce/attendance-backend-go/internal/domain/device"
	"github.com/qcc-workforce/attendance-backend-go/internal/handler/http/response"
)

type DeviceHandler interface {
	ListViolations(w http.ResponseWriter, r *http.Request)
	ListMyDevices(w http.ResponseWriter, r *http.Request)
}

type deviceHandlerImpl struct {
	deviceService device.Service
}

func NewDeviceHandler(deviceService device.Service) DeviceHandler {
	return &deviceHandlerImpl{
		deviceService: deviceService,
	}
}

// ListViolations implements DeviceHandler.
func (h *deviceHandlerImpl) ListViolations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var filter device.ViolationFilter
	if v := query.Get("user_id"); v != "" {
		filter.UserID = &v
	}
	if v := query.Get("device_id"); v != "" {
		filter.DeviceID = &v
	}
	if v := query.Get("type"); v != "" {
		filter.Type = &v
	}
	if v := query.Get("start_date"); v != "" {
		filter.StartDate = &v
	}
	if v := query.Get("end_date"); v != "" {
		filter.EndDate = &v
	}
	if v := query.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil {
			filter.Page = page
		}
	}
	if v := query.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			filter.Limit = limit
		}
	}

	result, err := h.deviceService.ListViolations(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Violations, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// ListMyDevices implements DeviceHandler.
func (h *deviceHandlerImpl) ListMyDevices(w http.ResponseWriter, r *http.Request) {
	result, err := h.deviceService.ListMyDevices(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
