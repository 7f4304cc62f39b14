package http

import (
	"encoding/json"
	"net/http"

	"github.com/qcc-workforce/attendance-backend-go/internal/domain/leave"
	"github.com/qcc-workforce/attendance-backend-go/internal/handler/http/response"
)

type LeaveHandler interface {
	GetMyStatus(w http.ResponseWriter, r *http.Request)
	UpdateMyStatus(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	statusService leave.StatusService
}

func NewLeaveHandler(statusService leave.StatusService) LeaveHandler {
	return &leaveHandlerImpl{
		statusService: statusService,
	}
}

// GetMyStatus implements LeaveHandler.
func (h *leaveHandlerImpl) GetMyStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.statusService.GetMyStatus(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateMyStatus implements LeaveHandler.
func (h *leaveHandlerImpl) UpdateMyStatus(w http.ResponseWriter, r *http.Request) {
	var req leave.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.statusService.UpdateMyStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave status updated successfully", result)
}
