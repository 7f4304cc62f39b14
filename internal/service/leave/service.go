package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	auditdomain "github.com/qcc-workforce/attendance-backend-go/internal/domain/audit"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/leave"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/audit"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/validator"
)

type StatusServiceImpl struct {
	leave.StatusRepository

	sink audit.Sink
	now  func() time.Time
}

func NewStatusService(statusRepo leave.StatusRepository, sink audit.Sink) leave.StatusService {
	return &StatusServiceImpl{
		StatusRepository: statusRepo,
		sink:             sink,
		now:              time.Now,
	}
}

func userIDFromClaims(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id claim is missing or invalid")
	}
	return userID, nil
}

// GetMyStatus implements leave.StatusService. A user with no stored row
// is reported as active.
func (s *StatusServiceImpl) GetMyStatus(ctx context.Context) (leave.StatusResponse, error) {
	userID, err := userIDFromClaims(ctx)
	if err != nil {
		return leave.StatusResponse{}, err
	}

	status, err := s.StatusRepository.GetByUser(ctx, userID)
	if err != nil {
		return leave.StatusResponse{}, fmt.Errorf("failed to load leave status: %w", err)
	}
	if status == nil {
		return leave.StatusResponse{
			UserID: userID,
			State:  string(leave.StateActive),
		}, nil
	}

	return toResponse(*status), nil
}

// UpdateMyStatus implements leave.StatusService.
func (s *StatusServiceImpl) UpdateMyStatus(ctx context.Context, req leave.UpdateStatusRequest) (leave.StatusResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.StatusResponse{}, err
	}

	userID, err := userIDFromClaims(ctx)
	if err != nil {
		return leave.StatusResponse{}, err
	}

	state, _ := leave.ParseState(req.State)

	status := leave.Status{
		UserID:    userID,
		State:     state,
		UpdatedAt: s.now().UTC(),
	}
	if state != leave.StateActive {
		start, _ := validator.IsValidDate(*req.StartDate)
		end, _ := validator.IsValidDate(*req.EndDate)
		status.StartDate = &start
		status.EndDate = &end
		status.Reason = req.Reason
	}

	previous, err := s.StatusRepository.GetByUser(ctx, userID)
	if err != nil {
		return leave.StatusResponse{}, fmt.Errorf("failed to load leave status: %w", err)
	}

	saved, err := s.StatusRepository.Upsert(ctx, status)
	if err != nil {
		return leave.StatusResponse{}, fmt.Errorf("failed to update leave status: %w", err)
	}

	entry := auditdomain.Entry{
		UserID:    userID,
		Action:    auditdomain.ActionUpdateLeaveStatus,
		TableName: "leave_statuses",
		RecordID:  userID,
		NewValues: map[string]interface{}{
			"leave_status":     string(saved.State),
			"leave_start_date": formatDatePtr(saved.StartDate),
			"leave_end_date":   formatDatePtr(saved.EndDate),
		},
	}
	if previous != nil {
		entry.OldValues = map[string]interface{}{
			"leave_status":     string(previous.State),
			"leave_start_date": formatDatePtr(previous.StartDate),
			"leave_end_date":   formatDatePtr(previous.EndDate),
		}
	}
	s.sink.Log(entry)

	return toResponse(saved), nil
}

func formatDatePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

func toResponse(status leave.Status) leave.StatusResponse {
	resp := leave.StatusResponse{
		UserID:    status.UserID,
		State:     string(status.State),
		Reason:    status.Reason,
		UpdatedAt: status.UpdatedAt.Format(time.RFC3339),
	}
	if status.StartDate != nil {
		d := status.StartDate.Format("2006-01-02")
		resp.StartDate = &d
	}
	if status.EndDate != nil {
		d := status.EndDate.Format("2006-01-02")
		resp.EndDate = &d
	}
	return resp
}
