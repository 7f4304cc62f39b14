package device

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/device"
)

// myDevicesLimit caps the sessions returned for a single user.
const myDevicesLimit = 20

type DeviceServiceImpl struct {
	device.SessionRepository
	device.ViolationRepository
}

func NewDeviceService(sessionRepo device.SessionRepository, violationRepo device.ViolationRepository) device.Service {
	return &DeviceServiceImpl{
		SessionRepository:   sessionRepo,
		ViolationRepository: violationRepo,
	}
}

// ListViolations implements device.Service.
func (s *DeviceServiceImpl) ListViolations(ctx context.Context, filter device.ViolationFilter) (device.ListViolationsResponse, error) {
	if err := filter.Validate(); err != nil {
		return device.ListViolationsResponse{}, err
	}

	violations, total, err := s.ViolationRepository.List(ctx, filter)
	if err != nil {
		return device.ListViolationsResponse{}, fmt.Errorf("failed to list security violations: %w", err)
	}

	responses := make([]device.ViolationResponse, 0, len(violations))
	for _, v := range violations {
		responses = append(responses, device.ViolationResponse{
			ID:              v.ID,
			DeviceID:        v.DeviceID,
			IPAddress:       v.IPAddress,
			AttemptedUserID: v.AttemptedUserID,
			BoundUserID:     v.BoundUserID,
			Type:            string(v.Type),
			Context:         v.Context,
			CreatedAt:       v.CreatedAt.Format(time.RFC3339),
		})
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	return device.ListViolationsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Violations: responses,
	}, nil
}

// ListMyDevices implements device.Service.
func (s *DeviceServiceImpl) ListMyDevices(ctx context.Context) ([]device.SessionResponse, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("user_id claim is missing or invalid")
	}

	sessions, err := s.SessionRepository.ListByUser(ctx, userID, myDevicesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list device sessions: %w", err)
	}

	responses := make([]device.SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		responses = append(responses, device.SessionResponse{
			ID:           sess.ID,
			DeviceID:     sess.DeviceID,
			DeviceName:   sess.DeviceName,
			DeviceClass:  string(sess.DeviceClass),
			IPAddress:    sess.IPAddress,
			LastActivity: sess.LastActivity.Format(time.RFC3339),
			IsActive:     sess.IsActive,
		})
	}

	return responses, nil
}
