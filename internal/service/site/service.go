package site

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	auditdomain "github.com/qcc-workforce/attendance-backend-go/internal/domain/audit"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/site"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/audit"
	"github.com/qcc-workforce/attendance-backend-go/internal/service/qrtoken"
)

type SiteServiceImpl struct {
	site.SiteRepository

	signer *qrtoken.Signer
	sink   audit.Sink
	now    func() time.Time
}

func NewSiteService(siteRepo site.SiteRepository, signer *qrtoken.Signer, sink audit.Sink) site.Service {
	return &SiteServiceImpl{
		SiteRepository: siteRepo,
		signer:         signer,
		sink:           sink,
		now:            time.Now,
	}
}

func actorFromClaims(ctx context.Context) string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}
	userID, _ := claims["user_id"].(string)
	return userID
}

func normalizeShortCode(code *string) *string {
	if code == nil {
		return nil
	}
	normalized := strings.ToUpper(strings.TrimSpace(*code))
	return &normalized
}

// CreateSite implements site.Service.
func (s *SiteServiceImpl) CreateSite(ctx context.Context, req site.CreateSiteRequest) (site.SiteResponse, error) {
	if err := req.Validate(); err != nil {
		return site.SiteResponse{}, err
	}

	shortCode := normalizeShortCode(req.ShortCode)
	if shortCode != nil {
		if err := s.checkShortCodeFree(ctx, *shortCode, ""); err != nil {
			return site.SiteResponse{}, err
		}
	}

	newSite := site.Site{
		ID:               uuid.Must(uuid.NewV7()).String(),
		Name:             req.Name,
		Address:          req.Address,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		RadiusMeters:     req.RadiusMeters,
		ShortCode:        shortCode,
		IsActive:         true,
		CheckInStartTime: req.CheckInStartTime,
		CheckOutEndTime:  req.CheckOutEndTime,
	}

	created, err := s.SiteRepository.Create(ctx, newSite)
	if err != nil {
		return site.SiteResponse{}, fmt.Errorf("failed to create site: %w", err)
	}

	s.sink.Log(auditdomain.Entry{
		UserID:    actorFromClaims(ctx),
		Action:    auditdomain.ActionCreateSite,
		TableName: "sites",
		RecordID:  created.ID,
		NewValues: map[string]interface{}{
			"name":          created.Name,
			"latitude":      created.Latitude,
			"longitude":     created.Longitude,
			"radius_meters": created.RadiusMeters,
		},
	})

	return toResponse(created), nil
}

// UpdateSite implements site.Service.
func (s *SiteServiceImpl) UpdateSite(ctx context.Context, req site.UpdateSiteRequest) (site.SiteResponse, error) {
	if err := req.Validate(); err != nil {
		return site.SiteResponse{}, err
	}

	existing, err := s.SiteRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			return site.SiteResponse{}, site.ErrSiteNotFound
		}
		return site.SiteResponse{}, fmt.Errorf("failed to load site: %w", err)
	}

	oldValues := map[string]interface{}{
		"name":          existing.Name,
		"latitude":      existing.Latitude,
		"longitude":     existing.Longitude,
		"radius_meters": existing.RadiusMeters,
		"is_active":     existing.IsActive,
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Address != nil {
		existing.Address = req.Address
	}
	if req.Latitude != nil {
		existing.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		existing.Longitude = *req.Longitude
	}
	if req.RadiusMeters != nil {
		existing.RadiusMeters = *req.RadiusMeters
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if req.CheckInStartTime != nil {
		existing.CheckInStartTime = req.CheckInStartTime
	}
	if req.CheckOutEndTime != nil {
		existing.CheckOutEndTime = req.CheckOutEndTime
	}
	if req.ShortCode != nil {
		shortCode := normalizeShortCode(req.ShortCode)
		if err := s.checkShortCodeFree(ctx, *shortCode, existing.ID); err != nil {
			return site.SiteResponse{}, err
		}
		existing.ShortCode = shortCode
	}

	if err := s.SiteRepository.Update(ctx, existing); err != nil {
		return site.SiteResponse{}, fmt.Errorf("failed to update site: %w", err)
	}

	s.sink.Log(auditdomain.Entry{
		UserID:    actorFromClaims(ctx),
		Action:    auditdomain.ActionUpdateSite,
		TableName: "sites",
		RecordID:  existing.ID,
		OldValues: oldValues,
		NewValues: map[string]interface{}{
			"name":          existing.Name,
			"latitude":      existing.Latitude,
			"longitude":     existing.Longitude,
			"radius_meters": existing.RadiusMeters,
			"is_active":     existing.IsActive,
		},
	})

	return toResponse(existing), nil
}

// GetSite implements site.Service.
func (s *SiteServiceImpl) GetSite(ctx context.Context, id string) (site.SiteResponse, error) {
	found, err := s.SiteRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			return site.SiteResponse{}, site.ErrSiteNotFound
		}
		return site.SiteResponse{}, fmt.Errorf("failed to load site: %w", err)
	}
	return toResponse(found), nil
}

// ListSites implements site.Service.
func (s *SiteServiceImpl) ListSites(ctx context.Context) ([]site.SiteResponse, error) {
	sites, err := s.SiteRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}

	responses := make([]site.SiteResponse, 0, len(sites))
	for _, found := range sites {
		responses = append(responses, toResponse(found))
	}
	return responses, nil
}

// DeactivateSite implements site.Service.
func (s *SiteServiceImpl) DeactivateSite(ctx context.Context, id string) error {
	if _, err := s.SiteRepository.GetByID(ctx, id); err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			return site.ErrSiteNotFound
		}
		return fmt.Errorf("failed to load site: %w", err)
	}

	if err := s.SiteRepository.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate site: %w", err)
	}

	s.sink.Log(auditdomain.Entry{
		UserID:    actorFromClaims(ctx),
		Action:    auditdomain.ActionDeactivateSite,
		TableName: "sites",
		RecordID:  id,
		NewValues: map[string]interface{}{"is_active": false},
	})

	return nil
}

// IssueLocationToken implements site.Service.
func (s *SiteServiceImpl) IssueLocationToken(ctx context.Context, siteID string) (site.LocationTokenResponse, error) {
	found, err := s.SiteRepository.GetByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			return site.LocationTokenResponse{}, site.ErrSiteNotFound
		}
		return site.LocationTokenResponse{}, fmt.Errorf("failed to load site: %w", err)
	}
	if !found.IsActive {
		return site.LocationTokenResponse{}, site.ErrSiteInactive
	}

	now := s.now()
	tok := s.signer.Issue(found.ID, now)

	s.sink.Log(auditdomain.Entry{
		UserID:    actorFromClaims(ctx),
		Action:    auditdomain.ActionIssueLocationToken,
		TableName: "sites",
		RecordID:  found.ID,
		NewValues: map[string]interface{}{
			"issued_at": tok.IssuedAt,
		},
	})

	return site.LocationTokenResponse{
		Token:     tok,
		SiteID:    found.ID,
		SiteName:  found.Name,
		ExpiresAt: now.Add(s.signer.TTL()).UTC().Format(time.RFC3339),
	}, nil
}

func (s *SiteServiceImpl) checkShortCodeFree(ctx context.Context, code string, selfID string) error {
	other, err := s.SiteRepository.GetByShortCode(ctx, code)
	if err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check short code: %w", err)
	}
	if other.ID != selfID {
		return site.ErrShortCodeExists
	}
	return nil
}

func toResponse(s site.Site) site.SiteResponse {
	return site.SiteResponse{
		ID:               s.ID,
		Name:             s.Name,
		Address:          s.Address,
		Latitude:         s.Latitude,
		Longitude:        s.Longitude,
		RadiusMeters:     s.RadiusMeters,
		ShortCode:        s.ShortCode,
		IsActive:         s.IsActive,
		CheckInStartTime: s.CheckInStartTime,
		CheckOutEndTime:  s.CheckOutEndTime,
		CreatedAt:        s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        s.UpdatedAt.Format(time.RFC3339),
	}
}
