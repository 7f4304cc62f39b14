package site

import "context"

// LocationTokenResponse is a freshly issued QR payload plus its expiry,
// ready for the kiosk to render.
type LocationTokenResponse struct {
	Token     LocationToken `json:"token"`
	SiteID    string        `json:"site_id"`
	SiteName  string        `json:"site_name"`
	ExpiresAt string        `json:"expires_at"`
}

// Service manages the site registry and QR token issuance.
type Service interface {
	CreateSite(ctx context.Context, req CreateSiteRequest) (SiteResponse, error)
	UpdateSite(ctx context.Context, req UpdateSiteRequest) (SiteResponse, error)
	GetSite(ctx context.Context, id string) (SiteResponse, error)
	ListSites(ctx context.Context) ([]SiteResponse, error)
	DeactivateSite(ctx context.Context, id string) error

	// IssueLocationToken signs a short-lived token for an active site's
	// rotating QR display.
	IssueLocationToken(ctx context.Context, siteID string) (LocationTokenResponse, error)
}
