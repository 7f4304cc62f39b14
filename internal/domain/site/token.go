package site

// LocationToken is the payload encoded into a site's QR code: a
// short-lived signed credential substituting for GPS proof of presence.
// Ephemeral, never persisted.
type LocationToken struct {
	SiteID    string `json:"site_id"`
	IssuedAt  int64  `json:"issued_at"` // unix seconds
	Signature string `json:"signature"`
}
