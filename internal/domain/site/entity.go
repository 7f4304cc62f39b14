package site

import (
	"time"
)

// Site is a geofenced physical location staff can check in at.
type Site struct {
	ID           string
	Name         string
	Address      *string
	Latitude     float64
	Longitude    float64
	RadiusMeters int
	ShortCode    *string
	IsActive     bool

	// Optional working-hour window, "15:04" local time.
	CheckInStartTime *string
	CheckOutEndTime  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
