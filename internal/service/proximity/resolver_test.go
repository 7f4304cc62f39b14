package proximity

import (
	"errors"
	"testing"

	"github.com/qcc-workforce/attendance-backend-go/internal/domain/attendance"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/device"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/site"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// siteAt builds an active test site offset north of the origin by
// roughly the given number of meters (1 degree latitude ~ 111.2 km).
func siteAt(id, name string, metersNorth float64) site.Site {
	return site.Site{
		ID:           id,
		Name:         name,
		Latitude:     metersNorth / 111195.0,
		Longitude:    0,
		RadiusMeters: 100,
		IsActive:     true,
	}
}

func origin() *geo.Point {
	return &geo.Point{Latitude: 0, Longitude: 0}
}

func TestResolve_NearestEligibleWins(t *testing.T) {
	r := NewResolver(DefaultPolicy())
	sites := []site.Site{
		siteAt("b", "Far Office", 45),
		siteAt("a", "Near Office", 20),
	}

	m, err := r.Resolve(origin(), device.ClassMobile, OpCheckIn, sites, nil)
	require.NoError(t, err)
	assert.Equal(t, "a", m.Site.ID)
	assert.InDelta(t, 20, m.Distance, 1)
	assert.False(t, m.IsRemote)
}

func TestResolve_PrefersAssignedSiteAmongEligible(t *testing.T) {
	r := NewResolver(DefaultPolicy())
	sites := []site.Site{
		siteAt("near", "Near Office", 10),
		siteAt("assigned", "Assigned Office", 40),
	}
	assigned := "assigned"

	m, err := r.Resolve(origin(), device.ClassMobile, OpCheckIn, sites, &assigned)
	require.NoError(t, err)
	assert.Equal(t, "assigned", m.Site.ID)
	assert.False(t, m.IsRemote)
}

func TestResolve_RemoteFlagWhenAssignedIneligible(t *testing.T) {
	r := NewResolver(DefaultPolicy())
	sites := []site.Site{
		siteAt("near", "Near Office", 10),
		siteAt("assigned", "Assigned Office", 5000),
	}
	assigned := "assigned"

	m, err := r.Resolve(origin(), device.ClassMobile, OpCheckIn, sites, &assigned)
	require.NoError(t, err)
	assert.Equal(t, "near", m.Site.ID)
	assert.True(t, m.IsRemote)
}

func TestResolve_OutOfRangeCarriesNearest(t *testing.T) {
	r := NewResolver(DefaultPolicy())
	sites := []site.Site{
		siteAt("a", "Main Office", 60),
	}

	_, err := r.Resolve(origin(), device.ClassMobile, OpCheckIn, sites, nil)
	var oor *OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, "Main Office", oor.NearestSite)
	assert.InDelta(t, 60, oor.Distance, 1)
	assert.Equal(t, 50.0, oor.AllowedRadius)
}

func TestResolve_DesktopRadiusAccepts(t *testing.T) {
	// Same 60m distance that rejects mobile succeeds for desktop (2000m).
	r := NewResolver(DefaultPolicy())
	sites := []site.Site{
		siteAt("a", "Main Office", 60),
	}

	m, err := r.Resolve(origin(), device.ClassDesktop, OpCheckIn, sites, nil)
	require.NoError(t, err)
	assert.Equal(t, "a", m.Site.ID)
}

func TestResolve_CheckOutMorePermissive(t *testing.T) {
	r := NewResolver(DefaultPolicy())
	sites := []site.Site{
		siteAt("a", "Main Office", 80),
	}

	_, err := r.Resolve(origin(), device.ClassMobile, OpCheckIn, sites, nil)
	assert.Error(t, err)

	m, err := r.Resolve(origin(), device.ClassMobile, OpCheckOut, sites, nil)
	require.NoError(t, err)
	assert.Equal(t, "a", m.Site.ID)
}

func TestResolve_NilCoordinatesNeverGuesses(t *testing.T) {
	r := NewResolver(DefaultPolicy())
	sites := []site.Site{
		siteAt("a", "Main Office", 0),
	}

	_, err := r.Resolve(nil, device.ClassMobile, OpCheckIn, sites, nil)
	assert.True(t, errors.Is(err, attendance.ErrLocationUnavailable))
}

func TestResolve_SkipsInactiveSites(t *testing.T) {
	r := NewResolver(DefaultPolicy())
	inactive := siteAt("a", "Closed Office", 10)
	inactive.IsActive = false
	sites := []site.Site{
		inactive,
		siteAt("b", "Open Office", 30),
	}

	m, err := r.Resolve(origin(), device.ClassMobile, OpCheckIn, sites, nil)
	require.NoError(t, err)
	assert.Equal(t, "b", m.Site.ID)
}

func TestResolve_TieBreakBySiteID(t *testing.T) {
	r := NewResolver(DefaultPolicy())
	sites := []site.Site{
		siteAt("z", "Site Z", 25),
		siteAt("a", "Site A", 25),
	}

	m, err := r.Resolve(origin(), device.ClassMobile, OpCheckIn, sites, nil)
	require.NoError(t, err)
	assert.Equal(t, "a", m.Site.ID)
}

func TestAllowedRadius_UnknownClassFallsBackToDesktop(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, p.CheckInRadius[device.ClassDesktop], p.AllowedRadius(device.Class("watch"), OpCheckIn))
}

func TestCheckDistance_TokenSecondaryCheck(t *testing.T) {
	r := NewResolver(DefaultPolicy())
	s := siteAt("a", "Main Office", 60)

	_, err := r.CheckDistance(*origin(), s, device.ClassMobile, OpCheckIn)
	var oor *OutOfRangeError
	require.ErrorAs(t, err, &oor)

	d, err := r.CheckDistance(*origin(), s, device.ClassDesktop, OpCheckIn)
	require.NoError(t, err)
	assert.InDelta(t, 60, d, 1)
}
