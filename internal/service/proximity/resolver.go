package proximity

import (
	"fmt"
	"math"
	"sort"

	"github.com/qcc-workforce/attendance-backend-go/internal/domain/attendance"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/device"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/site"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/geo"
)

// Operation selects which radius policy applies.
type Operation int

const (
	OpCheckIn Operation = iota
	OpCheckOut
)

// Policy maps a device class to the allowed radius per operation, in
// meters. Desktops get the widest radius to compensate for network-based
// positioning; check-out is at least as permissive as check-in so a user
// can always close the day from a different eligible site.
type Policy struct {
	CheckInRadius  map[device.Class]float64
	CheckOutRadius map[device.Class]float64
}

// DefaultPolicy returns the stock radius table.
func DefaultPolicy() Policy {
	return Policy{
		CheckInRadius: map[device.Class]float64{
			device.ClassMobile:  50,
			device.ClassTablet:  100,
			device.ClassLaptop:  500,
			device.ClassDesktop: 2000,
		},
		CheckOutRadius: map[device.Class]float64{
			device.ClassMobile:  100,
			device.ClassTablet:  200,
			device.ClassLaptop:  1000,
			device.ClassDesktop: 3000,
		},
	}
}

// AllowedRadius resolves the radius for a class and operation. Unknown
// classes fall back to desktop.
func (p Policy) AllowedRadius(class device.Class, op Operation) float64 {
	table := p.CheckInRadius
	if op == OpCheckOut {
		table = p.CheckOutRadius
	}
	if r, ok := table[class]; ok {
		return r
	}
	return table[device.ClassDesktop]
}

// Match is a successful site resolution.
type Match struct {
	Site     site.Site
	Distance float64

	// IsRemote is set when the chosen site differs from the user's
	// assigned site.
	IsRemote bool
}

// OutOfRangeError carries the nearest candidate so the caller can show
// "you are Nm away from X".
type OutOfRangeError struct {
	NearestSite   string
	Distance      float64
	AllowedRadius float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("you are %.0f meters from %s; this operation requires being within %.0f meters",
		e.Distance, e.NearestSite, e.AllowedRadius)
}

// Resolver picks the best eligible site for an operation.
type Resolver struct {
	policy Policy
}

func NewResolver(policy Policy) *Resolver {
	return &Resolver{policy: policy}
}

func (r *Resolver) Policy() Policy {
	return r.policy
}

type candidate struct {
	site     site.Site
	distance float64
	assigned bool
}

// Resolve computes the distance to every active site, sorts ascending
// (ties broken by preferring the assigned site, then by site id), and
// picks the assigned site if eligible, otherwise the nearest eligible
// site. Returns attendance.ErrLocationUnavailable when coords is nil:
// the GPS path never guesses a site.
func (r *Resolver) Resolve(coords *geo.Point, class device.Class, op Operation, sites []site.Site, assignedSiteID *string) (Match, error) {
	if coords == nil {
		return Match{}, attendance.ErrLocationUnavailable
	}

	allowed := r.policy.AllowedRadius(class, op)

	candidates := make([]candidate, 0, len(sites))
	for _, s := range sites {
		if !s.IsActive {
			continue
		}
		d, err := geo.Distance(*coords, geo.Point{Latitude: s.Latitude, Longitude: s.Longitude})
		if err != nil {
			return Match{}, err
		}
		candidates = append(candidates, candidate{
			site:     s,
			distance: d,
			assigned: assignedSiteID != nil && s.ID == *assignedSiteID,
		})
	}

	if len(candidates) == 0 {
		return Match{}, &OutOfRangeError{
			NearestSite:   "any registered site",
			Distance:      math.Inf(1),
			AllowedRadius: allowed,
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		if candidates[i].assigned != candidates[j].assigned {
			return candidates[i].assigned
		}
		return candidates[i].site.ID < candidates[j].site.ID
	})

	var chosen *candidate
	for i := range candidates {
		if candidates[i].distance > allowed {
			continue
		}
		if candidates[i].assigned {
			chosen = &candidates[i]
			break
		}
		if chosen == nil {
			chosen = &candidates[i]
		}
	}

	if chosen == nil {
		nearest := candidates[0]
		return Match{}, &OutOfRangeError{
			NearestSite:   nearest.site.Name,
			Distance:      math.Round(nearest.distance),
			AllowedRadius: allowed,
		}
	}

	return Match{
		Site:     chosen.site,
		Distance: chosen.distance,
		IsRemote: assignedSiteID != nil && chosen.site.ID != *assignedSiteID,
	}, nil
}

// CheckDistance verifies a specific site is within the allowed radius,
// used as the secondary GPS check on token-based operations.
func (r *Resolver) CheckDistance(coords geo.Point, s site.Site, class device.Class, op Operation) (float64, error) {
	allowed := r.policy.AllowedRadius(class, op)
	d, err := geo.Distance(coords, geo.Point{Latitude: s.Latitude, Longitude: s.Longitude})
	if err != nil {
		return 0, err
	}
	if d > allowed {
		return d, &OutOfRangeError{
			NearestSite:   s.Name,
			Distance:      math.Round(d),
			AllowedRadius: allowed,
		}
	}
	return d, nil
}
