package route

import (
	"fmt"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
)

// Profile is the travel mode passed to the routing API.
type Profile string

const (
	ProfileDriving        Profile = "driving"
	ProfileDrivingTraffic Profile = "driving-traffic"
	ProfileWalking        Profile = "walking"
	ProfileCycling        Profile = "cycling"
)

// IsValid returns true if the profile is recognized.
func (p Profile) IsValid() bool {
	switch p {
	case ProfileDriving, ProfileDrivingTraffic, ProfileWalking, ProfileCycling:
		return true
	}
	return false
}

// ParseProfile converts a string to a Profile; empty selects driving-traffic.
func ParseProfile(s string) (Profile, error) {
	if s == "" {
		return ProfileDrivingTraffic, nil
	}
	p := Profile(s)
	if !p.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid routing profile: %s", s))
	}
	return p, nil
}

// Leg is the part of a route between two consecutive points.
type Leg struct {
	Distance float64 `json:"distance_m"`
	Duration float64 `json:"duration_s"`
	Summary  string  `json:"summary,omitempty"`
}

// Route is one computed path returned by the routing API.
type Route struct {
	Distance        float64          `json:"distance_m"`
	Duration        float64          `json:"duration_s"`
	TypicalDuration *float64         `json:"typical_duration_s,omitempty"`
	Weight          float64          `json:"weight"`
	Geometry        []geo.Coordinate `json:"-"`
	Legs            []Leg            `json:"legs"`
}

// Marker is a labelled pin for a route point.
type Marker struct {
	Label    string         `json:"label"`
	Type     PointType      `json:"type"`
	Name     string         `json:"name,omitempty"`
	Location geo.Coordinate `json:"location"`
	Color    string         `json:"color"`
}

var markerColors = map[PointType]string{
	PointOrigin:      "#2ECC71",
	PointWaypoint:    "#3498DB",
	PointDestination: "#E74C3C",
}

// Markers labels points A, B, C, … in order (AA, AB, … past Z).
func Markers(points Points) []Marker {
	markers := make([]Marker, len(points))
	for i, pt := range points {
		markers[i] = Marker{
			Label:    markerLabel(i),
			Type:     pt.Type,
			Name:     pt.Name,
			Location: pt.Location,
			Color:    markerColors[pt.Type],
		}
	}
	return markers
}

func markerLabel(i int) string {
	label := ""
	for n := i; ; n = n/26 - 1 {
		label = string(rune('A'+n%26)) + label
		if n < 26 {
			return label
		}
	}
}
