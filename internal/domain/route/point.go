package route

import (
	"fmt"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
)

// MaxPoints is the most coordinates the routing API accepts in one directions request.
const MaxPoints = 25

// PointType is the role a point plays in a multi-stop route.
type PointType string

const (
	PointOrigin      PointType = "origin"
	PointWaypoint    PointType = "waypoint"
	PointDestination PointType = "destination"
)

// IsValid returns true if the point type is recognized.
func (t PointType) IsValid() bool {
	switch t {
	case PointOrigin, PointWaypoint, PointDestination:
		return true
	}
	return false
}

// RoutePoint is a typed stop of a route request.
type RoutePoint struct {
	Type     PointType      `json:"type"`
	Location geo.Coordinate `json:"location"`
	Name     string         `json:"name,omitempty"`
}

// Points is an ordered origin → waypoints → destination list.
type Points []RoutePoint

// NewPoints builds a valid Points list from an origin, a destination and optional waypoints.
func NewPoints(origin, destination geo.Coordinate, waypoints ...geo.Coordinate) (Points, error) {
	pts := make(Points, 0, len(waypoints)+2)
	pts = append(pts, RoutePoint{Type: PointOrigin, Location: origin})
	for _, w := range waypoints {
		pts = append(pts, RoutePoint{Type: PointWaypoint, Location: w})
	}
	pts = append(pts, RoutePoint{Type: PointDestination, Location: destination})
	if err := pts.Validate(); err != nil {
		return nil, err
	}
	return pts, nil
}

// Validate checks ordering, count and coordinate ranges.
func (p Points) Validate() error {
	if len(p) < 2 {
		return domain.NewValidationError("a route needs at least an origin and a destination")
	}
	if len(p) > MaxPoints {
		return domain.NewValidationError(fmt.Sprintf("a route supports at most %d points, got %d", MaxPoints, len(p)))
	}
	last := len(p) - 1
	for i, pt := range p {
		if !pt.Type.IsValid() {
			return domain.NewValidationError(fmt.Sprintf("point %d has invalid type %q", i, pt.Type))
		}
		switch {
		case i == 0 && pt.Type != PointOrigin:
			return domain.NewValidationError("the first point must be the origin")
		case i == last && pt.Type != PointDestination:
			return domain.NewValidationError("the last point must be the destination")
		case i > 0 && i < last && pt.Type != PointWaypoint:
			return domain.NewValidationError(fmt.Sprintf("point %d must be a waypoint, got %s", i, pt.Type))
		}
		if err := pt.Location.Validate(); err != nil {
			return domain.NewValidationError(fmt.Sprintf("point %d: %v", i, err))
		}
	}
	return nil
}

// Origin returns the first point.
func (p Points) Origin() RoutePoint { return p[0] }

// Destination returns the last point.
func (p Points) Destination() RoutePoint { return p[len(p)-1] }

// Waypoints returns the intermediate points.
func (p Points) Waypoints() []RoutePoint {
	if len(p) <= 2 {
		return nil
	}
	return append([]RoutePoint(nil), p[1:len(p)-1]...)
}

// Coordinates returns the locations in order.
func (p Points) Coordinates() []geo.Coordinate {
	coords := make([]geo.Coordinate, len(p))
	for i, pt := range p {
		coords[i] = pt.Location
	}
	return coords
}

// InsertWaypoint returns a copy with a waypoint inserted at index (1..len-1).
func (p Points) InsertWaypoint(index int, location geo.Coordinate, name string) (Points, error) {
	if index < 1 || index > len(p)-1 {
		return nil, domain.NewValidationError(fmt.Sprintf("waypoint index %d out of range [1, %d]", index, len(p)-1))
	}
	out := make(Points, 0, len(p)+1)
	out = append(out, p[:index]...)
	out = append(out, RoutePoint{Type: PointWaypoint, Location: location, Name: name})
	out = append(out, p[index:]...)
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveWaypoint returns a copy without the waypoint at index. Origin and destination
// cannot be removed.
func (p Points) RemoveWaypoint(index int) (Points, error) {
	if index < 0 || index >= len(p) {
		return nil, domain.NewValidationError(fmt.Sprintf("point index %d out of range", index))
	}
	if p[index].Type != PointWaypoint {
		return nil, domain.NewValidationError(fmt.Sprintf("point %d is the %s and cannot be removed", index, p[index].Type))
	}
	out := make(Points, 0, len(p)-1)
	out = append(out, p[:index]...)
	out = append(out, p[index+1:]...)
	return out, nil
}

// MoveWaypoint returns a copy with the waypoint at from moved to position to.
func (p Points) MoveWaypoint(from, to int) (Points, error) {
	last := len(p) - 1
	if from < 1 || from >= last || to < 1 || to >= last {
		return nil, domain.NewValidationError("only waypoints can be moved, and only between waypoint positions")
	}
	out := append(Points(nil), p...)
	moved := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = moved
	return out, nil
}

// Reverse returns the trip in the opposite direction: the destination becomes the origin
// and the waypoints are visited in reverse order. Lists shorter than two are copied as is.
func (p Points) Reverse() Points {
	if len(p) < 2 {
		return append(Points(nil), p...)
	}
	out := make(Points, len(p))
	for i, pt := range p {
		out[len(p)-1-i] = pt
	}
	out[0].Type = PointOrigin
	out[len(out)-1].Type = PointDestination
	return out
}
