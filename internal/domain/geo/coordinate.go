package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
)

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewCoordinate creates a Coordinate, validating its range.
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	c := Coordinate{Lat: lat, Lng: lng}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Validate returns a ValidationError when the coordinate is out of range or not finite.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return domain.NewValidationError("coordinate must be finite")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return domain.NewValidationError(fmt.Sprintf("latitude %g out of range [-90, 90]", c.Lat))
	}
	if c.Lng < -180 || c.Lng > 180 {
		return domain.NewValidationError(fmt.Sprintf("longitude %g out of range [-180, 180]", c.Lng))
	}
	return nil
}

// point converts to an orb point, which is ordered [lng, lat].
func (c Coordinate) point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

func fromPoint(p orb.Point) Coordinate {
	return Coordinate{Lat: p.Lat(), Lng: p.Lon()}
}

// String formats the coordinate as "lat,lng".
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(c.Lng, 'f', 6, 64)
}

// LngLat formats the coordinate as "lng,lat", the order the routing API expects in paths.
func (c Coordinate) LngLat() string {
	return strconv.FormatFloat(c.Lng, 'f', 6, 64) + "," + strconv.FormatFloat(c.Lat, 'f', 6, 64)
}

// ParseCoordinate parses "lat,lng".
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinate{}, domain.NewValidationError(fmt.Sprintf("invalid coordinate %q: expected lat,lng", s))
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, domain.NewValidationError(fmt.Sprintf("invalid latitude in %q", s))
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, domain.NewValidationError(fmt.Sprintf("invalid longitude in %q", s))
	}
	return NewCoordinate(lat, lng)
}

// BoundingBox is an axis-aligned lat/lng rectangle.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Bounds returns the smallest box containing every coordinate.
func Bounds(coords []Coordinate) (BoundingBox, error) {
	if len(coords) == 0 {
		return BoundingBox{}, domain.NewValidationError("cannot compute bounds of an empty geometry")
	}
	b := ToLineString(coords).Bound()
	return BoundingBox{
		MinLat: b.Min.Lat(), MinLng: b.Min.Lon(),
		MaxLat: b.Max.Lat(), MaxLng: b.Max.Lon(),
	}, nil
}

func (b BoundingBox) bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLng, b.MinLat},
		Max: orb.Point{b.MaxLng, b.MaxLat},
	}
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Coordinate {
	return fromPoint(b.bound().Center())
}

// Pad grows the box on every side by ratio of its span, clamped to valid ranges.
func (b BoundingBox) Pad(ratio float64) BoundingBox {
	dLat := (b.MaxLat - b.MinLat) * ratio
	dLng := (b.MaxLng - b.MinLng) * ratio
	return BoundingBox{
		MinLat: math.Max(-90, b.MinLat-dLat),
		MinLng: math.Max(-180, b.MinLng-dLng),
		MaxLat: math.Min(90, b.MaxLat+dLat),
		MaxLng: math.Min(180, b.MaxLng+dLng),
	}
}

// Contains reports whether c lies inside the box, edges included.
func (b BoundingBox) Contains(c Coordinate) bool {
	return b.bound().Contains(c.point())
}
