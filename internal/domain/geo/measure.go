package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// EarthRadiusMeters is the Earth radius used for distances.
const EarthRadiusMeters = orb.EarthRadius

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b Coordinate) float64 {
	return orbgeo.DistanceHaversine(a.point(), b.point())
}

// Length returns the summed haversine length of a line in meters.
func Length(coords []Coordinate) float64 {
	return orbgeo.LengthHaversine(ToLineString(coords))
}

// Lerp linearly interpolates between a and b; t is not clamped.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// PointAlong returns the point at fraction (0..1, clamped; NaN counts as 0) of the line's
// length, interpolating linearly inside the segment it falls on.
func PointAlong(coords []Coordinate, fraction float64) (Coordinate, bool) {
	switch len(coords) {
	case 0:
		return Coordinate{}, false
	case 1:
		return coords[0], true
	}

	if math.IsNaN(fraction) {
		fraction = 0
	}
	fraction = math.Max(0, math.Min(1, fraction))
	target := Length(coords) * fraction
	if target == 0 {
		return coords[0], true
	}

	var walked float64
	for i := 1; i < len(coords); i++ {
		seg := Haversine(coords[i-1], coords[i])
		if seg > 0 && walked+seg >= target {
			t := (target - walked) / seg
			return Coordinate{
				Lat: Lerp(coords[i-1].Lat, coords[i].Lat, t),
				Lng: Lerp(coords[i-1].Lng, coords[i].Lng, t),
			}, true
		}
		walked += seg
	}
	return coords[len(coords)-1], true
}
