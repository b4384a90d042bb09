package geo

import (
	"fmt"
	"math"

	"github.com/twpayne/go-polyline"
)

// Polyline precisions understood by the routing API.
const (
	Precision5 = 5
	Precision6 = 6
)

func codec(precision int) polyline.Codec {
	return polyline.Codec{Dim: 2, Scale: math.Pow10(precision)}
}

// DecodePolyline decodes an encoded polyline (Google's algorithm) at the given precision.
// Truncated input is an error rather than a silently shortened line.
func DecodePolyline(encoded string, precision int) ([]Coordinate, error) {
	if encoded == "" {
		return []Coordinate{}, nil
	}
	points, _, err := codec(precision).DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("invalid polyline: %w", err)
	}

	coords := make([]Coordinate, len(points))
	for i, p := range points {
		coords[i] = Coordinate{Lat: p[0], Lng: p[1]}
	}
	return coords, nil
}

// EncodePolyline encodes coordinates at the given precision.
func EncodePolyline(coords []Coordinate, precision int) string {
	points := make([][]float64, len(coords))
	for i, c := range coords {
		points[i] = []float64{c.Lat, c.Lng}
	}
	return string(codec(precision).EncodeCoords(nil, points))
}
