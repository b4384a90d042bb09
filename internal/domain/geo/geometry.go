package geo

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
)

// GeometryFormat selects how route geometry is serialised.
type GeometryFormat string

const (
	FormatPolyline  GeometryFormat = "polyline"
	FormatPolyline6 GeometryFormat = "polyline6"
	FormatGeoJSON   GeometryFormat = "geojson"
)

// IsValid returns true if the format is recognized.
func (f GeometryFormat) IsValid() bool {
	switch f {
	case FormatPolyline, FormatPolyline6, FormatGeoJSON:
		return true
	}
	return false
}

// ParseGeometryFormat converts a string to a GeometryFormat; empty selects GeoJSON.
func ParseGeometryFormat(s string) (GeometryFormat, error) {
	if s == "" {
		return FormatGeoJSON, nil
	}
	f := GeometryFormat(s)
	if !f.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid geometry format: %s", s))
	}
	return f, nil
}

// Precision returns the polyline precision for the encoded formats.
func (f GeometryFormat) Precision() int {
	if f == FormatPolyline6 {
		return Precision6
	}
	return Precision5
}

// ToLineString converts coordinates to a line of [lng, lat] points.
func ToLineString(coords []Coordinate) orb.LineString {
	ls := make(orb.LineString, len(coords))
	for i, c := range coords {
		ls[i] = c.point()
	}
	return ls
}

// FromLineString converts a line back to coordinates, rejecting positions that are out
// of range.
func FromLineString(ls orb.LineString) ([]Coordinate, error) {
	coords := make([]Coordinate, len(ls))
	for i, p := range ls {
		coords[i] = fromPoint(p)
	}
	if err := validateLine(coords); err != nil {
		return nil, err
	}
	return coords, nil
}

// parseLineString decodes a GeoJSON LineString geometry. Positions must be exactly
// [lng, lat]; altitudes are rejected rather than dropped.
func parseLineString(raw json.RawMessage) (orb.LineString, error) {
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid geojson geometry: %v", err))
	}
	ls, ok := g.Geometry().(orb.LineString)
	if !ok {
		return nil, domain.NewValidationError(fmt.Sprintf("expected LineString geometry, got %q", g.Type))
	}

	var positions struct {
		Coordinates [][]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(raw, &positions); err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid geojson geometry: %v", err))
	}
	for i, p := range positions.Coordinates {
		if len(p) != 2 {
			return nil, domain.NewValidationError(fmt.Sprintf("position %d: expected [lng, lat], got %d values", i, len(p)))
		}
	}
	return ls, nil
}

func validateLine(coords []Coordinate) error {
	for i, c := range coords {
		if err := c.Validate(); err != nil {
			return domain.NewValidationError(fmt.Sprintf("position %d: %s", i, err.Error()))
		}
	}
	return nil
}

// Geometry is a route shape in one of the supported formats. Encoded is set for the
// polyline formats and LineString for GeoJSON.
type Geometry struct {
	Format     GeometryFormat
	Encoded    string
	LineString orb.LineString
}

// NewGeometry serialises coords in the requested format.
func NewGeometry(coords []Coordinate, format GeometryFormat) Geometry {
	if format == FormatGeoJSON {
		return Geometry{Format: format, LineString: ToLineString(coords)}
	}
	return Geometry{Format: format, Encoded: EncodePolyline(coords, format.Precision())}
}

// Coordinates decodes the geometry regardless of format.
func (g Geometry) Coordinates() ([]Coordinate, error) {
	switch g.Format {
	case FormatGeoJSON:
		if g.LineString == nil {
			return nil, domain.NewValidationError("geojson geometry has no line string")
		}
		return FromLineString(g.LineString)
	case FormatPolyline, FormatPolyline6:
		coords, err := DecodePolyline(g.Encoded, g.Format.Precision())
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		if err := validateLine(coords); err != nil {
			return nil, err
		}
		return coords, nil
	default:
		return nil, domain.NewValidationError(fmt.Sprintf("invalid geometry format: %s", g.Format))
	}
}

// Convert re-serialises the geometry in another format.
func (g Geometry) Convert(to GeometryFormat) (Geometry, error) {
	if !to.IsValid() {
		return Geometry{}, domain.NewValidationError(fmt.Sprintf("invalid geometry format: %s", to))
	}
	if g.Format == to {
		return g, nil
	}
	coords, err := g.Coordinates()
	if err != nil {
		return Geometry{}, err
	}
	return NewGeometry(coords, to), nil
}

// MarshalJSON emits a string for encoded formats and an object for GeoJSON.
func (g Geometry) MarshalJSON() ([]byte, error) {
	if g.Format == FormatGeoJSON {
		if g.LineString == nil {
			return []byte("null"), nil
		}
		return json.Marshal(geojson.NewGeometry(g.LineString))
	}
	return json.Marshal(g.Encoded)
}

// ConvertGeometry parses raw in the from format and re-serialises it in the to format. raw
// is a JSON string for the polyline formats and a LineString object for GeoJSON.
func ConvertGeometry(raw json.RawMessage, from, to GeometryFormat) (Geometry, error) {
	if !from.IsValid() {
		return Geometry{}, domain.NewValidationError(fmt.Sprintf("invalid geometry format: %s", from))
	}

	src := Geometry{Format: from}
	if from == FormatGeoJSON {
		ls, err := parseLineString(raw)
		if err != nil {
			return Geometry{}, err
		}
		src.LineString = ls
	} else if err := json.Unmarshal(raw, &src.Encoded); err != nil {
		return Geometry{}, domain.NewValidationError(fmt.Sprintf("invalid %s geometry: expected a string", from))
	}

	if _, err := src.Coordinates(); err != nil {
		return Geometry{}, err
	}
	return src.Convert(to)
}
