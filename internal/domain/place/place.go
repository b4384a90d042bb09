package place

import (
	"context"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
)

// Place is a geocoding result.
type Place struct {
	Name      string         `json:"name"`
	Location  geo.Coordinate `json:"location"`
	Relevance float64        `json:"relevance"`
	PlaceType []string       `json:"place_type,omitempty"`
}

// SearchQuery is a forward geocoding lookup.
type SearchQuery struct {
	Text      string
	Limit     int
	Proximity *geo.Coordinate
}

// Geocoder resolves addresses to coordinates and back.
type Geocoder interface {
	Geocode(ctx context.Context, q SearchQuery) ([]Place, error)
	ReverseGeocode(ctx context.Context, at geo.Coordinate) ([]Place, error)
}
