package application

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/place"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
)

// GeocodeService resolves search text and map clicks to places.
type GeocodeService struct {
	geocoder place.Geocoder
	logger   *zap.Logger
}

// NewGeocodeService creates a new GeocodeService.
func NewGeocodeService(geocoder place.Geocoder, logger *zap.Logger) *GeocodeService {
	return &GeocodeService{geocoder: geocoder, logger: logger}
}

// Search returns candidate places for text, optionally biased towards proximity.
func (s *GeocodeService) Search(ctx context.Context, text string, limit int, proximity *geo.Coordinate) ([]place.Place, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("query parameter q is required")
	}
	if proximity != nil {
		if err := proximity.Validate(); err != nil {
			return nil, err
		}
	}

	places, err := s.geocoder.Geocode(ctx, place.SearchQuery{Text: text, Limit: limit, Proximity: proximity})
	if err != nil {
		return nil, err
	}
	if places == nil {
		places = []place.Place{}
	}
	return places, nil
}

// Reverse returns the most specific place at a coordinate.
func (s *GeocodeService) Reverse(ctx context.Context, at geo.Coordinate) (*place.Place, error) {
	if err := at.Validate(); err != nil {
		return nil, err
	}

	places, err := s.geocoder.ReverseGeocode(ctx, at)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, domain.NewNotFoundError("place", at.String())
	}
	return &places[0], nil
}
