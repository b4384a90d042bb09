package routingapi

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/place"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
)

const (
	DefaultGeocodeLimit = 5
	MaxGeocodeLimit     = 10
)

type geocodingResponse struct {
	Features []geocodingFeature `json:"features"`
}

type geocodingFeature struct {
	PlaceName string   `json:"place_name"`
	Center    lngLat   `json:"center"`
	Relevance float64  `json:"relevance"`
	PlaceType []string `json:"place_type"`
}

// Geocode resolves free text to candidate places, best match first.
func (c *Client) Geocode(ctx context.Context, q place.SearchQuery) ([]place.Place, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, domain.NewValidationError("geocoding query is required")
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(clampLimit(q.Limit)))
	query.Set("autocomplete", "true")
	if q.Proximity != nil {
		query.Set("proximity", q.Proximity.LngLat())
	}

	return c.geocode(ctx, "/geocoding/v5/mapbox.places/"+url.PathEscape(text)+".json", query)
}

// ReverseGeocode returns the places at a coordinate, most specific first.
func (c *Client) ReverseGeocode(ctx context.Context, at geo.Coordinate) ([]place.Place, error) {
	if err := at.Validate(); err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("limit", "1")
	query.Set("types", "address,poi")
	return c.geocode(ctx, "/geocoding/v5/mapbox.places/"+at.LngLat()+".json", query)
}

func (c *Client) geocode(ctx context.Context, path string, query url.Values) ([]place.Place, error) {
	var resp geocodingResponse
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, err
	}

	places := make([]place.Place, len(resp.Features))
	for i, f := range resp.Features {
		places[i] = place.Place{
			Name:      f.PlaceName,
			Location:  f.Center.coordinate(),
			Relevance: f.Relevance,
			PlaceType: f.PlaceType,
		}
	}
	return places, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultGeocodeLimit
	}
	if limit > MaxGeocodeLimit {
		return MaxGeocodeLimit
	}
	return limit
}
