package routingapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/route"
)

type directionsResponse struct {
	envelope
	Routes []directionsRoute `json:"routes"`
}

type directionsRoute struct {
	Distance        float64         `json:"distance"`
	Duration        float64         `json:"duration"`
	DurationTypical *float64        `json:"duration_typical"`
	Weight          float64         `json:"weight"`
	Geometry        string          `json:"geometry"`
	Legs            []directionsLeg `json:"legs"`
}

type directionsLeg struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Summary  string  `json:"summary"`
}

// Route requests directions through q's coordinates in order. Geometry is fetched as
// polyline6 and decoded, so callers may re-encode it in any format without precision loss.
func (c *Client) Route(ctx context.Context, q route.Query) ([]route.Route, error) {
	if len(q.Coordinates) < 2 {
		return nil, fmt.Errorf("route needs at least 2 coordinates, got %d", len(q.Coordinates))
	}
	profile := q.Profile
	if profile == "" {
		profile = route.ProfileDrivingTraffic
	}

	query := url.Values{}
	query.Set("geometries", string(geo.FormatPolyline6))
	query.Set("overview", "full")
	query.Set("steps", "false")
	query.Set("alternatives", strconv.FormatBool(q.Alternatives))
	if profile == route.ProfileDrivingTraffic {
		query.Set("annotations", "duration")
	}

	var resp directionsResponse
	path := fmt.Sprintf("/directions/v5/mapbox/%s/%s", profile, joinCoordinates(q.Coordinates))
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, err
	}
	if len(resp.Routes) == 0 {
		return nil, &APIError{Status: 200, Code: "NoRoute", Message: "no route found"}
	}

	routes := make([]route.Route, 0, len(resp.Routes))
	for i, r := range resp.Routes {
		shape, err := geo.DecodePolyline(r.Geometry, geo.Precision6)
		if err != nil {
			return nil, fmt.Errorf("failed to decode geometry of route %d: %w", i, err)
		}
		legs := make([]route.Leg, len(r.Legs))
		for j, l := range r.Legs {
			legs[j] = route.Leg{Distance: l.Distance, Duration: l.Duration, Summary: l.Summary}
		}
		routes = append(routes, route.Route{
			Distance:        r.Distance,
			Duration:        r.Duration,
			TypicalDuration: r.DurationTypical,
			Weight:          r.Weight,
			Geometry:        shape,
			Legs:            legs,
		})
	}
	return routes, nil
}
