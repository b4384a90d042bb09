package routingapi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/route"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/table"
)

type matrixResponse struct {
	envelope
	Durations    [][]*float64     `json:"durations"`
	Distances    [][]*float64     `json:"distances"`
	Sources      []matrixWaypoint `json:"sources"`
	Destinations []matrixWaypoint `json:"destinations"`
}

type matrixWaypoint struct {
	Name     string `json:"name"`
	Location lngLat `json:"location"`
}

// Table requests a duration/distance matrix. Unreachable pairs come back as nil cells.
func (c *Client) Table(ctx context.Context, profile route.Profile, req table.Request) (table.Matrix, error) {
	if err := req.Validate(); err != nil {
		return table.Matrix{}, err
	}
	if profile == "" {
		profile = route.ProfileDriving
	}

	query := url.Values{}
	query.Set("annotations", "duration,distance")
	if len(req.Sources) > 0 {
		query.Set("sources", joinIndices(req.Sources))
	}
	if len(req.Destinations) > 0 {
		query.Set("destinations", joinIndices(req.Destinations))
	}

	var resp matrixResponse
	path := fmt.Sprintf("/directions-matrix/v1/mapbox/%s/%s", profile, joinCoordinates(req.Coordinates))
	if err := c.get(ctx, path, query, &resp); err != nil {
		return table.Matrix{}, err
	}

	rows, cols := len(req.SourceIndices()), len(req.DestinationIndices())
	if len(resp.Durations) != rows {
		return table.Matrix{}, fmt.Errorf("matrix has %d rows, expected %d", len(resp.Durations), rows)
	}
	for i, row := range resp.Durations {
		if len(row) != cols {
			return table.Matrix{}, fmt.Errorf("matrix row %d has %d columns, expected %d", i, len(row), cols)
		}
	}

	return table.Matrix{
		Sources:      snapped(resp.Sources, req.Coordinates, req.SourceIndices()),
		Destinations: snapped(resp.Destinations, req.Coordinates, req.DestinationIndices()),
		Durations:    resp.Durations,
		Distances:    resp.Distances,
	}, nil
}

// snapped returns the API's snapped waypoint locations, falling back to the requested
// coordinates when the response omits them.
func snapped(waypoints []matrixWaypoint, coords []geo.Coordinate, indices []int) []geo.Coordinate {
	out := make([]geo.Coordinate, len(indices))
	for i, idx := range indices {
		if i < len(waypoints) {
			out[i] = waypoints[i].Location.coordinate()
			continue
		}
		out[i] = coords[idx]
	}
	return out
}
