package route

import (
	"context"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
)

// Query is a directions lookup for an ordered list of coordinates.
type Query struct {
	Profile      Profile
	Coordinates  []geo.Coordinate
	Alternatives bool
}

// Provider computes routes; implemented by the hosted routing API client.
type Provider interface {
	// Route returns the best route first, followed by any alternatives.
	Route(ctx context.Context, q Query) ([]Route, error)
}
