package table

import (
	"context"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/route"
)

// Provider computes duration/distance matrices; implemented by the hosted routing API client.
type Provider interface {
	Table(ctx context.Context, profile route.Profile, req Request) (Matrix, error)
}
