package route

import (
	"context"

	"github.com/google/uuid"
)

// PlanRepository defines the persistence contract for plan aggregates.
type PlanRepository interface {
	// FindByID retrieves a plan by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Plan, error)

	// List retrieves plans newest first; an empty status matches every non-archived plan.
	List(ctx context.Context, status PlanStatus, page, limit int) ([]*Plan, int64, error)

	// CountByStatus returns plan counts grouped by status.
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new plan.
	Save(ctx context.Context, plan *Plan) error

	// Update persists changes to an existing plan with optimistic locking.
	Update(ctx context.Context, plan *Plan) error
}
