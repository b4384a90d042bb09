package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/contract"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/route"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/kafka"
)

// CreatePlanRequest holds the data needed to create a new plan.
type CreatePlanRequest struct {
	Name    string       `json:"name" binding:"required"`
	Profile string       `json:"profile"`
	Points  route.Points `json:"points" binding:"required"`
}

// RenamePlanRequest holds the new plan name.
type RenamePlanRequest struct {
	Name string `json:"name" binding:"required"`
}

// ReplacePointsRequest holds a full replacement point list.
type ReplacePointsRequest struct {
	Points route.Points `json:"points" binding:"required"`
}

// AddWaypointRequest inserts a waypoint before the point currently at Index.
type AddWaypointRequest struct {
	Index    int            `json:"index" binding:"required"`
	Location geo.Coordinate `json:"location"`
	Name     string         `json:"name"`
}

// PlanDTO is the response representation of a plan.
type PlanDTO struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Profile     string         `json:"profile"`
	Status      string         `json:"status"`
	Points      route.Points   `json:"points"`
	Markers     []route.Marker `json:"markers"`
	Summary     *route.Summary `json:"summary,omitempty"`
	FailureNote string         `json:"failure_note,omitempty"`
	Version     int64          `json:"version"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// PlanStatsDTO holds plan counts for the dashboard.
type PlanStatsDTO struct {
	TotalPlans int64            `json:"total_plans"`
	ByStatus   map[string]int64 `json:"by_status"`
}

// FailureRecordedError is returned by ComputePlan after a routing failure was stored on
// the plan and announced. It unwraps to the routing error.
type FailureRecordedError struct {
	PlanID uuid.UUID
	Err    error
}

func (e *FailureRecordedError) Error() string { return e.Err.Error() }

func (e *FailureRecordedError) Unwrap() error { return e.Err }

// PlanService is the application service orchestrating saved plan use cases.
type PlanService struct {
	repo      route.PlanRepository
	routes    *RouteService
	publisher kafka.Publisher
	logger    *zap.Logger
}

// NewPlanService creates a new PlanService.
func NewPlanService(
	repo route.PlanRepository,
	routes *RouteService,
	publisher kafka.Publisher,
	logger *zap.Logger,
) *PlanService {
	return &PlanService{
		repo:      repo,
		routes:    routes,
		publisher: publisher,
		logger:    logger,
	}
}

// CreatePlan creates a new draft plan.
func (s *PlanService) CreatePlan(ctx context.Context, req CreatePlanRequest) (*PlanDTO, error) {
	profile, err := route.ParseProfile(req.Profile)
	if err != nil {
		return nil, err
	}

	plan, err := route.NewPlan(req.Name, profile, req.Points)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}

	publishEvent(ctx, s.publisher, s.logger, contract.PlanCreated, plan.ID().String(), contract.PlanCreatedEvent{
		PlanID:     plan.ID(),
		Name:       plan.Name(),
		Profile:    string(plan.Profile()),
		Points:     len(plan.Points()),
		OccurredAt: time.Now().UTC(),
	})

	result := toPlanDTO(plan)
	return &result, nil
}

// GetPlan retrieves a single plan by ID.
func (s *PlanService) GetPlan(ctx context.Context, planID uuid.UUID) (*PlanDTO, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	result := toPlanDTO(plan)
	return &result, nil
}

// ListPlans retrieves plans newest first; an empty status lists every non-archived plan.
func (s *PlanService) ListPlans(ctx context.Context, status string, page, limit int) (*domain.PaginatedResult[PlanDTO], error) {
	var filter route.PlanStatus
	if status != "" {
		parsed, err := route.ParsePlanStatus(status)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		filter = parsed
	}

	plans, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]PlanDTO, len(plans))
	for i, p := range plans {
		dtos[i] = toPlanDTO(p)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// RenamePlan changes a plan's display name.
func (s *PlanService) RenamePlan(ctx context.Context, planID uuid.UUID, req RenamePlanRequest) (*PlanDTO, error) {
	return s.modify(ctx, planID, func(p *route.Plan) error {
		return p.Rename(req.Name)
	})
}

// ReplacePoints swaps a plan's whole point list.
func (s *PlanService) ReplacePoints(ctx context.Context, planID uuid.UUID, req ReplacePointsRequest) (*PlanDTO, error) {
	return s.modify(ctx, planID, func(p *route.Plan) error {
		return p.ReplacePoints(req.Points)
	})
}

// AddWaypoint inserts a waypoint into a plan.
func (s *PlanService) AddWaypoint(ctx context.Context, planID uuid.UUID, req AddWaypointRequest) (*PlanDTO, error) {
	if err := req.Location.Validate(); err != nil {
		return nil, err
	}
	return s.modify(ctx, planID, func(p *route.Plan) error {
		return p.AddWaypoint(req.Index, req.Location, req.Name)
	})
}

// RemoveWaypoint drops the waypoint at index from a plan.
func (s *PlanService) RemoveWaypoint(ctx context.Context, planID uuid.UUID, index int) (*PlanDTO, error) {
	return s.modify(ctx, planID, func(p *route.Plan) error {
		return p.RemoveWaypoint(index)
	})
}

// ArchivePlan retires a plan.
func (s *PlanService) ArchivePlan(ctx context.Context, planID uuid.UUID) (*PlanDTO, error) {
	result, err := s.modify(ctx, planID, func(p *route.Plan) error {
		return p.Archive()
	})
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, s.logger, contract.PlanArchived, planID.String(), contract.PlanArchivedEvent{
		PlanID:     planID,
		OccurredAt: time.Now().UTC(),
	})
	return result, nil
}

// ComputePlan routes through the plan's points and stores the outcome. A routing failure
// is recorded on the plan and returned as a *FailureRecordedError.
func (s *PlanService) ComputePlan(ctx context.Context, planID uuid.UUID) (*PlanDTO, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.Status().IsTerminal() {
		return nil, domain.NewInvalidStateError(string(plan.Status()), string(route.PlanComputed))
	}

	computed, routeErr := s.routes.ComputeRoute(ctx, "", ComputeRouteRequest{
		Points:   plan.Points(),
		Profile:  string(plan.Profile()),
		Geometry: string(geo.FormatPolyline6),
	})
	if routeErr != nil {
		if ctx.Err() != nil {
			return nil, routeErr
		}
		return nil, s.recordFailure(ctx, plan, routeErr)
	}

	best := computed.Routes[0]
	summary := route.Summary{
		DistanceM:  best.DistanceM,
		DurationS:  best.DurationS,
		Polyline:   best.Geometry.Encoded,
		ComputedAt: computed.ComputedAt,
	}
	if best.Traffic != nil {
		summary.TrafficRatio = best.Traffic.Ratio
	}

	if err := plan.MarkComputed(summary); err != nil {
		return nil, err
	}
	plan.IncrementVersion()
	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, s.logger, contract.PlanComputed, plan.ID().String(), contract.PlanComputedEvent{
		PlanID:       plan.ID(),
		DistanceM:    summary.DistanceM,
		DurationS:    summary.DurationS,
		TrafficRatio: summary.TrafficRatio,
		OccurredAt:   time.Now().UTC(),
	})

	result := toPlanDTO(plan)
	return &result, nil
}

func (s *PlanService) recordFailure(ctx context.Context, plan *route.Plan, routeErr error) error {
	s.logger.Warn("plan computation failed",
		zap.String("plan_id", plan.ID().String()),
		zap.Error(routeErr),
	)

	if err := plan.MarkFailed(routeErr.Error()); err != nil {
		return errors.Join(routeErr, err)
	}
	plan.IncrementVersion()
	if err := s.repo.Update(ctx, plan); err != nil {
		return errors.Join(routeErr, fmt.Errorf("failed to record plan failure: %w", err))
	}

	publishEvent(ctx, s.publisher, s.logger, contract.PlanComputeFailed, plan.ID().String(), contract.PlanComputeFailedEvent{
		PlanID:     plan.ID(),
		Reason:     plan.FailureNote(),
		OccurredAt: time.Now().UTC(),
	})
	return &FailureRecordedError{PlanID: plan.ID(), Err: routeErr}
}

// GetPlanStats returns plan counts grouped by status.
func (s *PlanService) GetPlanStats(ctx context.Context) (*PlanStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &PlanStatsDTO{
		TotalPlans: total,
		ByStatus:   counts,
	}, nil
}

// modify loads a plan, applies fn and persists it with optimistic locking.
func (s *PlanService) modify(ctx context.Context, planID uuid.UUID, fn func(p *route.Plan) error) (*PlanDTO, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	if err := fn(plan); err != nil {
		return nil, err
	}

	plan.IncrementVersion()
	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, err
	}

	result := toPlanDTO(plan)
	return &result, nil
}

// --- Helpers ---

func toPlanDTO(p *route.Plan) PlanDTO {
	points := p.Points()
	return PlanDTO{
		ID:          p.ID(),
		Name:        p.Name(),
		Profile:     string(p.Profile()),
		Status:      string(p.Status()),
		Points:      points,
		Markers:     route.Markers(points),
		Summary:     p.Summary(),
		FailureNote: p.FailureNote(),
		Version:     p.Version(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}
