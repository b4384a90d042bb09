package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/contract"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/route"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/table"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/traffic"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/latest"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/kafka"
)

// ComputeTableRequest holds the data needed to compute a duration/distance matrix.
type ComputeTableRequest struct {
	Coordinates  []geo.Coordinate `json:"coordinates" binding:"required"`
	Sources      []int            `json:"sources"`
	Destinations []int            `json:"destinations"`
	Profile      string           `json:"profile"`
	Traffic      bool             `json:"traffic"`
}

// TableResultDTO is the response of a matrix computation. With traffic enabled, Durations
// are traffic-aware, BaselineDurations are free-flow and Impact colours each cell.
type TableResultDTO struct {
	Profile           route.Profile      `json:"profile"`
	Sources           []geo.Coordinate   `json:"sources"`
	Destinations      []geo.Coordinate   `json:"destinations"`
	Durations         [][]*float64       `json:"durations"`
	Distances         [][]*float64       `json:"distances,omitempty"`
	BaselineDurations [][]*float64       `json:"baseline_durations,omitempty"`
	Impact            [][]traffic.Impact `json:"impact,omitempty"`
	ComputedAt        time.Time          `json:"computed_at"`
}

// TableService computes matrices through the hosted routing API.
type TableService struct {
	provider    table.Provider
	coordinator *latest.Coordinator
	scale       traffic.Scale
	publisher   kafka.Publisher
	logger      *zap.Logger
}

// NewTableService creates a new TableService.
func NewTableService(
	provider table.Provider,
	coordinator *latest.Coordinator,
	scale traffic.Scale,
	publisher kafka.Publisher,
	logger *zap.Logger,
) *TableService {
	return &TableService{
		provider:    provider,
		coordinator: coordinator,
		scale:       scale,
		publisher:   publisher,
		logger:      logger,
	}
}

// ComputeTable computes a matrix for req. With a session ID, only the latest request of
// that session is answered.
func (s *TableService) ComputeTable(ctx context.Context, sessionID string, req ComputeTableRequest) (*TableResultDTO, error) {
	profile, err := route.ParseProfile(req.Profile)
	if err != nil {
		return nil, err
	}
	if req.Traffic && profile != route.ProfileDriving && profile != route.ProfileDrivingTraffic {
		return nil, domain.NewValidationError(fmt.Sprintf("traffic impact needs a driving profile, got %s", profile))
	}

	tr := table.Request{
		Coordinates:  req.Coordinates,
		Sources:      req.Sources,
		Destinations: req.Destinations,
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}

	result, err := latest.Do(ctx, s.coordinator, sessionKey(sessionID, "table"), func(ctx context.Context) (*TableResultDTO, error) {
		if req.Traffic {
			return s.computeWithTraffic(ctx, tr)
		}
		m, err := s.provider.Table(ctx, profile, tr)
		if err != nil {
			return nil, err
		}
		return newTableResult(profile, m), nil
	})
	if err != nil {
		if errors.Is(err, latest.ErrSuperseded) {
			s.logger.Debug("table request superseded", zap.String("session_id", sessionID))
		}
		return nil, err
	}

	publishEvent(ctx, s.publisher, s.logger, contract.TableComputed, "", contract.TableComputedEvent{
		SessionID:    sessionID,
		Profile:      string(result.Profile),
		Sources:      len(result.Sources),
		Destinations: len(result.Destinations),
		Traffic:      req.Traffic,
		Unreachable:  countUnreachable(result.Durations),
		OccurredAt:   result.ComputedAt,
	})

	return result, nil
}

// computeWithTraffic fetches the free-flow and traffic-aware matrices concurrently and
// compares them cell by cell.
func (s *TableService) computeWithTraffic(ctx context.Context, tr table.Request) (*TableResultDTO, error) {
	var baseline, busy table.Matrix

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.provider.Table(gctx, route.ProfileDriving, tr)
		if err != nil {
			return fmt.Errorf("failed to fetch baseline matrix: %w", err)
		}
		baseline = m
		return nil
	})
	g.Go(func() error {
		m, err := s.provider.Table(gctx, route.ProfileDrivingTraffic, tr)
		if err != nil {
			return fmt.Errorf("failed to fetch traffic matrix: %w", err)
		}
		busy = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	impact, err := table.ImpactMatrix(baseline, busy, s.scale)
	if err != nil {
		return nil, fmt.Errorf("failed to compare matrices: %w", err)
	}

	result := newTableResult(route.ProfileDrivingTraffic, busy)
	result.BaselineDurations = baseline.Durations
	result.Impact = impact
	return result, nil
}

func newTableResult(profile route.Profile, m table.Matrix) *TableResultDTO {
	return &TableResultDTO{
		Profile:      profile,
		Sources:      m.Sources,
		Destinations: m.Destinations,
		Durations:    m.Durations,
		Distances:    m.Distances,
		ComputedAt:   time.Now().UTC(),
	}
}

func countUnreachable(cells [][]*float64) int {
	n := 0
	for _, row := range cells {
		for _, v := range row {
			if v == nil {
				n++
			}
		}
	}
	return n
}
