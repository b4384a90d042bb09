package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/contract"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/route"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/traffic"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/latest"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/kafka"
)

// ComputeRouteRequest holds the data needed to compute a route.
type ComputeRouteRequest struct {
	Points       route.Points `json:"points" binding:"required"`
	Profile      string       `json:"profile"`
	Geometry     string       `json:"geometry"`
	Alternatives bool         `json:"alternatives"`
}

// RouteDTO is the response representation of one computed route.
type RouteDTO struct {
	DistanceM        float64         `json:"distance_m"`
	DurationS        float64         `json:"duration_s"`
	TypicalDurationS *float64        `json:"typical_duration_s,omitempty"`
	Legs             []route.Leg     `json:"legs"`
	Geometry         geo.Geometry    `json:"geometry"`
	Traffic          *traffic.Impact `json:"traffic,omitempty"`
}

// RouteResultDTO is the response of a route computation: the best route first, then any
// alternatives, plus the markers and bounds needed to draw them.
type RouteResultDTO struct {
	Profile        route.Profile      `json:"profile"`
	GeometryFormat geo.GeometryFormat `json:"geometry_format"`
	Routes         []RouteDTO         `json:"routes"`
	Markers        []route.Marker     `json:"markers"`
	Bounds         geo.BoundingBox    `json:"bounds"`
	ComputedAt     time.Time          `json:"computed_at"`
}

// RouteService computes routes through the hosted routing API.
type RouteService struct {
	provider    route.Provider
	coordinator *latest.Coordinator
	scale       traffic.Scale
	publisher   kafka.Publisher
	logger      *zap.Logger
}

// NewRouteService creates a new RouteService.
func NewRouteService(
	provider route.Provider,
	coordinator *latest.Coordinator,
	scale traffic.Scale,
	publisher kafka.Publisher,
	logger *zap.Logger,
) *RouteService {
	return &RouteService{
		provider:    provider,
		coordinator: coordinator,
		scale:       scale,
		publisher:   publisher,
		logger:      logger,
	}
}

// ComputeRoute computes a route through req.Points. With a session ID, only the latest
// request of that session is answered; earlier ones fail with latest.ErrSuperseded.
func (s *RouteService) ComputeRoute(ctx context.Context, sessionID string, req ComputeRouteRequest) (*RouteResultDTO, error) {
	profile, err := route.ParseProfile(req.Profile)
	if err != nil {
		return nil, err
	}
	format, err := geo.ParseGeometryFormat(req.Geometry)
	if err != nil {
		return nil, err
	}
	if err := req.Points.Validate(); err != nil {
		return nil, err
	}

	query := route.Query{
		Profile:      profile,
		Coordinates:  req.Points.Coordinates(),
		Alternatives: req.Alternatives,
	}
	routes, err := latest.Do(ctx, s.coordinator, sessionKey(sessionID, "route"), func(ctx context.Context) ([]route.Route, error) {
		return s.provider.Route(ctx, query)
	})
	if err != nil {
		if errors.Is(err, latest.ErrSuperseded) {
			s.logger.Debug("route request superseded", zap.String("session_id", sessionID))
		}
		return nil, err
	}
	if len(routes) == 0 {
		return nil, domain.NewNotFoundError("route", "")
	}

	result := s.buildResult(profile, format, req.Points, routes)

	best := result.Routes[0]
	evt := contract.RouteComputedEvent{
		SessionID:    sessionID,
		Profile:      string(profile),
		Points:       len(req.Points),
		DistanceM:    best.DistanceM,
		DurationS:    best.DurationS,
		Alternatives: len(result.Routes) - 1,
		OccurredAt:   result.ComputedAt,
	}
	if best.Traffic != nil {
		evt.TrafficRatio = best.Traffic.Ratio
	}
	publishEvent(ctx, s.publisher, s.logger, contract.RouteComputed, "", evt)

	return result, nil
}

func (s *RouteService) buildResult(profile route.Profile, format geo.GeometryFormat, points route.Points, routes []route.Route) *RouteResultDTO {
	extent := points.Coordinates()
	dtos := make([]RouteDTO, len(routes))
	for i, r := range routes {
		dtos[i] = RouteDTO{
			DistanceM:        r.Distance,
			DurationS:        r.Duration,
			TypicalDurationS: r.TypicalDuration,
			Legs:             r.Legs,
			Geometry:         geo.NewGeometry(r.Geometry, format),
		}
		if r.TypicalDuration != nil {
			impact := traffic.NewImpact(traffic.Ratio(r.Duration, *r.TypicalDuration), s.scale)
			dtos[i].Traffic = &impact
		}
		extent = append(extent, r.Geometry...)
	}

	// extent always holds the points, so Bounds cannot fail here.
	bounds, _ := geo.Bounds(extent)

	return &RouteResultDTO{
		Profile:        profile,
		GeometryFormat: format,
		Routes:         dtos,
		Markers:        route.Markers(points),
		Bounds:         bounds,
		ComputedAt:     time.Now().UTC(),
	}
}

// sessionKey scopes coordination to one session and request kind; no session means no
// coordination.
func sessionKey(sessionID, kind string) string {
	if sessionID == "" {
		return ""
	}
	return sessionID + ":" + kind
}

// publishEvent wraps data in a CloudEvent and publishes it on the routing events topic.
// Failures are logged and never fail the request.
func publishEvent(ctx context.Context, publisher kafka.Publisher, logger *zap.Logger, eventType, subject string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(contract.Source, eventType, data)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = subject

	if err := publisher.PublishEvent(ctx, contract.TopicRoutingEvents, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", contract.TopicRoutingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
