package application

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/place"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/route"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/table"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/kafka"
)

// --- Providers ---

type fakeRouteProvider struct {
	mu      sync.Mutex
	queries []route.Query
	fn      func(ctx context.Context, q route.Query) ([]route.Route, error)
}

func (f *fakeRouteProvider) Route(ctx context.Context, q route.Query) ([]route.Route, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.fn(ctx, q)
}

func (f *fakeRouteProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// straightRoute returns one route along the query coordinates.
func straightRoute(distance, duration float64, typical *float64) func(context.Context, route.Query) ([]route.Route, error) {
	return func(_ context.Context, q route.Query) ([]route.Route, error) {
		legs := make([]route.Leg, len(q.Coordinates)-1)
		for i := range legs {
			legs[i] = route.Leg{Distance: distance / float64(len(legs)), Duration: duration / float64(len(legs))}
		}
		return []route.Route{{
			Distance:        distance,
			Duration:        duration,
			TypicalDuration: typical,
			Weight:          duration,
			Geometry:        q.Coordinates,
			Legs:            legs,
		}}, nil
	}
}

type fakeTableProvider struct {
	mu       sync.Mutex
	profiles []route.Profile
	matrices map[route.Profile]table.Matrix
	errs     map[route.Profile]error
}

func (f *fakeTableProvider) Table(_ context.Context, profile route.Profile, _ table.Request) (table.Matrix, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles = append(f.profiles, profile)
	if err := f.errs[profile]; err != nil {
		return table.Matrix{}, err
	}
	return f.matrices[profile], nil
}

type fakeGeocoder struct {
	places  []place.Place
	err     error
	lastQry place.SearchQuery
}

func (f *fakeGeocoder) Geocode(_ context.Context, q place.SearchQuery) ([]place.Place, error) {
	f.lastQry = q
	return f.places, f.err
}

func (f *fakeGeocoder) ReverseGeocode(_ context.Context, _ geo.Coordinate) ([]place.Place, error) {
	return f.places, f.err
}

// --- Publisher ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func (p *recordingPublisher) decode(i int, v interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return json.Unmarshal(p.events[i].Data, v)
}

// --- Repository ---

type memPlanRepo struct {
	mu        sync.Mutex
	plans     map[uuid.UUID]*route.Plan
	updateErr error
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{plans: make(map[uuid.UUID]*route.Plan)}
}

func (r *memPlanRepo) FindByID(_ context.Context, id uuid.UUID) (*route.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, domain.NewNotFoundError("Plan", id.String())
	}
	return clonePlan(p), nil
}

func (r *memPlanRepo) List(_ context.Context, status route.PlanStatus, page, limit int) ([]*route.Plan, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*route.Plan
	for _, p := range r.plans {
		if (status == "" && p.Status() != route.PlanArchived) || p.Status() == status {
			matched = append(matched, clonePlan(p))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt().After(matched[j].CreatedAt()) })

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memPlanRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, p := range r.plans {
		counts[string(p.Status())]++
	}
	return counts, nil
}

func (r *memPlanRepo) Save(_ context.Context, plan *route.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[plan.ID()] = clonePlan(plan)
	return nil
}

func (r *memPlanRepo) Update(_ context.Context, plan *route.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.plans[plan.ID()]
	if !ok || stored.Version() != plan.Version()-1 {
		return domain.NewConflictError("plan was modified concurrently, please retry")
	}
	r.plans[plan.ID()] = clonePlan(plan)
	return nil
}

func clonePlan(p *route.Plan) *route.Plan {
	return route.ReconstructPlan(p.ID(), p.Name(), p.Profile(), p.Points(), p.Status(),
		p.Summary(), p.FailureNote(), p.Version(), p.CreatedAt(), p.UpdatedAt())
}

// --- Fixtures ---

var (
	klcc      = geo.Coordinate{Lat: 3.1579, Lng: 101.7116}
	midValley = geo.Coordinate{Lat: 3.1186, Lng: 101.6769}
	bangsar   = geo.Coordinate{Lat: 3.1290, Lng: 101.6790}
)

func twoPoints() route.Points {
	pts, _ := route.NewPoints(klcc, midValley)
	return pts
}

func ptr(v float64) *float64 { return &v }
