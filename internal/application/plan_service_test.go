package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/contract"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/route"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
)

type planFixture struct {
	svc      *PlanService
	repo     *memPlanRepo
	provider *fakeRouteProvider
	pub      *recordingPublisher
}

func newPlanFixture(fn func(context.Context, route.Query) ([]route.Route, error)) *planFixture {
	provider := &fakeRouteProvider{fn: fn}
	pub := &recordingPublisher{}
	repo := newMemPlanRepo()
	routes := newRouteService(provider, pub)
	return &planFixture{
		svc:      NewPlanService(repo, routes, pub, zap.NewNop()),
		repo:     repo,
		provider: provider,
		pub:      pub,
	}
}

func (f *planFixture) create(t *testing.T) *PlanDTO {
	t.Helper()
	plan, err := f.svc.CreatePlan(context.Background(), CreatePlanRequest{
		Name:    "Office run",
		Profile: "driving",
		Points:  twoPoints(),
	})
	require.NoError(t, err)
	return plan
}

func TestCreatePlan(t *testing.T) {
	f := newPlanFixture(straightRoute(1, 1, nil))

	plan := f.create(t)
	assert.Equal(t, "Office run", plan.Name)
	assert.Equal(t, "draft", plan.Status)
	assert.Equal(t, int64(1), plan.Version)
	require.Len(t, plan.Markers, 2)
	assert.Equal(t, "A", plan.Markers[0].Label)
	assert.Equal(t, []string{contract.PlanCreated}, f.pub.types())
	assert.Equal(t, plan.ID.String(), f.pub.events[0].Subject)

	got, err := f.svc.GetPlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, got.ID)
}

func TestCreatePlan_Validation(t *testing.T) {
	f := newPlanFixture(straightRoute(1, 1, nil))

	_, err := f.svc.CreatePlan(context.Background(), CreatePlanRequest{Name: " ", Points: twoPoints()})
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.CreatePlan(context.Background(), CreatePlanRequest{Name: "x", Profile: "boat", Points: twoPoints()})
	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, f.pub.types())
}

func TestGetPlan_NotFound(t *testing.T) {
	f := newPlanFixture(straightRoute(1, 1, nil))

	_, err := f.svc.GetPlan(context.Background(), uuid.New())
	assert.True(t, domain.IsNotFound(err))
}

func TestComputePlan_Success(t *testing.T) {
	f := newPlanFixture(straightRoute(6000, 660, ptr(600)))
	plan := f.create(t)

	computed, err := f.svc.ComputePlan(context.Background(), plan.ID)
	require.NoError(t, err)

	assert.Equal(t, "computed", computed.Status)
	assert.Equal(t, int64(2), computed.Version)
	require.NotNil(t, computed.Summary)
	assert.Equal(t, 6000.0, computed.Summary.DistanceM)
	assert.Equal(t, geo.EncodePolyline([]geo.Coordinate{klcc, midValley}, geo.Precision6), computed.Summary.Polyline)
	require.NotNil(t, computed.Summary.TrafficRatio)
	assert.InDelta(t, 1.1, *computed.Summary.TrafficRatio, 1e-9)

	require.Len(t, f.provider.queries, 1)
	assert.Equal(t, route.ProfileDriving, f.provider.queries[0].Profile)
	assert.Equal(t, []string{contract.PlanCreated, contract.RouteComputed, contract.PlanComputed}, f.pub.types())
}

func TestComputePlan_FailureIsRecorded(t *testing.T) {
	f := newPlanFixture(func(context.Context, route.Query) ([]route.Route, error) {
		return nil, domain.NewNotFoundError("route", "")
	})
	plan := f.create(t)

	_, err := f.svc.ComputePlan(context.Background(), plan.ID)
	assert.True(t, domain.IsNotFound(err))
	var recorded *FailureRecordedError
	require.True(t, errors.As(err, &recorded))
	assert.Equal(t, plan.ID, recorded.PlanID)

	stored, err := f.svc.GetPlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", stored.Status)
	assert.Equal(t, "route not found", stored.FailureNote)
	assert.Equal(t, int64(2), stored.Version)

	types := f.pub.types()
	assert.Equal(t, contract.PlanComputeFailed, types[len(types)-1])
}

func TestComputePlan_LongUpstreamMessageIsCapped(t *testing.T) {
	body := strings.Repeat("x", 4096)
	f := newPlanFixture(func(context.Context, route.Query) ([]route.Route, error) {
		return nil, domain.NewUpstreamError("routing-api", 502, "", body)
	})
	plan := f.create(t)

	_, err := f.svc.ComputePlan(context.Background(), plan.ID)
	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))

	stored, err := f.svc.GetPlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", stored.Status)
	assert.Len(t, stored.FailureNote, 500)
	assert.True(t, strings.HasPrefix(stored.FailureNote, "routing-api error (502): x"))

	var failed contract.PlanComputeFailedEvent
	require.NoError(t, f.pub.decode(len(f.pub.types())-1, &failed))
	assert.Equal(t, stored.FailureNote, failed.Reason)
}

func TestComputePlan_CancelledIsNotRecorded(t *testing.T) {
	f := newPlanFixture(func(ctx context.Context, _ route.Query) ([]route.Route, error) {
		return nil, ctx.Err()
	})
	plan := f.create(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.svc.ComputePlan(ctx, plan.ID)
	assert.ErrorIs(t, err, context.Canceled)

	stored, err := f.svc.GetPlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", stored.Status)
}

func TestComputePlan_ArchivedIsRejected(t *testing.T) {
	f := newPlanFixture(straightRoute(1, 1, nil))
	plan := f.create(t)

	_, err := f.svc.ArchivePlan(context.Background(), plan.ID)
	require.NoError(t, err)

	_, err = f.svc.ComputePlan(context.Background(), plan.ID)
	var stateErr *domain.InvalidStateError
	assert.True(t, errors.As(err, &stateErr))
	assert.Zero(t, f.provider.calls())
}

func TestEditingComputedPlanResetsToDraft(t *testing.T) {
	f := newPlanFixture(straightRoute(100, 10, nil))
	plan := f.create(t)
	_, err := f.svc.ComputePlan(context.Background(), plan.ID)
	require.NoError(t, err)

	updated, err := f.svc.AddWaypoint(context.Background(), plan.ID, AddWaypointRequest{
		Index:    1,
		Location: bangsar,
		Name:     "Bangsar",
	})
	require.NoError(t, err)
	assert.Equal(t, "draft", updated.Status)
	require.Len(t, updated.Points, 3)
	assert.Equal(t, route.PointWaypoint, updated.Points[1].Type)
	assert.Equal(t, "B", updated.Markers[1].Label)
	assert.NotNil(t, updated.Summary, "last summary is kept until the next compute")

	removed, err := f.svc.RemoveWaypoint(context.Background(), plan.ID, 1)
	require.NoError(t, err)
	assert.Len(t, removed.Points, 2)

	_, err = f.svc.RemoveWaypoint(context.Background(), plan.ID, 0)
	assert.True(t, domain.IsValidation(err))
}

func TestRenameAndReplacePoints(t *testing.T) {
	f := newPlanFixture(straightRoute(1, 1, nil))
	plan := f.create(t)

	renamed, err := f.svc.RenamePlan(context.Background(), plan.ID, RenamePlanRequest{Name: "School run"})
	require.NoError(t, err)
	assert.Equal(t, "School run", renamed.Name)

	pts, err := route.NewPoints(midValley, klcc)
	require.NoError(t, err)
	replaced, err := f.svc.ReplacePoints(context.Background(), plan.ID, ReplacePointsRequest{Points: pts})
	require.NoError(t, err)
	assert.Equal(t, midValley, replaced.Points[0].Location)
	assert.Equal(t, int64(3), replaced.Version)
}

func TestArchivePlan(t *testing.T) {
	f := newPlanFixture(straightRoute(1, 1, nil))
	plan := f.create(t)

	archived, err := f.svc.ArchivePlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "archived", archived.Status)
	assert.Equal(t, []string{contract.PlanCreated, contract.PlanArchived}, f.pub.types())

	_, err = f.svc.RenamePlan(context.Background(), plan.ID, RenamePlanRequest{Name: "again"})
	var stateErr *domain.InvalidStateError
	assert.True(t, errors.As(err, &stateErr))

	_, err = f.svc.ArchivePlan(context.Background(), plan.ID)
	assert.True(t, errors.As(err, &stateErr))
}

func TestListPlansAndStats(t *testing.T) {
	f := newPlanFixture(straightRoute(1, 1, nil))
	first := f.create(t)
	f.create(t)
	third := f.create(t)

	_, err := f.svc.ArchivePlan(context.Background(), first.ID)
	require.NoError(t, err)
	_, err = f.svc.ComputePlan(context.Background(), third.ID)
	require.NoError(t, err)

	active, err := f.svc.ListPlans(context.Background(), "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), active.Total)

	archived, err := f.svc.ListPlans(context.Background(), "archived", 1, 10)
	require.NoError(t, err)
	require.Len(t, archived.Items, 1)
	assert.Equal(t, first.ID, archived.Items[0].ID)

	_, err = f.svc.ListPlans(context.Background(), "lost", 1, 10)
	assert.True(t, domain.IsValidation(err))

	stats, err := f.svc.GetPlanStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalPlans)
	assert.Equal(t, int64(1), stats.ByStatus["archived"])
	assert.Equal(t, int64(1), stats.ByStatus["computed"])
	assert.Equal(t, int64(1), stats.ByStatus["draft"])
}

func TestModify_ConflictSurfaces(t *testing.T) {
	f := newPlanFixture(straightRoute(1, 1, nil))
	plan := f.create(t)
	f.repo.updateErr = domain.NewConflictError("plan was modified concurrently, please retry")

	_, err := f.svc.RenamePlan(context.Background(), plan.ID, RenamePlanRequest{Name: "other"})
	var conflict *domain.ConflictError
	assert.True(t, errors.As(err, &conflict))
}
