package route

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlan(t *testing.T) *Plan {
	t.Helper()
	plan, err := NewPlan("  Morning run  ", ProfileDriving, mustPoints(t))
	require.NoError(t, err)
	return plan
}

func TestNewPlan(t *testing.T) {
	plan := newTestPlan(t)
	assert.Equal(t, "Morning run", plan.Name())
	assert.Equal(t, PlanDraft, plan.Status())
	assert.Equal(t, int64(1), plan.Version())
	assert.Nil(t, plan.Summary())

	_, err := NewPlan("", ProfileDriving, mustPoints(t))
	assert.Error(t, err)
	_, err = NewPlan(strings.Repeat("x", 200), ProfileDriving, mustPoints(t))
	assert.Error(t, err)
	_, err = NewPlan("x", "boat", mustPoints(t))
	assert.Error(t, err)
	_, err = NewPlan("x", ProfileDriving, Points{})
	assert.Error(t, err)
}

func TestPlan_ComputeLifecycle(t *testing.T) {
	plan := newTestPlan(t)

	require.NoError(t, plan.MarkComputed(Summary{DistanceM: 5200, DurationS: 600, ComputedAt: time.Now()}))
	assert.Equal(t, PlanComputed, plan.Status())
	require.NotNil(t, plan.Summary())
	assert.Equal(t, 5200.0, plan.Summary().DistanceM)

	require.NoError(t, plan.MarkFailed("NoRoute"))
	assert.Equal(t, PlanFailed, plan.Status())
	assert.Equal(t, "NoRoute", plan.FailureNote())
	assert.NotNil(t, plan.Summary(), "failed recompute keeps the last summary")

	require.NoError(t, plan.MarkComputed(Summary{DistanceM: 1}))
	assert.Empty(t, plan.FailureNote())
}

func TestPlan_EditingResetsToDraft(t *testing.T) {
	plan := newTestPlan(t)
	require.NoError(t, plan.MarkComputed(Summary{}))

	require.NoError(t, plan.AddWaypoint(1, bangsar, "Bangsar"))
	assert.Equal(t, PlanDraft, plan.Status())
	assert.Len(t, plan.Points(), 3)

	require.NoError(t, plan.MarkComputed(Summary{}))
	require.NoError(t, plan.RemoveWaypoint(1))
	assert.Equal(t, PlanDraft, plan.Status())
	assert.Len(t, plan.Points(), 2)

	assert.Error(t, plan.RemoveWaypoint(0))
	assert.Error(t, plan.ReplacePoints(Points{}))

	require.NoError(t, plan.ReplacePoints(mustPoints(t, chowKit)))
	assert.Len(t, plan.Points(), 3)
}

func TestPlan_ArchivedIsReadOnly(t *testing.T) {
	plan := newTestPlan(t)
	require.NoError(t, plan.Archive())
	assert.True(t, plan.Status().IsTerminal())

	var stateErr *domain.InvalidStateError
	assert.True(t, errors.As(plan.Archive(), &stateErr))
	assert.True(t, errors.As(plan.MarkComputed(Summary{}), &stateErr))
	assert.True(t, errors.As(plan.AddWaypoint(1, bangsar, ""), &stateErr))
	assert.True(t, errors.As(plan.Rename("new"), &stateErr))
	assert.Equal(t, "plan is archived and can no longer be modified", stateErr.Error())
}

func TestPlan_MarkFailedCapsNote(t *testing.T) {
	plan := newTestPlan(t)
	long := "routing-api error (502): " + strings.Repeat("é", 4096)

	require.NoError(t, plan.MarkFailed(long))
	assert.Equal(t, PlanFailed, plan.Status())
	assert.Equal(t, maxFailureNoteRunes, utf8.RuneCountInString(plan.FailureNote()))
	assert.True(t, strings.HasPrefix(plan.FailureNote(), "routing-api error (502): "))

	require.NoError(t, plan.ReplacePoints(mustPoints(t)))
	require.NoError(t, plan.MarkFailed("route not found"))
	assert.Equal(t, "route not found", plan.FailureNote())
}

func TestPlan_PointsAreCopied(t *testing.T) {
	plan := newTestPlan(t)
	pts := plan.Points()
	pts[0].Name = "mutated"
	assert.Empty(t, plan.Points()[0].Name)
}

func TestPlanStatus(t *testing.T) {
	assert.True(t, PlanDraft.CanTransitionTo(PlanComputed))
	assert.False(t, PlanDraft.CanTransitionTo(PlanDraft))
	assert.False(t, PlanArchived.CanTransitionTo(PlanDraft))

	s, err := ParsePlanStatus("failed")
	require.NoError(t, err)
	assert.Equal(t, PlanFailed, s)

	_, err = ParsePlanStatus("pending")
	assert.Error(t, err)
}

func TestPlan_IncrementVersion(t *testing.T) {
	plan := newTestPlan(t)
	before := plan.UpdatedAt()
	plan.IncrementVersion()
	assert.Equal(t, int64(2), plan.Version())
	assert.False(t, plan.UpdatedAt().Before(before))
}
