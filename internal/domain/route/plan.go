package route

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
	"github.com/google/uuid"
)

const (
	maxPlanNameLength   = 120
	maxFailureNoteRunes = 500
)

// Summary is the outcome of the last successful computation of a plan.
type Summary struct {
	DistanceM    float64   `json:"distance_m"`
	DurationS    float64   `json:"duration_s"`
	TrafficRatio *float64  `json:"traffic_ratio,omitempty"`
	Polyline     string    `json:"polyline"`
	ComputedAt   time.Time `json:"computed_at"`
}

// Plan is the aggregate root for a saved multi-stop route.
type Plan struct {
	id          uuid.UUID
	name        string
	profile     Profile
	points      Points
	status      PlanStatus
	summary     *Summary
	failureNote string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewPlan creates a draft plan.
func NewPlan(name string, profile Profile, points Points) (*Plan, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	if !profile.IsValid() {
		return nil, domain.NewValidationError("invalid routing profile: " + string(profile))
	}
	if err := points.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Plan{
		id:        uuid.New(),
		name:      name,
		profile:   profile,
		points:    append(Points(nil), points...),
		status:    PlanDraft,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructPlan rebuilds a Plan from persistence data (no validation).
func ReconstructPlan(
	id uuid.UUID,
	name string,
	profile Profile,
	points Points,
	status PlanStatus,
	summary *Summary,
	failureNote string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Plan {
	return &Plan{
		id:          id,
		name:        name,
		profile:     profile,
		points:      points,
		status:      status,
		summary:     summary,
		failureNote: failureNote,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

// ID returns the plan's unique identifier.
func (p *Plan) ID() uuid.UUID { return p.id }

// Name returns the display name.
func (p *Plan) Name() string { return p.name }

// Profile returns the routing profile.
func (p *Plan) Profile() Profile { return p.profile }

// Points returns a copy of the plan's points.
func (p *Plan) Points() Points { return append(Points(nil), p.points...) }

// Status returns the current plan status.
func (p *Plan) Status() PlanStatus { return p.status }

// Summary returns the last computed summary, or nil if never computed.
func (p *Plan) Summary() *Summary { return p.summary }

// FailureNote returns why the last computation failed.
func (p *Plan) FailureNote() string { return p.failureNote }

// Version returns the entity version for optimistic locking.
func (p *Plan) Version() int64 { return p.version }

// CreatedAt returns the creation timestamp.
func (p *Plan) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (p *Plan) UpdatedAt() time.Time { return p.updatedAt }

// --- Behavior ---

// Rename changes the display name.
func (p *Plan) Rename(name string) error {
	if p.status.IsTerminal() {
		return domain.NewReadOnlyError("plan", string(p.status))
	}
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	p.name = name
	p.updatedAt = time.Now().UTC()
	return nil
}

// ReplacePoints swaps the whole point list; a computed plan goes back to draft.
func (p *Plan) ReplacePoints(points Points) error {
	if err := points.Validate(); err != nil {
		return err
	}
	return p.editPoints(append(Points(nil), points...))
}

// AddWaypoint inserts a waypoint at index.
func (p *Plan) AddWaypoint(index int, location geo.Coordinate, name string) error {
	pts, err := p.points.InsertWaypoint(index, location, name)
	if err != nil {
		return err
	}
	return p.editPoints(pts)
}

// RemoveWaypoint drops the waypoint at index.
func (p *Plan) RemoveWaypoint(index int) error {
	pts, err := p.points.RemoveWaypoint(index)
	if err != nil {
		return err
	}
	return p.editPoints(pts)
}

func (p *Plan) editPoints(points Points) error {
	if p.status.IsTerminal() {
		return domain.NewReadOnlyError("plan", string(p.status))
	}
	p.points = points
	if p.status != PlanDraft {
		p.status = PlanDraft
	}
	p.updatedAt = time.Now().UTC()
	return nil
}

// MarkComputed records a successful computation.
func (p *Plan) MarkComputed(summary Summary) error {
	if !p.status.CanTransitionTo(PlanComputed) {
		return domain.NewInvalidStateError(string(p.status), string(PlanComputed))
	}
	p.status = PlanComputed
	p.summary = &summary
	p.failureNote = ""
	p.updatedAt = time.Now().UTC()
	return nil
}

// MarkFailed records a failed computation; the previous summary is kept. Notes longer
// than 500 characters are cut.
func (p *Plan) MarkFailed(note string) error {
	if !p.status.CanTransitionTo(PlanFailed) {
		return domain.NewInvalidStateError(string(p.status), string(PlanFailed))
	}
	p.status = PlanFailed
	p.failureNote = truncateRunes(note, maxFailureNoteRunes)
	p.updatedAt = time.Now().UTC()
	return nil
}

// Archive retires the plan; archived plans are read-only.
func (p *Plan) Archive() error {
	if !p.status.CanTransitionTo(PlanArchived) {
		return domain.NewInvalidStateError(string(p.status), string(PlanArchived))
	}
	p.status = PlanArchived
	p.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (p *Plan) IncrementVersion() {
	p.version++
	p.updatedAt = time.Now().UTC()
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.NewValidationError("plan name is required")
	}
	if len(name) > maxPlanNameLength {
		return "", domain.NewValidationError("plan name is too long")
	}
	return name, nil
}
