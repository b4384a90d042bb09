// Package contract holds the topic names, event types and payloads exchanged over Kafka.
package contract

import (
	"time"

	"github.com/google/uuid"
)

// Source is the CloudEvents source of everything this service publishes.
const Source = "service-routing"

// Topics.
const (
	TopicRoutingEvents   = "routing.events"
	TopicRoutingCommands = "routing.commands"
)

// Event types published on TopicRoutingEvents.
const (
	RouteComputed      = "route.computed"
	TableComputed      = "table.computed"
	PlanCreated        = "plan.created"
	PlanComputed       = "plan.computed"
	PlanComputeFailed  = "plan.compute_failed"
	PlanArchived       = "plan.archived"
	PlanRecomputeAsked = "plan.recompute_requested"
)

// RouteComputedEvent is emitted after a route was delivered to a caller.
type RouteComputedEvent struct {
	SessionID    string    `json:"session_id,omitempty"`
	Profile      string    `json:"profile"`
	Points       int       `json:"points"`
	DistanceM    float64   `json:"distance_m"`
	DurationS    float64   `json:"duration_s"`
	TrafficRatio *float64  `json:"traffic_ratio,omitempty"`
	Alternatives int       `json:"alternatives"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// TableComputedEvent is emitted after a matrix was delivered to a caller.
type TableComputedEvent struct {
	SessionID    string    `json:"session_id,omitempty"`
	Profile      string    `json:"profile"`
	Sources      int       `json:"sources"`
	Destinations int       `json:"destinations"`
	Traffic      bool      `json:"traffic"`
	Unreachable  int       `json:"unreachable"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// PlanCreatedEvent is emitted when a plan is saved for the first time.
type PlanCreatedEvent struct {
	PlanID     uuid.UUID `json:"plan_id"`
	Name       string    `json:"name"`
	Profile    string    `json:"profile"`
	Points     int       `json:"points"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PlanComputedEvent is emitted when a plan's route was computed and stored.
type PlanComputedEvent struct {
	PlanID       uuid.UUID `json:"plan_id"`
	DistanceM    float64   `json:"distance_m"`
	DurationS    float64   `json:"duration_s"`
	TrafficRatio *float64  `json:"traffic_ratio,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// PlanComputeFailedEvent is emitted when computing a plan's route failed.
type PlanComputeFailedEvent struct {
	PlanID     uuid.UUID `json:"plan_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PlanArchivedEvent is emitted when a plan is retired.
type PlanArchivedEvent struct {
	PlanID     uuid.UUID `json:"plan_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PlanRecomputeRequestedEvent is the command consumed from TopicRoutingCommands.
type PlanRecomputeRequestedEvent struct {
	PlanID uuid.UUID `json:"plan_id"`
}
