package route

import "fmt"

// PlanStatus represents where a saved plan is in its compute lifecycle.
type PlanStatus string

const (
	PlanDraft    PlanStatus = "draft"
	PlanComputed PlanStatus = "computed"
	PlanFailed   PlanStatus = "failed"
	PlanArchived PlanStatus = "archived"
)

// validPlanTransitions defines the state machine for plan status transitions.
var validPlanTransitions = map[PlanStatus][]PlanStatus{
	PlanDraft:    {PlanComputed, PlanFailed, PlanArchived},
	PlanComputed: {PlanDraft, PlanComputed, PlanFailed, PlanArchived},
	PlanFailed:   {PlanDraft, PlanComputed, PlanFailed, PlanArchived},
	PlanArchived: {},
}

// IsValid returns true if the status is a recognized plan status.
func (s PlanStatus) IsValid() bool {
	_, exists := validPlanTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s PlanStatus) CanTransitionTo(target PlanStatus) bool {
	for _, t := range validPlanTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s PlanStatus) IsTerminal() bool {
	return len(validPlanTransitions[s]) == 0
}

// String returns the string representation of the status.
func (s PlanStatus) String() string {
	return string(s)
}

// ParsePlanStatus converts a string to a PlanStatus, returning an error if invalid.
func ParsePlanStatus(s string) (PlanStatus, error) {
	status := PlanStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid plan status: %s", s)
	}
	return status, nil
}
