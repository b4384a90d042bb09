package table

import (
	"fmt"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/traffic"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
)

// MaxCoordinates is the most coordinates the matrix endpoint accepts.
const MaxCoordinates = 25

// Request selects which coordinates act as sources and destinations. Empty index lists
// mean "every coordinate".
type Request struct {
	Coordinates  []geo.Coordinate `json:"coordinates"`
	Sources      []int            `json:"sources,omitempty"`
	Destinations []int            `json:"destinations,omitempty"`
}

// Validate checks the coordinate count and index lists.
func (r Request) Validate() error {
	n := len(r.Coordinates)
	if n < 2 {
		return domain.NewValidationError("a table needs at least 2 coordinates")
	}
	if n > MaxCoordinates {
		return domain.NewValidationError(fmt.Sprintf("a table supports at most %d coordinates, got %d", MaxCoordinates, n))
	}
	for i, c := range r.Coordinates {
		if err := c.Validate(); err != nil {
			return domain.NewValidationError(fmt.Sprintf("coordinate %d: %v", i, err))
		}
	}
	if err := validateIndices("sources", r.Sources, n); err != nil {
		return err
	}
	return validateIndices("destinations", r.Destinations, n)
}

// SourceIndices returns the effective source indices.
func (r Request) SourceIndices() []int {
	return orAll(r.Sources, len(r.Coordinates))
}

// DestinationIndices returns the effective destination indices.
func (r Request) DestinationIndices() []int {
	return orAll(r.Destinations, len(r.Coordinates))
}

func validateIndices(field string, indices []int, n int) error {
	seen := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i < 0 || i >= n {
			return domain.NewValidationError(fmt.Sprintf("%s index %d out of range [0, %d)", field, i, n))
		}
		if _, dup := seen[i]; dup {
			return domain.NewValidationError(fmt.Sprintf("duplicate %s index %d", field, i))
		}
		seen[i] = struct{}{}
	}
	return nil
}

func orAll(indices []int, n int) []int {
	if len(indices) > 0 {
		return append([]int(nil), indices...)
	}
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	return all
}

// Matrix is a durations/distances table; a nil cell means no route was found.
type Matrix struct {
	Sources      []geo.Coordinate `json:"sources"`
	Destinations []geo.Coordinate `json:"destinations"`
	Durations    [][]*float64     `json:"durations"`
	Distances    [][]*float64     `json:"distances,omitempty"`
}

// Rows returns the number of sources.
func (m Matrix) Rows() int { return len(m.Durations) }

// Cols returns the number of destinations.
func (m Matrix) Cols() int {
	if len(m.Durations) == 0 {
		return 0
	}
	return len(m.Durations[0])
}

// Duration returns the duration cell, or nil when out of range or unreachable.
func (m Matrix) Duration(i, j int) *float64 {
	if i < 0 || i >= len(m.Durations) || j < 0 || j >= len(m.Durations[i]) {
		return nil
	}
	return m.Durations[i][j]
}

// ImpactMatrix compares a traffic-aware matrix against a baseline matrix cell by cell.
func ImpactMatrix(baseline, withTraffic Matrix, scale traffic.Scale) ([][]traffic.Impact, error) {
	if baseline.Rows() != withTraffic.Rows() || baseline.Cols() != withTraffic.Cols() {
		return nil, fmt.Errorf("matrix dimensions differ: baseline %dx%d, traffic %dx%d",
			baseline.Rows(), baseline.Cols(), withTraffic.Rows(), withTraffic.Cols())
	}

	out := make([][]traffic.Impact, baseline.Rows())
	for i := range out {
		out[i] = make([]traffic.Impact, baseline.Cols())
		for j := range out[i] {
			var ratio *float64
			base, busy := baseline.Duration(i, j), withTraffic.Duration(i, j)
			if base != nil && busy != nil {
				ratio = traffic.Ratio(*busy, *base)
			}
			out[i][j] = traffic.NewImpact(ratio, scale)
		}
	}
	return out, nil
}
