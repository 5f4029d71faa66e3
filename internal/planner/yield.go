package planner

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/craftplan/internal/catalog"
)

// YieldPolicy decides how a variable recipe yield is planned for.
type YieldPolicy int

const (
	// PolicyRange plans for both the smallest and the largest outcome.
	PolicyRange YieldPolicy = iota
	// PolicyWeighted plans for the single most heavily weighted outcome.
	PolicyWeighted
)

// String returns the configuration name of p.
func (p YieldPolicy) String() string {
	switch p {
	case PolicyRange:
		return "range"
	case PolicyWeighted:
		return "weighted"
	}
	return fmt.Sprintf("YieldPolicy(%d)", int(p))
}

// ParseYieldPolicy maps a configuration value to a YieldPolicy.
func ParseYieldPolicy(s string) (YieldPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "range":
		return PolicyRange, nil
	case "weighted":
		return PolicyWeighted, nil
	}
	return PolicyRange, fmt.Errorf("unknown yield policy %q", s)
}

// Bounds returns the per-craft output bounds of y.
//
// Postcondition: minOut >= 0, maxOut >= 1, minOut <= maxOut. A fixed yield
// returns its quantity for both bounds.
func (p YieldPolicy) Bounds(y catalog.Yield) (minOut, maxOut int) {
	switch y.Kind {
	case catalog.YieldProbabilistic:
		if len(y.Outcomes) == 0 {
			return 1, 1
		}
		if p == PolicyWeighted {
			n := max(1, heaviest(y.Outcomes))
			return n, n
		}
		amounts := y.Amounts()
		minOut = max(0, amounts[0])
		maxOut = max(1, amounts[len(amounts)-1])
		return min(minOut, maxOut), maxOut
	default:
		q := max(1, y.Quantity)
		return q, q
	}
}

// heaviest returns the outcome with the largest weight, preferring the smaller
// amount on ties so the choice does not depend on map order.
func heaviest(outcomes map[int]float64) int {
	best, bestWeight, found := 0, 0.0, false
	for amount, weight := range outcomes {
		if !found || weight > bestWeight || (weight == bestWeight && amount < best) {
			best, bestWeight, found = amount, weight, true
		}
	}
	return best
}
