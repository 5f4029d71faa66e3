package planner

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/craftplan/internal/catalog"
	"github.com/cory-johannsen/craftplan/internal/plan"
)

// Range is an inclusive [Min, Max] quantity bound.
type Range struct {
	Min int
	Max int
}

// Fixed reports whether the bound is a single value.
func (r Range) Fixed() bool { return r.Min == r.Max }

// String renders the range as "n" or "min-max".
func (r Range) String() string {
	if r.Fixed() {
		return fmt.Sprintf("%d", r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// Need is one ingredient of a step: the per-craft quantity and the total
// needed across all crafts of the step.
type Need struct {
	ItemID   string
	Quantity int
	Needed   Range
}

// Step is one item's crafting instruction.
type Step struct {
	ItemID        string
	RecipeIndex   int
	QuantityToGet int
	// Output is the per-craft yield bound of the selected recipe.
	Output      Range
	Crafts      Range
	Produced    Range
	Depth       int
	Ingredients []Need
}

// BuildSteps turns accumulated demand into crafting steps sorted leaf-first.
// Demanded items without a resolvable recipe produce no step. Steps of equal
// depth keep the demand order.
//
// Postcondition: for every step Crafts.Min <= Crafts.Max and
// Produced.Min <= Produced.Max.
func BuildSteps(cat *catalog.Catalog, sel plan.Selections, policy YieldPolicy, demand []Demand, ranker *Ranker) []Step {
	steps := make([]Step, 0, len(demand))
	for _, d := range demand {
		it, ok := cat.Item(d.ItemID)
		if !ok {
			continue
		}
		recipe, idx := it.SelectRecipe(sel[d.ItemID])
		if recipe == nil {
			continue
		}
		minOut, maxOut := policy.Bounds(recipe.Yield)
		outMin, outMax := max(1, minOut), max(1, maxOut)
		crafts := Range{Min: ceilDiv(d.Quantity, outMax), Max: ceilDiv(d.Quantity, outMin)}

		needs := make([]Need, 0, len(recipe.Consumed))
		for _, ing := range recipe.Consumed {
			needs = append(needs, Need{
				ItemID:   ing.ItemID,
				Quantity: ing.Quantity,
				Needed:   Range{Min: ing.Quantity * crafts.Min, Max: ing.Quantity * crafts.Max},
			})
		}
		steps = append(steps, Step{
			ItemID:        d.ItemID,
			RecipeIndex:   idx,
			QuantityToGet: d.Quantity,
			Output:        Range{Min: outMin, Max: outMax},
			Crafts:        crafts,
			Produced:      Range{Min: crafts.Min * outMin, Max: crafts.Max * outMax},
			Depth:         ranker.Depth(d.ItemID),
			Ingredients:   needs,
		})
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Depth < steps[j].Depth })
	return steps
}

// Outstanding returns the step's ingredients with the live inventory
// subtracted from both bounds, floored at 0.
func (s Step) Outstanding(inventory plan.Quantities) []Need {
	out := make([]Need, len(s.Ingredients))
	for i, n := range s.Ingredients {
		have := inventory[n.ItemID]
		n.Needed = Range{Min: max(0, n.Needed.Min-have), Max: max(0, n.Needed.Max-have)}
		out[i] = n
	}
	return out
}

// Covered reports whether inventory already holds the maximum of every
// ingredient. A step without ingredients is always covered.
func (s Step) Covered(inventory plan.Quantities) bool {
	for _, n := range s.Outstanding(inventory) {
		if n.Needed.Max > 0 {
			return false
		}
	}
	return true
}

// VisibleSteps drops steps that inventory fully covers.
func VisibleSteps(steps []Step, inventory plan.Quantities) []Step {
	out := make([]Step, 0, len(steps))
	for _, s := range steps {
		if !s.Covered(inventory) {
			out = append(out, s)
		}
	}
	return out
}
