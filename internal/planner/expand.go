package planner

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/craftplan/internal/catalog"
	"github.com/cory-johannsen/craftplan/internal/plan"
)

// Demand is the total quantity of one item the expansion still has to obtain
// after inventory was applied.
type Demand struct {
	ItemID   string
	Quantity int
}

// Usage is the quantity of one item taken from inventory.
type Usage struct {
	ItemID   string
	Quantity int
}

// frame is one pending visit on the expansion worklist.
type frame struct {
	id   string
	qty  int
	path *ancestry
}

// Expander propagates demand through the recipe graph. All calls to Expand on
// one Expander share a private inventory copy and the demand and usage
// accumulators.
type Expander struct {
	cat    *catalog.Catalog
	sel    plan.Selections
	policy YieldPolicy
	logger *zap.Logger

	inventory map[string]int

	demand      map[string]int
	demandOrder []string
	usage       map[string]int
	usageOrder  []string
}

// NewExpander returns an Expander over a private copy of inventory.
//
// Precondition: cat and logger must not be nil.
func NewExpander(cat *catalog.Catalog, inventory plan.Quantities, sel plan.Selections, policy YieldPolicy, logger *zap.Logger) *Expander {
	inv := make(map[string]int, len(inventory))
	for id, n := range inventory {
		inv[id] = n
	}
	return &Expander{
		cat:       cat,
		sel:       sel,
		policy:    policy,
		logger:    logger,
		inventory: inv,
		demand:    make(map[string]int),
		usage:     make(map[string]int),
	}
}

// Expand adds the demand for qty of id and everything needed to craft it.
//
// Items already on the current branch are skipped, as are ids missing from
// the catalog. Inventory is consumed greedily in depth-first pre-order.
func (e *Expander) Expand(id string, qty int) {
	stack := []frame{{id: id, qty: qty}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.path.contains(f.id) {
			e.logger.Debug("skipping recipe cycle", zap.String("item", f.id))
			continue
		}
		it, ok := e.cat.Item(f.id)
		if !ok {
			e.logger.Debug("skipping unknown item", zap.String("item", f.id))
			continue
		}

		remaining := f.qty
		if have := e.inventory[f.id]; have > 0 {
			use := min(remaining, have)
			if use > 0 {
				e.inventory[f.id] = have - use
				e.addUsage(f.id, use)
				remaining -= use
			}
		}
		if remaining <= 0 {
			continue
		}
		e.addDemand(f.id, remaining)
		if !it.Craftable() {
			continue
		}

		recipe, _ := it.SelectRecipe(e.sel[f.id])
		_, maxOut := e.policy.Bounds(recipe.Yield)
		crafts := ceilDiv(remaining, max(1, maxOut))
		here := f.path.push(f.id)
		// Pushed in reverse so ingredients pop in recipe order.
		for i := len(recipe.Consumed) - 1; i >= 0; i-- {
			ing := recipe.Consumed[i]
			stack = append(stack, frame{id: ing.ItemID, qty: crafts * ing.Quantity, path: here})
		}
	}
}

func (e *Expander) addDemand(id string, n int) {
	if _, seen := e.demand[id]; !seen {
		e.demandOrder = append(e.demandOrder, id)
	}
	e.demand[id] += n
}

func (e *Expander) addUsage(id string, n int) {
	if _, seen := e.usage[id]; !seen {
		e.usageOrder = append(e.usageOrder, id)
	}
	e.usage[id] += n
}

// Demand returns the accumulated demand in first-encounter order.
func (e *Expander) Demand() []Demand {
	out := make([]Demand, 0, len(e.demandOrder))
	for _, id := range e.demandOrder {
		out = append(out, Demand{ItemID: id, Quantity: e.demand[id]})
	}
	return out
}

// Usage returns the accumulated inventory usage in first-encounter order.
func (e *Expander) Usage() []Usage {
	out := make([]Usage, 0, len(e.usageOrder))
	for _, id := range e.usageOrder {
		out = append(out, Usage{ItemID: id, Quantity: e.usage[id]})
	}
	return out
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
