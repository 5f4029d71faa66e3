package planner

import (
	"math"

	"github.com/cory-johannsen/craftplan/internal/catalog"
	"github.com/cory-johannsen/craftplan/internal/plan"
)

// InfiniteDepth is the depth of an item whose selected recipes lead back to
// itself. It sorts after every finite depth.
const InfiniteDepth = math.MaxInt

// ancestry is an immutable parent-linked chain of the item ids above the
// current node. Siblings share their parent's chain but never see each other.
type ancestry struct {
	id     string
	parent *ancestry
}

func (a *ancestry) contains(id string) bool {
	for p := a; p != nil; p = p.parent {
		if p.id == id {
			return true
		}
	}
	return false
}

func (a *ancestry) push(id string) *ancestry {
	return &ancestry{id: id, parent: a}
}

// Ranker computes the crafting depth of items under one set of recipe
// selections. Results are memoised per root item, so a Ranker must not
// outlive the selections it was built with.
type Ranker struct {
	cat  *catalog.Catalog
	sel  plan.Selections
	memo map[string]int
}

// NewRanker returns a Ranker for the given catalog and selections.
func NewRanker(cat *catalog.Catalog, sel plan.Selections) *Ranker {
	return &Ranker{cat: cat, sel: sel, memo: make(map[string]int)}
}

// Depth returns 0 for raw or unknown items, InfiniteDepth for items on a
// recipe cycle, and otherwise one more than the deepest ingredient of the
// selected recipe.
func (r *Ranker) Depth(id string) int {
	if d, ok := r.memo[id]; ok {
		return d
	}
	d := r.depth(id, nil)
	r.memo[id] = d
	return d
}

func (r *Ranker) depth(id string, path *ancestry) int {
	if path.contains(id) {
		return InfiniteDepth
	}
	it, ok := r.cat.Item(id)
	if !ok || !it.Craftable() {
		return 0
	}
	recipe, _ := it.SelectRecipe(r.sel[id])
	here := path.push(id)
	deepest := 0
	for _, ing := range recipe.Consumed {
		d := r.depth(ing.ItemID, here)
		if d == InfiniteDepth {
			return InfiniteDepth
		}
		deepest = max(deepest, d)
	}
	return 1 + deepest
}
