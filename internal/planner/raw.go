package planner

import (
	"github.com/cory-johannsen/craftplan/internal/catalog"
	"github.com/cory-johannsen/craftplan/internal/plan"
)

// AggregateRaw returns the raw materials still to gather: ingredients of the
// steps and craft-list entries that are known items without recipes, less
// what inventory already supplied.
//
// Postcondition: every returned range has 0 <= Min <= Max.
func AggregateRaw(cat *catalog.Catalog, steps []Step, craftList plan.Quantities, usage []Usage) map[string]Range {
	raw := make(map[string]Range)
	isRaw := func(id string) bool {
		it, ok := cat.Item(id)
		return ok && !it.Craftable()
	}
	for _, s := range steps {
		for _, n := range s.Ingredients {
			if !isRaw(n.ItemID) {
				continue
			}
			r := raw[n.ItemID]
			raw[n.ItemID] = Range{Min: r.Min + n.Needed.Min, Max: r.Max + n.Needed.Max}
		}
	}
	for id, qty := range craftList {
		if !isRaw(id) {
			continue
		}
		r := raw[id]
		raw[id] = Range{Min: r.Min + qty, Max: r.Max + qty}
	}
	for _, u := range usage {
		r, ok := raw[u.ItemID]
		if !ok {
			continue
		}
		raw[u.ItemID] = Range{Min: max(0, r.Min-u.Quantity), Max: max(0, r.Max-u.Quantity)}
	}
	return raw
}
