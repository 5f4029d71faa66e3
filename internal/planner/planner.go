// Package planner computes crafting requirements from a catalog and a
// planning state: the raw materials still to gather, the ordered crafting
// steps, and the inventory consumed along the way.
package planner

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/craftplan/internal/catalog"
	"github.com/cory-johannsen/craftplan/internal/plan"
)

// Result is the full output of one calculation. It is recomputed from scratch
// on every call and never patched.
type Result struct {
	Raw            map[string]Range
	Steps          []Step
	InventoryUsage []Usage
}

// RawIDs returns the raw material ids in ascending order.
func (r Result) RawIDs() []string {
	ids := make([]string, 0, len(r.Raw))
	for id := range r.Raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// UsageByItem returns inventory usage keyed by item id.
func (r Result) UsageByItem() map[string]int {
	out := make(map[string]int, len(r.InventoryUsage))
	for _, u := range r.InventoryUsage {
		out[u.ItemID] += u.Quantity
	}
	return out
}

// Planner runs calculations against one catalog. It holds no mutable state
// and is safe for concurrent use.
type Planner struct {
	cat    *catalog.Catalog
	policy YieldPolicy
	logger *zap.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithYieldPolicy sets how variable yields are planned for.
func WithYieldPolicy(p YieldPolicy) Option {
	return func(pl *Planner) { pl.policy = p }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(pl *Planner) {
		if l != nil {
			pl.logger = l
		}
	}
}

// New creates a Planner over cat.
//
// Precondition: cat must not be nil.
func New(cat *catalog.Catalog, opts ...Option) *Planner {
	p := &Planner{cat: cat, policy: PolicyRange, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Catalog returns the catalog the planner expands against.
func (p *Planner) Catalog() *catalog.Catalog { return p.cat }

// Policy returns the configured yield policy.
func (p *Planner) Policy() YieldPolicy { return p.policy }

// Calculate computes the requirements for st. Craft-list entries are expanded
// in ascending id order so the result does not depend on map iteration.
// Missing items, cycles and out-of-range selections are skipped, so
// Calculate never fails.
//
// Postcondition: st is not modified.
func (p *Planner) Calculate(_ context.Context, st plan.State) Result {
	start := time.Now()
	exp := NewExpander(p.cat, st.Inventory, st.Selections, p.policy, p.logger)
	for _, id := range st.CraftList.SortedIDs() {
		exp.Expand(id, st.CraftList[id])
	}
	usage := exp.Usage()
	steps := BuildSteps(p.cat, st.Selections, p.policy, exp.Demand(), NewRanker(p.cat, st.Selections))
	res := Result{
		Raw:            AggregateRaw(p.cat, steps, st.CraftList, usage),
		Steps:          steps,
		InventoryUsage: usage,
	}
	p.logger.Debug("calculated requirements",
		zap.Int("targets", len(st.CraftList)),
		zap.Int("steps", len(res.Steps)),
		zap.Int("raw", len(res.Raw)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res
}
