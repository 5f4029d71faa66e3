// Package session owns one profile's planning state, persists every change
// and keeps the latest calculation result.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/craftplan/internal/catalog"
	"github.com/cory-johannsen/craftplan/internal/plan"
	"github.com/cory-johannsen/craftplan/internal/planner"
)

// ErrUnknownItem is returned when a mutation names an item the catalog does
// not contain.
var ErrUnknownItem = errors.New("unknown item")

// ErrEmptyPlanName is returned when a plan is saved without a name.
var ErrEmptyPlanName = errors.New("plan name must not be empty")

// Deps are the collaborators a Session needs.
type Deps struct {
	Planner *planner.Planner
	States  StateStore
	Plans   PlanStore
	Logger  *zap.Logger
}

// Session is the single writer of one profile's state. All methods are safe
// for concurrent use.
//
// Every mutation is persisted before it becomes visible and is followed by a
// recalculation on a private snapshot. Recalculations run outside the state
// lock; only the result of the newest mutation is kept.
type Session struct {
	profile string
	planner *planner.Planner
	states  StateStore
	plans   PlanStore
	logger  *zap.Logger

	mu    sync.Mutex
	state plan.State
	gen   uint64

	resMu     sync.RWMutex
	result    planner.Result
	resultGen uint64
}

// Open loads the state of profile and computes its initial result.
//
// Precondition: profile must be non-empty; deps.Planner, deps.States and
// deps.Plans must not be nil.
func Open(ctx context.Context, profile string, deps Deps) (*Session, error) {
	if strings.TrimSpace(profile) == "" {
		return nil, errors.New("session: profile must not be empty")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	st, err := deps.States.LoadState(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("loading state for profile %q: %w", profile, err)
	}
	st.Normalize()

	s := &Session{
		profile: profile,
		planner: deps.Planner,
		states:  deps.States,
		plans:   deps.Plans,
		logger:  logger.With(zap.String("profile", profile)),
		state:   st,
	}
	s.publish(0, s.planner.Calculate(ctx, st.Clone()))
	s.logger.Info("session opened",
		zap.Int("craft_list", len(st.CraftList)),
		zap.Int("inventory", len(st.Inventory)),
	)
	return s, nil
}

// Profile returns the profile name.
func (s *Session) Profile() string { return s.profile }

// Catalog returns the catalog the session validates against.
func (s *Session) Catalog() *catalog.Catalog { return s.planner.Catalog() }

// State returns a copy of the current state.
func (s *Session) State() plan.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Result returns the newest completed calculation.
func (s *Session) Result() planner.Result {
	s.resMu.RLock()
	defer s.resMu.RUnlock()
	return s.result
}

func (s *Session) publish(gen uint64, res planner.Result) {
	s.resMu.Lock()
	defer s.resMu.Unlock()
	if gen < s.resultGen {
		return
	}
	s.result = res
	s.resultGen = gen
}

// mutate applies fn to a copy of the state, persists it, makes it current and
// recalculates. When fn or the store fails the state is left unchanged.
func (s *Session) mutate(ctx context.Context, op string, fn func(st *plan.State) error) (planner.Result, error) {
	s.mu.Lock()
	next := s.state.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return planner.Result{}, err
	}
	if err := s.states.SaveState(ctx, s.profile, next); err != nil {
		s.mu.Unlock()
		return planner.Result{}, fmt.Errorf("%s: saving state: %w", op, err)
	}
	s.state = next
	s.gen++
	gen := s.gen
	snapshot := next.Clone()
	s.mu.Unlock()

	res := s.planner.Calculate(ctx, snapshot)
	s.publish(gen, res)
	s.logger.Debug("state changed", zap.String("op", op), zap.Uint64("generation", gen))
	return res, nil
}

func (s *Session) requireItem(id string) error {
	if _, ok := s.planner.Catalog().Item(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	return nil
}

// AddCraft adds n of id to the craft list. A result of zero or less removes
// the entry.
func (s *Session) AddCraft(ctx context.Context, id string, n int) (planner.Result, error) {
	if err := s.requireItem(id); err != nil {
		return planner.Result{}, err
	}
	return s.mutate(ctx, "add craft", func(st *plan.State) error {
		st.CraftList.Add(id, n)
		return nil
	})
}

// SetCraft sets the craft-list quantity of id. n <= 0 removes the entry.
func (s *Session) SetCraft(ctx context.Context, id string, n int) (planner.Result, error) {
	if n > 0 {
		if err := s.requireItem(id); err != nil {
			return planner.Result{}, err
		}
	}
	return s.mutate(ctx, "set craft", func(st *plan.State) error {
		st.CraftList.Set(id, n)
		return nil
	})
}

// RemoveCraft removes id from the craft list.
func (s *Session) RemoveCraft(ctx context.Context, id string) (planner.Result, error) {
	return s.SetCraft(ctx, id, 0)
}

// AddInventory adds n of id to the inventory. A result of zero or less
// removes the entry.
func (s *Session) AddInventory(ctx context.Context, id string, n int) (planner.Result, error) {
	if err := s.requireItem(id); err != nil {
		return planner.Result{}, err
	}
	return s.mutate(ctx, "add inventory", func(st *plan.State) error {
		st.Inventory.Add(id, n)
		return nil
	})
}

// SetInventory sets the inventory quantity of id. n <= 0 removes the entry.
func (s *Session) SetInventory(ctx context.Context, id string, n int) (planner.Result, error) {
	if n > 0 {
		if err := s.requireItem(id); err != nil {
			return planner.Result{}, err
		}
	}
	return s.mutate(ctx, "set inventory", func(st *plan.State) error {
		st.Inventory.Set(id, n)
		return nil
	})
}

// RemoveInventory removes id from the inventory.
func (s *Session) RemoveInventory(ctx context.Context, id string) (planner.Result, error) {
	return s.SetInventory(ctx, id, 0)
}

// Select chooses recipe index for id. A negative index clears the selection;
// an out-of-range index is kept and resolves to the first recipe.
func (s *Session) Select(ctx context.Context, id string, index int) (planner.Result, error) {
	if err := s.requireItem(id); err != nil {
		return planner.Result{}, err
	}
	return s.mutate(ctx, "select recipe", func(st *plan.State) error {
		st.Select(id, index)
		return nil
	})
}

// ClearCraftList empties the craft list and all recipe selections.
func (s *Session) ClearCraftList(ctx context.Context) (planner.Result, error) {
	return s.mutate(ctx, "clear craft list", func(st *plan.State) error {
		st.ClearCraftList()
		return nil
	})
}

// ClearInventory empties the inventory.
func (s *Session) ClearInventory(ctx context.Context) (planner.Result, error) {
	return s.mutate(ctx, "clear inventory", func(st *plan.State) error {
		st.ClearInventory()
		return nil
	})
}

// SavePlan snapshots the craft list or inventory under name, replacing any
// plan of the same kind and name.
func (s *Session) SavePlan(ctx context.Context, kind plan.Kind, name string) (plan.Saved, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return plan.Saved{}, ErrEmptyPlanName
	}
	st := s.State()
	fp := s.planner.Catalog().Fingerprint()
	var saved plan.Saved
	switch kind {
	case plan.KindCraft:
		saved = plan.SnapshotCraft(name, st, fp)
	case plan.KindInventory:
		saved = plan.SnapshotInventory(name, st, fp)
	default:
		return plan.Saved{}, fmt.Errorf("%w: %q", plan.ErrInvalidKind, kind)
	}
	if err := s.plans.SavePlan(ctx, s.profile, saved); err != nil {
		return plan.Saved{}, fmt.Errorf("saving %s plan %q: %w", kind, name, err)
	}
	s.logger.Info("plan saved", zap.String("kind", string(kind)), zap.String("name", name))
	return saved, nil
}

// ApplyPlan applies a saved plan to the state by merge or replace.
func (s *Session) ApplyPlan(ctx context.Context, kind plan.Kind, name string, mode plan.ApplyMode) (planner.Result, error) {
	saved, err := s.plans.GetPlan(ctx, s.profile, kind, name)
	if err != nil {
		return planner.Result{}, fmt.Errorf("loading %s plan %q: %w", kind, name, err)
	}
	if fp := s.planner.Catalog().Fingerprint(); saved.CatalogFingerprint != "" && saved.CatalogFingerprint != fp {
		s.logger.Warn("plan was saved against a different catalog",
			zap.String("name", name),
			zap.String("plan_catalog", saved.CatalogFingerprint),
			zap.String("catalog", fp),
		)
	}
	return s.mutate(ctx, "apply plan", func(st *plan.State) error {
		return saved.ApplyTo(st, mode)
	})
}

// ListPlans returns the saved plans of kind ordered by name.
func (s *Session) ListPlans(ctx context.Context, kind plan.Kind) ([]plan.Saved, error) {
	plans, err := s.plans.ListPlans(ctx, s.profile, kind)
	if err != nil {
		return nil, fmt.Errorf("listing %s plans: %w", kind, err)
	}
	return plans, nil
}

// DeletePlan removes a saved plan.
func (s *Session) DeletePlan(ctx context.Context, kind plan.Kind, name string) error {
	if err := s.plans.DeletePlan(ctx, s.profile, kind, name); err != nil {
		return fmt.Errorf("deleting %s plan %q: %w", kind, name, err)
	}
	s.logger.Info("plan deleted", zap.String("kind", string(kind)), zap.String("name", name))
	return nil
}
