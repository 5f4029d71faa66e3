package session

import (
	"context"

	"github.com/cory-johannsen/craftplan/internal/plan"
)

// StateStore persists the live planning state of a profile.
type StateStore interface {
	// LoadState returns the saved state of profile.
	//
	// Postcondition: an unknown profile yields an empty state and a nil error.
	LoadState(ctx context.Context, profile string) (plan.State, error)
	// SaveState replaces the saved state of profile with st.
	SaveState(ctx context.Context, profile string, st plan.State) error
}

// PlanStore persists named saved plans. Plans are keyed by profile, kind and
// name; saving under an existing key replaces that plan.
type PlanStore interface {
	SavePlan(ctx context.Context, profile string, p plan.Saved) error
	// GetPlan returns plan.ErrPlanNotFound when no such plan exists.
	GetPlan(ctx context.Context, profile string, kind plan.Kind, name string) (plan.Saved, error)
	// ListPlans returns the plans of one kind ordered by name.
	ListPlans(ctx context.Context, profile string, kind plan.Kind) ([]plan.Saved, error)
	// DeletePlan returns plan.ErrPlanNotFound when no such plan exists.
	DeletePlan(ctx context.Context, profile string, kind plan.Kind, name string) error
}

// Store is a backend that persists both state and plans.
type Store interface {
	StateStore
	PlanStore
}
