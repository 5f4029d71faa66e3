package plan

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrPlanNotFound is returned by plan stores when no plan has the requested name.
var ErrPlanNotFound = errors.New("plan not found")

// ErrInvalidApplyMode is returned when an apply mode is neither merge nor replace.
var ErrInvalidApplyMode = errors.New("invalid apply mode")

// ErrInvalidKind is returned when a plan kind is neither craft nor inventory.
var ErrInvalidKind = errors.New("invalid plan kind")

// Kind distinguishes saved craft lists from saved inventories.
type Kind string

// Plan kinds.
const (
	KindCraft     Kind = "craft"
	KindInventory Kind = "inventory"
)

// ParseKind validates s as a plan kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindCraft, KindInventory:
		return k, nil
	case "inv":
		return KindInventory, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// ApplyMode controls how a saved plan is applied to the live state.
type ApplyMode string

// Apply modes.
const (
	// ApplyMerge sums quantities into the live state.
	ApplyMerge ApplyMode = "merge"
	// ApplyReplace overwrites the live state with the plan.
	ApplyReplace ApplyMode = "replace"
)

// ParseApplyMode validates s as an apply mode.
func ParseApplyMode(s string) (ApplyMode, error) {
	switch m := ApplyMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ApplyMerge, ApplyReplace:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidApplyMode, s)
}

// Saved is a named snapshot of either a craft list with its recipe selections
// or an inventory.
type Saved struct {
	ID   uuid.UUID
	Name string
	Kind Kind
	// Items is the craft list for KindCraft and the inventory for KindInventory.
	Items Quantities
	// Recipes is only populated for KindCraft.
	Recipes Selections
	// CatalogFingerprint identifies the catalog the plan was saved against.
	CatalogFingerprint string
	CreatedAt          time.Time
}

// SnapshotCraft captures the craft list and selections of st as a new plan.
//
// Precondition: name must be non-empty.
func SnapshotCraft(name string, st State, fingerprint string) Saved {
	return Saved{
		ID:                 uuid.New(),
		Name:               name,
		Kind:               KindCraft,
		Items:              st.CraftList.Clone(),
		Recipes:            st.Selections.Clone(),
		CatalogFingerprint: fingerprint,
		CreatedAt:          time.Now().UTC(),
	}
}

// SnapshotInventory captures the inventory of st as a new plan.
//
// Precondition: name must be non-empty.
func SnapshotInventory(name string, st State, fingerprint string) Saved {
	return Saved{
		ID:                 uuid.New(),
		Name:               name,
		Kind:               KindInventory,
		Items:              st.Inventory.Clone(),
		Recipes:            make(Selections),
		CatalogFingerprint: fingerprint,
		CreatedAt:          time.Now().UTC(),
	}
}

// ApplyTo applies the plan to st.
//
// For craft plans, replace sets the craft list and selections to the plan's;
// merge sums quantities and keeps any selection st already has.
// For inventory plans, replace sets the inventory and merge sums quantities.
func (p Saved) ApplyTo(st *State, mode ApplyMode) error {
	if mode != ApplyMerge && mode != ApplyReplace {
		return fmt.Errorf("%w: %q", ErrInvalidApplyMode, mode)
	}
	st.Normalize()
	switch p.Kind {
	case KindCraft:
		if mode == ApplyReplace {
			st.CraftList = p.Items.Clone()
			st.Selections = p.Recipes.Clone()
			st.Normalize()
			return nil
		}
		for id, n := range p.Items {
			st.CraftList.Add(id, n)
		}
		for id, idx := range p.Recipes {
			if _, exists := st.Selections[id]; !exists && idx >= 0 {
				st.Selections[id] = idx
			}
		}
	case KindInventory:
		if mode == ApplyReplace {
			st.Inventory = p.Items.Clone()
			st.Normalize()
			return nil
		}
		for id, n := range p.Items {
			st.Inventory.Add(id, n)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, p.Kind)
	}
	return nil
}
