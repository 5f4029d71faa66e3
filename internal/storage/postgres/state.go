package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/craftplan/internal/plan"
)

const (
	listCraft     = "craft"
	listInventory = "inventory"
)

// StateRepository persists the live planning state of each profile.
type StateRepository struct {
	db *pgxpool.Pool
}

// NewStateRepository creates a StateRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewStateRepository(db *pgxpool.Pool) *StateRepository {
	return &StateRepository{db: db}
}

// LoadState returns the saved state of profile, or an empty state when the
// profile has never been saved.
func (r *StateRepository) LoadState(ctx context.Context, profile string) (plan.State, error) {
	st := plan.NewState()

	rows, err := r.db.Query(ctx,
		`SELECT list, item_id, quantity FROM profile_quantities WHERE profile = $1`, profile)
	if err != nil {
		return plan.State{}, fmt.Errorf("querying quantities: %w", err)
	}
	for rows.Next() {
		var list, id string
		var qty int
		if err := rows.Scan(&list, &id, &qty); err != nil {
			rows.Close()
			return plan.State{}, fmt.Errorf("scanning quantity: %w", err)
		}
		switch list {
		case listCraft:
			st.CraftList.Set(id, qty)
		case listInventory:
			st.Inventory.Set(id, qty)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return plan.State{}, fmt.Errorf("iterating quantities: %w", err)
	}

	rows, err = r.db.Query(ctx,
		`SELECT item_id, recipe_index FROM profile_selections WHERE profile = $1`, profile)
	if err != nil {
		return plan.State{}, fmt.Errorf("querying selections: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var idx int
		if err := rows.Scan(&id, &idx); err != nil {
			return plan.State{}, fmt.Errorf("scanning selection: %w", err)
		}
		st.Select(id, idx)
	}
	if err := rows.Err(); err != nil {
		return plan.State{}, fmt.Errorf("iterating selections: %w", err)
	}
	return st, nil
}

// SaveState replaces the saved state of profile in a single transaction.
func (r *StateRepository) SaveState(ctx context.Context, profile string, st plan.State) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO profiles (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET updated_at = NOW()`, profile); err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM profile_quantities WHERE profile = $1`, profile); err != nil {
		return fmt.Errorf("clearing quantities: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM profile_selections WHERE profile = $1`, profile); err != nil {
		return fmt.Errorf("clearing selections: %w", err)
	}

	var quantities [][]any
	for _, id := range st.CraftList.SortedIDs() {
		if n := st.CraftList[id]; n > 0 {
			quantities = append(quantities, []any{profile, listCraft, id, n})
		}
	}
	for _, id := range st.Inventory.SortedIDs() {
		if n := st.Inventory[id]; n > 0 {
			quantities = append(quantities, []any{profile, listInventory, id, n})
		}
	}
	if len(quantities) > 0 {
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"profile_quantities"},
			[]string{"profile", "list", "item_id", "quantity"},
			pgx.CopyFromRows(quantities),
		); err != nil {
			return fmt.Errorf("writing quantities: %w", err)
		}
	}

	var selections [][]any
	for id, idx := range st.Selections {
		if idx >= 0 {
			selections = append(selections, []any{profile, id, idx})
		}
	}
	if len(selections) > 0 {
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"profile_selections"},
			[]string{"profile", "item_id", "recipe_index"},
			pgx.CopyFromRows(selections),
		); err != nil {
			return fmt.Errorf("writing selections: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing state: %w", err)
	}
	return nil
}
