package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/craftplan/internal/plan"
)

// ErrPlanNotFound is returned when a plan lookup yields no results. It wraps
// plan.ErrPlanNotFound so callers can match either.
var ErrPlanNotFound = fmt.Errorf("postgres: %w", plan.ErrPlanNotFound)

// PlanRepository persists named saved plans.
type PlanRepository struct {
	db *pgxpool.Pool
}

// NewPlanRepository creates a PlanRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPlanRepository(db *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{db: db}
}

const planColumns = `id, name, kind, items, recipes, catalog_fingerprint, created_at`

// SavePlan inserts p, replacing any plan of the same profile, kind and name.
//
// Precondition: p.Name must be non-empty and p.Kind valid.
func (r *PlanRepository) SavePlan(ctx context.Context, profile string, p plan.Saved) error {
	recipes := p.Recipes
	if recipes == nil {
		recipes = plan.Selections{}
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO saved_plans (id, profile, kind, name, items, recipes, catalog_fingerprint, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (profile, kind, name) DO UPDATE SET
		     id = EXCLUDED.id,
		     items = EXCLUDED.items,
		     recipes = EXCLUDED.recipes,
		     catalog_fingerprint = EXCLUDED.catalog_fingerprint,
		     created_at = EXCLUDED.created_at`,
		p.ID, profile, string(p.Kind), p.Name, map[string]int(p.Items.Clone()), map[string]int(recipes), p.CatalogFingerprint, p.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("plan id %s already used by another plan: %w", p.ID, err)
		}
		return fmt.Errorf("saving plan %q: %w", p.Name, err)
	}
	return nil
}

// GetPlan returns one saved plan.
//
// Postcondition: returns ErrPlanNotFound if no such plan exists.
func (r *PlanRepository) GetPlan(ctx context.Context, profile string, kind plan.Kind, name string) (plan.Saved, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+planColumns+` FROM saved_plans WHERE profile = $1 AND kind = $2 AND name = $3`,
		profile, string(kind), name)
	p, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return plan.Saved{}, ErrPlanNotFound
		}
		return plan.Saved{}, fmt.Errorf("querying plan %q: %w", name, err)
	}
	return p, nil
}

// ListPlans returns the plans of one kind ordered by name.
func (r *PlanRepository) ListPlans(ctx context.Context, profile string, kind plan.Kind) ([]plan.Saved, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+planColumns+` FROM saved_plans WHERE profile = $1 AND kind = $2 ORDER BY name`,
		profile, string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	var out []plan.Saved
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plans: %w", err)
	}
	return out, nil
}

// DeletePlan removes one saved plan.
//
// Postcondition: returns ErrPlanNotFound if no such plan exists.
func (r *PlanRepository) DeletePlan(ctx context.Context, profile string, kind plan.Kind, name string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM saved_plans WHERE profile = $1 AND kind = $2 AND name = $3`,
		profile, string(kind), name)
	if err != nil {
		return fmt.Errorf("deleting plan %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func scanPlan(row pgx.Row) (plan.Saved, error) {
	var (
		p       plan.Saved
		kind    string
		items   map[string]int
		recipes map[string]int
	)
	if err := row.Scan(&p.ID, &p.Name, &kind, &items, &recipes, &p.CatalogFingerprint, &p.CreatedAt); err != nil {
		return plan.Saved{}, err
	}
	p.Kind = plan.Kind(kind)
	p.Items = plan.Quantities(items).Clone()
	p.Recipes = plan.Selections(recipes).Clone()
	return p, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
