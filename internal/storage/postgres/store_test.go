package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/craftplan/internal/plan"
	"github.com/cory-johannsen/craftplan/internal/session"
	"github.com/cory-johannsen/craftplan/internal/storage/postgres"
	"github.com/cory-johannsen/craftplan/internal/testutil"
)

var (
	_ session.StateStore = (*postgres.StateRepository)(nil)
	_ session.PlanStore  = (*postgres.PlanRepository)(nil)
)

// TestStores runs every repository test against one migrated container.
func TestStores(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)

	t.Run("UnknownProfileIsEmpty", func(t *testing.T) { testUnknownProfileIsEmpty(t, pc.Pool) })
	t.Run("StateRoundTripAndReplace", func(t *testing.T) { testStateRoundTripAndReplace(t, pc.Pool) })
	t.Run("PlanLifecycle", func(t *testing.T) { testPlanLifecycle(t, pc.Pool) })
	t.Run("Health", func(t *testing.T) {
		assert.NoError(t, pc.Pool.Health(context.Background(), 2*time.Second))
	})
	t.Run("PropertyStateRoundTrip", func(t *testing.T) { testPropertyStateRoundTrip(t, pc.Pool) })
}

func uniqueProfile(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func testUnknownProfileIsEmpty(t *testing.T, pool *postgres.Pool) {
	repo := pool.States()
	st, err := repo.LoadState(context.Background(), uniqueProfile("nobody"))
	require.NoError(t, err)
	assert.Empty(t, st.CraftList)
	assert.Empty(t, st.Inventory)
	assert.Empty(t, st.Selections)
}

func testStateRoundTripAndReplace(t *testing.T, pool *postgres.Pool) {
	ctx := context.Background()
	repo := pool.States()
	profile := uniqueProfile("alice")

	st := plan.NewState()
	st.CraftList.Set("100", 3)
	st.Inventory.Set("200", 7)
	st.Inventory.Set("100", 1)
	st.Select("100", 1)
	require.NoError(t, repo.SaveState(ctx, profile, st))

	got, err := repo.LoadState(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, st, got)

	st.ClearCraftList()
	require.NoError(t, repo.SaveState(ctx, profile, st))
	got, err = repo.LoadState(ctx, profile)
	require.NoError(t, err)
	assert.Empty(t, got.CraftList)
	assert.Empty(t, got.Selections)
	assert.Equal(t, plan.Quantities{"200": 7, "100": 1}, got.Inventory)
}

func testPlanLifecycle(t *testing.T, pool *postgres.Pool) {
	ctx := context.Background()
	repo := pool.Plans()
	profile := uniqueProfile("planner")

	st := plan.NewState()
	st.CraftList.Set("100", 2)
	st.Select("100", 1)
	st.Inventory.Set("200", 5)

	weekly := plan.SnapshotCraft("weekly", st, "fp1")
	require.NoError(t, repo.SavePlan(ctx, profile, weekly))
	require.NoError(t, repo.SavePlan(ctx, profile, plan.SnapshotCraft("alpha", st, "fp1")))
	require.NoError(t, repo.SavePlan(ctx, profile, plan.SnapshotInventory("bank", st, "fp1")))

	got, err := repo.GetPlan(ctx, profile, plan.KindCraft, "weekly")
	require.NoError(t, err)
	assert.Equal(t, weekly.ID, got.ID)
	assert.Equal(t, plan.KindCraft, got.Kind)
	assert.Equal(t, plan.Quantities{"100": 2}, got.Items)
	assert.Equal(t, plan.Selections{"100": 1}, got.Recipes)
	assert.Equal(t, "fp1", got.CatalogFingerprint)
	assert.WithinDuration(t, weekly.CreatedAt, got.CreatedAt, time.Millisecond)

	list, err := repo.ListPlans(ctx, profile, plan.KindCraft)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "weekly", list[1].Name)

	st.CraftList.Set("100", 9)
	replacement := plan.SnapshotCraft("weekly", st, "fp2")
	require.NoError(t, repo.SavePlan(ctx, profile, replacement))
	got, err = repo.GetPlan(ctx, profile, plan.KindCraft, "weekly")
	require.NoError(t, err)
	assert.Equal(t, replacement.ID, got.ID)
	assert.Equal(t, 9, got.Items["100"])

	inv, err := repo.ListPlans(ctx, profile, plan.KindInventory)
	require.NoError(t, err)
	require.Len(t, inv, 1)
	assert.Empty(t, inv[0].Recipes)

	require.NoError(t, repo.DeletePlan(ctx, profile, plan.KindCraft, "weekly"))
	_, err = repo.GetPlan(ctx, profile, plan.KindCraft, "weekly")
	assert.ErrorIs(t, err, postgres.ErrPlanNotFound)
	assert.ErrorIs(t, err, plan.ErrPlanNotFound)
	assert.ErrorIs(t, repo.DeletePlan(ctx, profile, plan.KindCraft, "weekly"), plan.ErrPlanNotFound)
}

// Property: any state saved for a profile loads back unchanged.
func testPropertyStateRoundTrip(t *testing.T, pool *postgres.Pool) {
	repo := pool.States()
	profile := uniqueProfile("prop")
	rapid.Check(t, func(t *rapid.T) {
		st := plan.NewState()
		ids := rapid.SliceOfNDistinct(rapid.StringMatching(`[0-9]{1,6}`), 0, 8, func(s string) string { return s }).Draw(t, "ids")
		for _, id := range ids {
			st.CraftList.Set(id, rapid.IntRange(0, 500).Draw(t, "craft"))
			st.Inventory.Set(id, rapid.IntRange(0, 500).Draw(t, "inv"))
			st.Select(id, rapid.IntRange(-1, 3).Draw(t, "sel"))
		}
		ctx := context.Background()
		if err := repo.SaveState(ctx, profile, st); err != nil {
			t.Fatalf("SaveState: %v", err)
		}
		got, err := repo.LoadState(ctx, profile)
		if err != nil {
			t.Fatalf("LoadState: %v", err)
		}
		if !assert.ObjectsAreEqual(st, got) {
			t.Fatalf("round trip mismatch:\n%v\n%v", st, got)
		}
	})
}
