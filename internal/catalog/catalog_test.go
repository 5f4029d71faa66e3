package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/craftplan/internal/catalog"
)

const sampleJSON = `{
  "100": {"name": "Rough Plank", "tier": 1, "rarity": 1, "tag": "Plank", "icon": "plank",
          "recipes": [{"consumed_items": [{"id": 200, "quantity": 2}], "output_quantity": 3}]},
  "200": {"name": "Rough Log", "tier": 1, "rarity": 1, "tags": ["Log", "Wood"], "icon": "log", "recipes": []},
  "300": {"name": "Fish Fillet", "tier": -1, "rarity": 2, "icon": "fillet",
          "recipes": [{"consumed_items": [{"id": "400", "quantity": 1}], "possibilities": {"1": 0.7, "4": 0.3, "x": 1}}]},
  "400": {"name": "Breezy Fin Darter", "rarity": 0, "recipes": []}
}`

func TestLoadBytes_JSON(t *testing.T) {
	cat, err := catalog.LoadBytes([]byte(sampleJSON))
	require.NoError(t, err)
	assert.Equal(t, 4, cat.Len())
	assert.NotEmpty(t, cat.Fingerprint())

	plank, ok := cat.Item("100")
	require.True(t, ok)
	assert.Equal(t, "Rough Plank", plank.Name)
	assert.Equal(t, 1, plank.Tier)
	assert.Equal(t, catalog.RarityCommon, plank.Rarity)
	assert.Equal(t, []string{"Plank"}, plank.Tags)
	require.Len(t, plank.Recipes, 1)
	assert.Equal(t, []catalog.Ingredient{{ItemID: "200", Quantity: 2}}, plank.Recipes[0].Consumed)
	assert.Equal(t, catalog.FixedYield(3), plank.Recipes[0].Yield)

	log, ok := cat.Item("200")
	require.True(t, ok)
	assert.False(t, log.Craftable())
	assert.Equal(t, []string{"Log", "Wood"}, log.Tags)

	fillet, ok := cat.Item("300")
	require.True(t, ok)
	assert.Equal(t, catalog.NoTier, fillet.Tier)
	y := fillet.Recipes[0].Yield
	assert.Equal(t, catalog.YieldProbabilistic, y.Kind)
	assert.Equal(t, []int{1, 4}, y.Amounts(), "malformed outcome keys are dropped")

	darter, ok := cat.Item("400")
	require.True(t, ok)
	assert.Equal(t, catalog.NoTier, darter.Tier)
}

func TestLoadBytes_YAML(t *testing.T) {
	doc := `
ingot:
  name: Ferralith Ingot
  tier: 2
  rarity: 1
  recipes:
    - consumed_items:
        - {id: ore, quantity: 3}
      possibilities:
        1: 0.5
        2: 0.5
ore:
  name: Ferralith Ore
  tier: 2
`
	cat, err := catalog.LoadBytes([]byte(doc))
	require.NoError(t, err)
	ingot, ok := cat.Item("ingot")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, ingot.Recipes[0].Yield.Amounts())
	ids := make([]string, 0)
	for _, it := range cat.All() {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"ingot", "ore"}, ids, "All preserves document order")
}

func TestLoadBytes_AllKeysMalformedFallsBackToFixed(t *testing.T) {
	doc := `{"a": {"name": "A", "recipes": [{"consumed_items": [], "output_quantity": 2, "possibilities": {"lots": 1}}]}}`
	cat, err := catalog.LoadBytes([]byte(doc))
	require.NoError(t, err)
	a, _ := cat.Item("a")
	assert.Equal(t, catalog.FixedYield(2), a.Recipes[0].Yield)
}

func TestLoadBytes_Rejects(t *testing.T) {
	cases := map[string]string{
		"not a mapping":     `[1, 2, 3]`,
		"bad quantity":      `{"a": {"name": "A", "recipes": [{"consumed_items": [{"id": "b", "quantity": 0}]}]}}`,
		"rarity range":      `{"a": {"name": "A", "rarity": 9}}`,
		"scalar outcomes":   `{"a": {"name": "A", "recipes": [{"possibilities": 4}]}}`,
		"duplicate item id": "a: {name: A}\na: {name: B}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.LoadBytes([]byte(doc))
			assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crafting_data.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	cat, err := catalog.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, catalog.Fingerprint([]byte(sampleJSON)), cat.Fingerprint())

	_, err = catalog.LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoadFile_BundledContent(t *testing.T) {
	cat, err := catalog.LoadFile(filepath.Join("..", "..", "content", "crafting_data.json"))
	require.NoError(t, err)

	axe, ok := cat.Resolve("Flint Axe")
	require.True(t, ok)
	for _, ing := range axe.Recipes[0].Consumed {
		_, known := cat.Item(ing.ItemID)
		assert.True(t, known, "axe ingredient %q is in the catalog", ing.ItemID)
	}

	plank, ok := cat.Item("1004")
	require.True(t, ok)
	require.Len(t, plank.Recipes, 2)
	assert.Equal(t, catalog.YieldProbabilistic, plank.Recipes[1].Yield.Kind)

	fish, ok := cat.Item("4001")
	require.True(t, ok)
	assert.Equal(t, catalog.NoTier, fish.Tier)
}

func TestRegister_Collision(t *testing.T) {
	cat := catalog.New()
	require.NoError(t, cat.Register(&catalog.Item{ID: "a", Name: "A"}))
	assert.Error(t, cat.Register(&catalog.Item{ID: "a", Name: "A again"}))
}

func TestSelectRecipe_ClampsOutOfRange(t *testing.T) {
	it := &catalog.Item{ID: "x", Recipes: []catalog.Recipe{
		{Yield: catalog.FixedYield(1)},
		{Yield: catalog.FixedYield(2)},
	}}
	for _, tc := range []struct{ in, want int }{{0, 0}, {1, 1}, {2, 0}, {-1, 0}, {99, 0}} {
		r, idx := it.SelectRecipe(tc.in)
		require.NotNil(t, r)
		assert.Equal(t, tc.want, idx, "index %d", tc.in)
	}
	raw := &catalog.Item{ID: "raw"}
	r, idx := raw.SelectRecipe(0)
	assert.Nil(t, r)
	assert.Equal(t, 0, idx)
}

func TestRarity_String(t *testing.T) {
	assert.Equal(t, "Mythic", catalog.RarityMythic.String())
	assert.Equal(t, "Unknown", catalog.Rarity(42).String())
}

// Property: SelectRecipe always returns an index inside the recipe list.
func TestProperty_SelectRecipe_InRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "recipes")
		it := &catalog.Item{ID: "x", Recipes: make([]catalog.Recipe, n)}
		idx := rapid.IntRange(-20, 20).Draw(t, "index")
		r, got := it.SelectRecipe(idx)
		if r == nil || got < 0 || got >= n {
			t.Fatalf("SelectRecipe(%d) = %d with %d recipes", idx, got, n)
		}
		if idx >= 0 && idx < n && got != idx {
			t.Fatalf("in-range index %d resolved to %d", idx, got)
		}
	})
}

// Property: FixedYield never produces less than one item per craft.
func TestProperty_FixedYield_AtLeastOne(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		q := rapid.IntRange(-100, 100).Draw(t, "q")
		if got := catalog.FixedYield(q).Quantity; got < 1 {
			t.Fatalf("FixedYield(%d).Quantity = %d", q, got)
		}
	})
}
