package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/craftplan/internal/catalog"
)

func searchCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat := catalog.New()
	for _, it := range []*catalog.Item{
		{ID: "1", Name: "Sturdy Plank", Tier: 3, Rarity: catalog.RarityCommon, Tags: []string{"Plank"}},
		{ID: "2", Name: "Rough Plank", Tier: 1, Rarity: catalog.RarityCommon, Tags: []string{"Plank"}},
		{ID: "3", Name: "Ancient Relic", Tier: catalog.NoTier, Rarity: catalog.RarityMythic},
		{ID: "4", Name: "Flint Pickaxe", Tier: 1, Rarity: catalog.RarityUncommon, Tags: []string{"Tool"}},
	} {
		require.NoError(t, cat.Register(it))
	}
	return cat
}

func names(items []*catalog.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestGenericName(t *testing.T) {
	assert.Equal(t, "Plank", catalog.GenericName("Rough Plank"))
	assert.Equal(t, "Pickaxe", catalog.GenericName("Flint Pickaxe"))
	assert.Equal(t, "Ancient Relic", catalog.GenericName("Ancient Relic"))
}

func TestSearch_OrdersByTierThenName(t *testing.T) {
	cat := searchCatalog(t)
	assert.Equal(t,
		[]string{"Flint Pickaxe", "Rough Plank", "Sturdy Plank", "Ancient Relic"},
		names(cat.Search(catalog.Filter{})))
}

func TestSearch_Filters(t *testing.T) {
	cat := searchCatalog(t)
	tier1 := 1
	mythic := catalog.RarityMythic

	assert.Equal(t, []string{"Rough Plank", "Sturdy Plank"}, names(cat.Search(catalog.Filter{Query: "plank"})))
	assert.Equal(t, []string{"Flint Pickaxe", "Rough Plank"}, names(cat.Search(catalog.Filter{Tier: &tier1})))
	assert.Equal(t, []string{"Ancient Relic"}, names(cat.Search(catalog.Filter{Rarity: &mythic})))
	assert.Equal(t, []string{"Flint Pickaxe"}, names(cat.Search(catalog.Filter{Tag: "Tool"})))
	assert.Empty(t, cat.Search(catalog.Filter{Query: "plank", Tag: "Tool"}))
}

func TestResolve(t *testing.T) {
	cat := searchCatalog(t)

	it, ok := cat.Resolve("2")
	require.True(t, ok)
	assert.Equal(t, "Rough Plank", it.Name)

	it, ok = cat.Resolve("flint pickaxe")
	require.True(t, ok)
	assert.Equal(t, "4", it.ID)

	_, ok = cat.Resolve("Plank")
	assert.False(t, ok)
}

func TestSuggest(t *testing.T) {
	cat := searchCatalog(t)
	got := cat.Suggest("rough plnk", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "Rough Plank", got[0].Name)
	assert.Nil(t, cat.Suggest("x", 0))
}

func TestTags(t *testing.T) {
	cat := searchCatalog(t)
	assert.Equal(t, []string{"Plank", "Tool"}, cat.Tags())
}
