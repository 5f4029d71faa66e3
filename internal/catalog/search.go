package catalog

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// tierPrefixes are the material and quality words that distinguish tiered
// variants of the same item ("Rough Plank", "Sturdy Plank").
var tierPrefixes = []string{
	"Rough", "Simple", "Sturdy", "Fine", "Exquisite", "Peerless", "Ornate", "Pristine", "Magnificent", "Flawless",
	"Flint", "Ferralith", "Pyrelite", "Emarium", "Elenvar", "Luminite", "Rathium", "Aurumite", "Celestium", "Umbracite", "Astralite",
	"Beginner's", "Novice's", "Novice", "Essential", "Proficient", "Advanced", "Comprehensive",
	"Plain", "Savory", "Zesty", "Succulent", "Ambrosial",
	"Basic", "Infused", "Magnificient", "Automata's",
}

// GenericName strips the first tier prefix found in name so tiered variants
// share a searchable base name.
func GenericName(name string) string {
	for _, prefix := range tierPrefixes {
		needle := prefix + " "
		if i := strings.Index(name, needle); i > -1 {
			return name[:i] + name[i+len(needle):]
		}
	}
	return name
}

// Filter narrows a catalog search. Zero values match everything.
type Filter struct {
	// Query is matched case-insensitively against the name and generic name.
	Query string
	// Tier, when non-nil, must equal the item tier.
	Tier *int
	// Rarity, when non-nil, must equal the item rarity.
	Rarity *Rarity
	// Tag, when non-empty, must be one of the item tags.
	Tag string
}

// Matches reports whether it satisfies f.
func (f Filter) Matches(it *Item) bool {
	if f.Tier != nil && it.Tier != *f.Tier {
		return false
	}
	if f.Rarity != nil && it.Rarity != *f.Rarity {
		return false
	}
	if f.Tag != "" && !it.HasTag(f.Tag) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(it.Name), q) ||
		strings.Contains(strings.ToLower(GenericName(it.Name)), q)
}

// Search returns the items matching f, ordered by tier (untiered last) and
// then by name.
func (c *Catalog) Search(f Filter) []*Item {
	var out []*Item
	for _, id := range c.order {
		if it := c.items[id]; f.Matches(it) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := tierSortKey(out[i].Tier), tierSortKey(out[j].Tier)
		if ti != tj {
			return ti < tj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func tierSortKey(tier int) int {
	if tier == NoTier {
		return 9999
	}
	return tier
}

// Resolve finds an item by id, or failing that by case-insensitive exact name.
//
// Postcondition: ok is true iff a single item was identified.
func (c *Catalog) Resolve(ref string) (*Item, bool) {
	ref = strings.TrimSpace(ref)
	if it, ok := c.items[ref]; ok {
		return it, true
	}
	var found *Item
	for _, id := range c.order {
		it := c.items[id]
		if strings.EqualFold(it.Name, ref) {
			if found != nil {
				return nil, false
			}
			found = it
		}
	}
	return found, found != nil
}

// Suggest returns up to n items whose names are closest to ref by edit
// distance, nearest first.
func (c *Catalog) Suggest(ref string, n int) []*Item {
	if n <= 0 || len(c.order) == 0 {
		return nil
	}
	needle := strings.ToLower(strings.TrimSpace(ref))
	type scored struct {
		item *Item
		dist int
	}
	all := make([]scored, 0, len(c.order))
	for _, id := range c.order {
		it := c.items[id]
		all = append(all, scored{item: it, dist: levenshtein.ComputeDistance(needle, strings.ToLower(it.Name))})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].dist < all[j].dist })
	if n > len(all) {
		n = len(all)
	}
	out := make([]*Item, 0, n)
	for _, s := range all[:n] {
		out = append(out, s.item)
	}
	return out
}
