// Package catalog holds the read-only item and recipe definitions the planner
// expands against.
package catalog

import (
	"errors"
	"fmt"
	"sort"
)

// NoTier marks an item that does not belong to any tier.
const NoTier = -1

// Rarity is the item rarity grade, 0 through 6.
type Rarity int

// Rarity grades.
const (
	RarityNone Rarity = iota
	RarityCommon
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
	RarityMythic
)

var rarityNames = map[Rarity]string{
	RarityNone:      "None",
	RarityCommon:    "Common",
	RarityUncommon:  "Uncommon",
	RarityRare:      "Rare",
	RarityEpic:      "Epic",
	RarityLegendary: "Legendary",
	RarityMythic:    "Mythic",
}

// String returns the display name of r, or "Unknown" when out of range.
func (r Rarity) String() string {
	if name, ok := rarityNames[r]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether r is one of the defined grades.
func (r Rarity) Valid() bool {
	_, ok := rarityNames[r]
	return ok
}

// YieldKind distinguishes fixed from probabilistic recipe output.
type YieldKind int

const (
	// YieldFixed produces exactly Quantity items per craft.
	YieldFixed YieldKind = iota
	// YieldProbabilistic produces one of the Outcomes amounts per craft.
	YieldProbabilistic
)

// Yield describes how many items one craft execution produces.
type Yield struct {
	Kind YieldKind
	// Quantity is the per-craft output for YieldFixed.
	Quantity int
	// Outcomes maps output amount to weight for YieldProbabilistic.
	Outcomes map[int]float64
}

// FixedYield returns a fixed yield of q items per craft. Non-positive q means 1.
func FixedYield(q int) Yield {
	if q <= 0 {
		q = 1
	}
	return Yield{Kind: YieldFixed, Quantity: q}
}

// ProbabilisticYield returns a variable yield over the given outcome weights.
//
// Postcondition: an empty outcome set degrades to FixedYield(1).
func ProbabilisticYield(outcomes map[int]float64) Yield {
	if len(outcomes) == 0 {
		return FixedYield(1)
	}
	cp := make(map[int]float64, len(outcomes))
	for amount, weight := range outcomes {
		cp[amount] = weight
	}
	return Yield{Kind: YieldProbabilistic, Outcomes: cp}
}

// Amounts returns the outcome amounts in ascending order. A fixed yield returns
// its single quantity.
func (y Yield) Amounts() []int {
	if y.Kind != YieldProbabilistic {
		return []int{y.Quantity}
	}
	out := make([]int, 0, len(y.Outcomes))
	for amount := range y.Outcomes {
		out = append(out, amount)
	}
	sort.Ints(out)
	return out
}

// Ingredient is one consumed item of a recipe.
type Ingredient struct {
	ItemID   string
	Quantity int
}

// Recipe turns its Consumed ingredients into the owning item.
type Recipe struct {
	Consumed []Ingredient
	Yield    Yield
}

// Item is a static catalog entry.
type Item struct {
	ID      string
	Name    string
	Tier    int
	Rarity  Rarity
	Tags    []string
	Icon    string
	Recipes []Recipe
}

// Craftable reports whether the item has at least one recipe.
func (it *Item) Craftable() bool {
	return len(it.Recipes) > 0
}

// HasTag reports whether the item carries tag.
func (it *Item) HasTag(tag string) bool {
	for _, t := range it.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SelectRecipe resolves a recipe selection index against the item's recipes.
// Negative or out-of-range indexes fall back to the first recipe.
//
// Postcondition: returns (nil, 0) iff the item has no recipes.
func (it *Item) SelectRecipe(index int) (*Recipe, int) {
	if len(it.Recipes) == 0 {
		return nil, 0
	}
	if index < 0 || index >= len(it.Recipes) {
		index = 0
	}
	return &it.Recipes[index], index
}

// Validate checks the structural invariants of the item. Ingredient references
// are not resolved here; dangling references are tolerated by the planner.
//
// Postcondition: returns nil iff all fields are valid.
func (it *Item) Validate() error {
	var errs []error
	if it.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if it.Tier < NoTier {
		errs = append(errs, fmt.Errorf("Tier must be >= %d, got %d", NoTier, it.Tier))
	}
	if !it.Rarity.Valid() {
		errs = append(errs, fmt.Errorf("Rarity must be 0-6, got %d", it.Rarity))
	}
	for ri, r := range it.Recipes {
		for ci, ing := range r.Consumed {
			if ing.ItemID == "" {
				errs = append(errs, fmt.Errorf("recipe %d ingredient %d has empty id", ri, ci))
			}
			if ing.Quantity <= 0 {
				errs = append(errs, fmt.Errorf("recipe %d ingredient %d quantity must be > 0, got %d", ri, ci, ing.Quantity))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q validation failed: %v", it.ID, errs)
	}
	return nil
}
