// Package plan holds the user-owned planning state: the craft list, the
// inventory, recipe selections and named saved plans.
package plan

import (
	"sort"
	"strconv"
	"strings"
)

// Quantities maps item id to a positive quantity. Entries never hold a value
// of zero or less; setting one removes it.
type Quantities map[string]int

// Add adds n to id's quantity.
//
// Postcondition: the entry is removed if the resulting quantity is <= 0.
func (q Quantities) Add(id string, n int) {
	q.Set(id, q[id]+n)
}

// Set stores n for id.
//
// Postcondition: the entry is removed if n <= 0.
func (q Quantities) Set(id string, n int) {
	if n <= 0 {
		delete(q, id)
		return
	}
	q[id] = n
}

// Remove deletes id.
func (q Quantities) Remove(id string) {
	delete(q, id)
}

// Clone returns an independent copy. A nil receiver yields an empty map.
func (q Quantities) Clone() Quantities {
	out := make(Quantities, len(q))
	for id, n := range q {
		out[id] = n
	}
	return out
}

// SortedIDs returns the ids in ascending order.
func (q Quantities) SortedIDs() []string {
	ids := make([]string, 0, len(q))
	for id := range q {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Total returns the sum of all quantities.
func (q Quantities) Total() int {
	total := 0
	for _, n := range q {
		total += n
	}
	return total
}

// ParseQuantity parses user input as a quantity. Malformed input reports ok
// false and a quantity of 0, which Set treats as removal.
func ParseQuantity(s string) (n int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Selections maps item id to the chosen recipe index.
type Selections map[string]int

// Clone returns an independent copy. A nil receiver yields an empty map.
func (s Selections) Clone() Selections {
	out := make(Selections, len(s))
	for id, idx := range s {
		out[id] = idx
	}
	return out
}

// State is the complete input a calculation needs besides the catalog.
type State struct {
	CraftList  Quantities
	Inventory  Quantities
	Selections Selections
}

// NewState returns a State with all maps initialised.
func NewState() State {
	return State{
		CraftList:  make(Quantities),
		Inventory:  make(Quantities),
		Selections: make(Selections),
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return State{
		CraftList:  s.CraftList.Clone(),
		Inventory:  s.Inventory.Clone(),
		Selections: s.Selections.Clone(),
	}
}

// Select records recipe index for id. A negative index clears the selection.
func (s *State) Select(id string, index int) {
	if s.Selections == nil {
		s.Selections = make(Selections)
	}
	if index < 0 {
		delete(s.Selections, id)
		return
	}
	s.Selections[id] = index
}

// ClearCraftList empties the craft list and drops every recipe selection with it.
func (s *State) ClearCraftList() {
	s.CraftList = make(Quantities)
	s.Selections = make(Selections)
}

// ClearInventory empties the inventory.
func (s *State) ClearInventory() {
	s.Inventory = make(Quantities)
}

// Normalize initialises nil maps and drops non-positive quantities and
// negative selections, as loaded data may predate the mutation rules.
func (s *State) Normalize() {
	if s.CraftList == nil {
		s.CraftList = make(Quantities)
	}
	if s.Inventory == nil {
		s.Inventory = make(Quantities)
	}
	if s.Selections == nil {
		s.Selections = make(Selections)
	}
	for id, n := range s.CraftList {
		s.CraftList.Set(id, n)
	}
	for id, n := range s.Inventory {
		s.Inventory.Set(id, n)
	}
	for id, idx := range s.Selections {
		if idx < 0 {
			delete(s.Selections, id)
		}
	}
}
