package catalog

import "fmt"

// Catalog holds every loaded item indexed by ID. It is built once and then
// only read, so lookups are safe for concurrent use.
type Catalog struct {
	items       map[string]*Item
	order       []string
	fingerprint string
}

// New returns an empty Catalog.
//
// Postcondition: internal maps are initialised.
func New() *Catalog {
	return &Catalog{items: make(map[string]*Item)}
}

// Register adds it to the catalog.
//
// Precondition: it must not be nil.
// Postcondition: Item(it.ID) returns (it, true); returns error if it.ID is
// already registered or it fails validation.
func (c *Catalog) Register(it *Item) error {
	if err := it.Validate(); err != nil {
		return fmt.Errorf("catalog: Register: %w", err)
	}
	if _, exists := c.items[it.ID]; exists {
		return fmt.Errorf("catalog: Register: item ID %q already registered", it.ID)
	}
	c.items[it.ID] = it
	c.order = append(c.order, it.ID)
	return nil
}

// Item returns the item for id and whether it was found.
func (c *Catalog) Item(id string) (*Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// All returns every item in registration order.
func (c *Catalog) All() []*Item {
	out := make([]*Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// Len returns the number of registered items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Fingerprint returns the content hash of the document the catalog was loaded
// from, or "" for catalogs built in code.
func (c *Catalog) Fingerprint() string {
	return c.fingerprint
}

// Tags returns the distinct tags across the catalog in first-seen order.
func (c *Catalog) Tags() []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range c.order {
		for _, t := range c.items[id].Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}
