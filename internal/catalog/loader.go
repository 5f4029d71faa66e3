package catalog

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
	"lukechampine.com/blake3"
)

// ErrInvalidCatalog is returned when a catalog document cannot be interpreted.
var ErrInvalidCatalog = errors.New("invalid catalog")

// yamlItem is the document representation of an item. JSON documents decode
// through the same path since yaml.v3 accepts JSON flow syntax.
type yamlItem struct {
	Name    string       `yaml:"name"`
	Tier    *int         `yaml:"tier"`
	Rarity  int          `yaml:"rarity"`
	Tag     string       `yaml:"tag"`
	Tags    []string     `yaml:"tags"`
	Icon    string       `yaml:"icon"`
	Recipes []yamlRecipe `yaml:"recipes"`
}

type yamlRecipe struct {
	Consumed       []yamlIngredient `yaml:"consumed_items"`
	OutputQuantity int              `yaml:"output_quantity"`
	Possibilities  yaml.Node        `yaml:"possibilities"`
}

// yamlIngredient keeps the id as a raw node because source data mixes numeric
// and string ids.
type yamlIngredient struct {
	ID       yaml.Node `yaml:"id"`
	Quantity int       `yaml:"quantity"`
}

// LoadFile reads and parses a catalog document from path.
//
// Precondition: path must point to a readable JSON or YAML file.
// Postcondition: Returns a populated Catalog or a non-nil error.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}
	return LoadBytes(data)
}

// LoadBytes parses a catalog document: a mapping from item id to item object.
//
// Precondition: data must be a JSON or YAML mapping.
// Postcondition: Returns a populated Catalog whose Fingerprint is the blake3
// hash of data, or a non-nil error.
func LoadBytes(data []byte) (*Catalog, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: parsing document: %v", ErrInvalidCatalog, err)
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidCatalog)
		}
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping of item id to item", ErrInvalidCatalog)
	}

	cat := New()
	for i := 0; i+1 < len(doc.Content); i += 2 {
		id := strings.TrimSpace(doc.Content[i].Value)
		var yi yamlItem
		if err := doc.Content[i+1].Decode(&yi); err != nil {
			return nil, fmt.Errorf("%w: item %q: %v", ErrInvalidCatalog, id, err)
		}
		it, err := convertItem(id, yi)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
		if err := cat.Register(it); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
	}
	cat.fingerprint = Fingerprint(data)
	return cat, nil
}

// Fingerprint returns the hex blake3-256 digest of data.
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func convertItem(id string, yi yamlItem) (*Item, error) {
	it := &Item{
		ID:     id,
		Name:   yi.Name,
		Tier:   NoTier,
		Rarity: Rarity(yi.Rarity),
		Icon:   yi.Icon,
	}
	if yi.Tier != nil {
		it.Tier = *yi.Tier
	}
	it.Tags = mergeTags(yi.Tag, yi.Tags)

	for ri, yr := range yi.Recipes {
		r := Recipe{Consumed: make([]Ingredient, 0, len(yr.Consumed))}
		for _, yc := range yr.Consumed {
			r.Consumed = append(r.Consumed, Ingredient{
				ItemID:   strings.TrimSpace(yc.ID.Value),
				Quantity: yc.Quantity,
			})
		}
		outcomes, err := parseOutcomes(&yr.Possibilities)
		if err != nil {
			return nil, fmt.Errorf("item %q recipe %d: %w", id, ri, err)
		}
		if len(outcomes) > 0 {
			r.Yield = ProbabilisticYield(outcomes)
		} else {
			r.Yield = FixedYield(yr.OutputQuantity)
		}
		it.Recipes = append(it.Recipes, r)
	}
	return it, nil
}

// parseOutcomes reads a possibilities mapping of amount to weight. Keys that
// are not integers are dropped; weights that are not numbers count as 0. A
// mapping with no usable key yields an empty result, and the recipe falls back
// to its fixed output quantity.
func parseOutcomes(n *yaml.Node) (map[int]float64, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		return nil, fmt.Errorf("possibilities must be a mapping, got scalar %q", n.Value)
	case yaml.MappingNode:
	default:
		return nil, errors.New("possibilities must be a mapping")
	}

	out := make(map[int]float64, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		amount, err := strconv.Atoi(strings.TrimSpace(n.Content[i].Value))
		if err != nil {
			continue
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(n.Content[i+1].Value), 64)
		if err != nil {
			weight = 0
		}
		out[amount] = weight
	}
	return out, nil
}

func mergeTags(tag string, tags []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		out = append(out, t)
	}
	add(tag)
	for _, t := range tags {
		add(t)
	}
	return out
}
