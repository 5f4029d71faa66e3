// Package render formats calculation results, planning state and catalog
// lookups as terminal text.
package render

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/craftplan/internal/catalog"
	"github.com/cory-johannsen/craftplan/internal/plan"
	"github.com/cory-johannsen/craftplan/internal/planner"
)

// Renderer turns planner and catalog values into text. With color disabled
// the output carries no escape sequences.
type Renderer struct {
	cat    *catalog.Catalog
	policy planner.YieldPolicy
	color  bool
}

// New returns a Renderer that resolves item names through cat.
func New(cat *catalog.Catalog, policy planner.YieldPolicy, color bool) *Renderer {
	return &Renderer{cat: cat, policy: policy, color: color}
}

func (r *Renderer) paint(color, text string) string {
	if !r.color {
		return text
	}
	return Colorize(color, text)
}

func (r *Renderer) paintf(color, format string, args ...any) string {
	return r.paint(color, fmt.Sprintf(format, args...))
}

// name returns the display name of id, or the id itself when unknown.
func (r *Renderer) name(id string) string {
	if it, ok := r.cat.Item(id); ok && it.Name != "" {
		return it.Name
	}
	return id
}

// formatRange renders "n" for a single value and "min–max" otherwise.
func formatRange(rg planner.Range) string {
	if rg.Fixed() {
		return fmt.Sprintf("%d", rg.Max)
	}
	return fmt.Sprintf("%d–%d", rg.Min, rg.Max)
}

func (r *Renderer) status(rg planner.Range) string {
	if rg.Max == 0 {
		return r.paint(Green, "required: "+formatRange(rg))
	}
	return r.paint(Red, "required: "+formatRange(rg))
}

// Requirements renders raw materials, crafting steps and inventory usage.
func (r *Renderer) Requirements(res planner.Result, inventory plan.Quantities) string {
	var b strings.Builder
	b.WriteString(r.Raw(res))
	b.WriteString("\n")
	b.WriteString(r.Steps(res, inventory, false))
	b.WriteString("\n")
	b.WriteString(r.Usage(res))
	return b.String()
}

// Raw renders the raw materials still to gather, ordered by id.
func (r *Renderer) Raw(res planner.Result) string {
	var b strings.Builder
	b.WriteString(r.paint(BrightYellow, "Raw resources"))
	b.WriteString("\n")
	if len(res.Raw) == 0 {
		b.WriteString("  No raw resources required.\n")
		return b.String()
	}
	for _, id := range res.RawIDs() {
		fmt.Fprintf(&b, "  %-32s %s\n", r.name(id), r.status(res.Raw[id]))
	}
	return b.String()
}

// Steps renders the crafting steps leaf-first. Unless all is set, steps whose
// ingredients inventory already covers are left out; numbering still counts
// them so step numbers stay stable as inventory grows.
func (r *Renderer) Steps(res planner.Result, inventory plan.Quantities, all bool) string {
	var b strings.Builder
	b.WriteString(r.paint(BrightYellow, "Crafting steps"))
	b.WriteString("\n")
	shown := 0
	for i, step := range res.Steps {
		if !all && step.Covered(inventory) {
			continue
		}
		shown++
		title := fmt.Sprintf("Step %d: Get %dx %s", i+1, step.QuantityToGet, r.name(step.ItemID))
		if step.Produced.Min != step.QuantityToGet || step.Produced.Max != step.QuantityToGet {
			title += fmt.Sprintf(" (craft output: %s per craft)", formatRange(step.Output))
		}
		b.WriteString("  ")
		b.WriteString(r.paint(BrightWhite, title))
		b.WriteString("\n")
		fmt.Fprintf(&b, "    crafts: %s", formatRange(step.Crafts))
		if it, ok := r.cat.Item(step.ItemID); ok && len(it.Recipes) > 1 {
			fmt.Fprintf(&b, "  recipe %d of %d", step.RecipeIndex+1, len(it.Recipes))
		}
		b.WriteString("\n")
		for _, need := range step.Outstanding(inventory) {
			fmt.Fprintf(&b, "    %-30s %s\n", r.name(need.ItemID), r.status(need.Needed))
		}
	}
	if shown == 0 {
		b.WriteString("  No crafting steps required.\n")
	}
	return b.String()
}

// Usage renders what the calculation takes from inventory, in the order the
// expansion first reached each item.
func (r *Renderer) Usage(res planner.Result) string {
	var b strings.Builder
	b.WriteString(r.paint(BrightYellow, "Inventory used"))
	b.WriteString("\n")
	if len(res.InventoryUsage) == 0 {
		b.WriteString("  No items from your inventory are used for this craft.\n")
		return b.String()
	}
	for _, u := range res.InventoryUsage {
		fmt.Fprintf(&b, "  %-32s %s\n", r.name(u.ItemID), r.paintf(Cyan, "used: %d", u.Quantity))
	}
	return b.String()
}

// Quantities renders a craft list or inventory under title, ordered by id.
func (r *Renderer) Quantities(title string, q plan.Quantities, empty string) string {
	var b strings.Builder
	b.WriteString(r.paint(BrightYellow, title))
	b.WriteString("\n")
	if len(q) == 0 {
		fmt.Fprintf(&b, "  %s\n", empty)
		return b.String()
	}
	for _, id := range q.SortedIDs() {
		fmt.Fprintf(&b, "  %-32s x%d\n", r.name(id), q[id])
	}
	return b.String()
}

// State renders the craft list and the inventory.
func (r *Renderer) State(st plan.State) string {
	return r.Quantities("Craft list", st.CraftList, "Your craft list is empty.") + "\n" +
		r.Quantities("Inventory", st.Inventory, "Your inventory is empty.")
}

// Items renders catalog search hits, one per line.
func (r *Renderer) Items(items []*catalog.Item) string {
	if len(items) == 0 {
		return "No items found.\n"
	}
	var b strings.Builder
	for _, it := range items {
		tier := "-"
		if it.Tier != catalog.NoTier {
			tier = fmt.Sprintf("T%d", it.Tier)
		}
		kind := "raw"
		if it.Craftable() {
			kind = fmt.Sprintf("%d recipe(s)", len(it.Recipes))
		}
		fmt.Fprintf(&b, "  %-4s %-32s %-10s %-12s %s\n",
			tier, it.Name, r.paint(r.rarityColor(it.Rarity), it.Rarity.String()), kind, r.paint(Dim, it.ID))
	}
	return b.String()
}

func (r *Renderer) rarityColor(rarity catalog.Rarity) string {
	if int(rarity) >= 0 && int(rarity) < len(rarityColors) {
		return rarityColors[rarity]
	}
	return White
}

// Item renders one item with every recipe, marking the selected one.
func (r *Renderer) Item(it *catalog.Item, selected int) string {
	var b strings.Builder
	b.WriteString(r.paint(BrightYellow, it.Name))
	fmt.Fprintf(&b, " (%s)\n", it.ID)
	tier := "none"
	if it.Tier != catalog.NoTier {
		tier = fmt.Sprintf("%d", it.Tier)
	}
	fmt.Fprintf(&b, "  tier: %s  rarity: %s\n", tier, it.Rarity)
	if len(it.Tags) > 0 {
		fmt.Fprintf(&b, "  tags: %s\n", strings.Join(it.Tags, ", "))
	}
	if !it.Craftable() {
		b.WriteString("  raw material\n")
		return b.String()
	}
	_, active := it.SelectRecipe(selected)
	for i, rc := range it.Recipes {
		parts := make([]string, 0, len(rc.Consumed))
		for _, ing := range rc.Consumed {
			parts = append(parts, fmt.Sprintf("%dx %s", ing.Quantity, r.name(ing.ItemID)))
		}
		minOut, maxOut := r.policy.Bounds(rc.Yield)
		marker := " "
		if i == active {
			marker = "*"
		}
		line := fmt.Sprintf("  %s [%d] Recipe: %s => %s", marker, i, strings.Join(parts, ", "),
			formatRange(planner.Range{Min: max(1, minOut), Max: max(1, maxOut)}))
		if i == active {
			line = r.paint(BrightCyan, line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// Plans renders saved plans of one kind.
func (r *Renderer) Plans(kind plan.Kind, plans []plan.Saved) string {
	var b strings.Builder
	b.WriteString(r.paintf(BrightYellow, "Saved %s plans", kind))
	b.WriteString("\n")
	if len(plans) == 0 {
		b.WriteString("  No saved plans.\n")
		return b.String()
	}
	for _, p := range plans {
		names := make([]string, 0, len(p.Items))
		for _, id := range p.Items.SortedIDs() {
			names = append(names, fmt.Sprintf("%dx %s", p.Items[id], r.name(id)))
		}
		stale := ""
		if p.CatalogFingerprint != "" && p.CatalogFingerprint != r.cat.Fingerprint() {
			stale = r.paint(Yellow, " (older catalog)")
		}
		fmt.Fprintf(&b, "  %-20s %s%s\n", p.Name, strings.Join(names, ", "), stale)
	}
	return b.String()
}
