// Package command provides the command registry, parser, and built-in command definitions.
package command

// Categories for organizing commands.
const (
	CategoryPlanning  = "planning"
	CategoryCraft     = "craft list"
	CategoryInventory = "inventory"
	CategoryPlans     = "saved plans"
	CategoryCatalog   = "catalog"
	CategorySystem    = "system"
)

// Handler identifiers mapping commands to dispatcher handlers.
const (
	HandlerCalc       = "calc"
	HandlerSteps      = "steps"
	HandlerRaw        = "raw"
	HandlerUsage      = "usage"
	HandlerState      = "state"
	HandlerCraft      = "craft"
	HandlerSetCraft   = "setcraft"
	HandlerUncraft    = "uncraft"
	HandlerClearCraft = "clearcraft"
	HandlerHave       = "have"
	HandlerSetHave    = "sethave"
	HandlerUnhave     = "unhave"
	HandlerClearHave  = "clearhave"
	HandlerSelect     = "select"
	HandlerShow       = "show"
	HandlerSearch     = "search"
	HandlerPlans      = "plans"
	HandlerSavePlan   = "saveplan"
	HandlerApplyPlan  = "applyplan"
	HandlerDeletePlan = "deleteplan"
	HandlerHelp       = "help"
	HandlerQuit       = "quit"
)

// Command defines a user-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage is the argument synopsis shown by help and on bad input.
	Usage string
	// Help is the short help text displayed to users.
	Help string
	// Category groups the command for help output.
	Category string
	// Handler maps to the dispatcher handler.
	Handler string
}

// BuiltinCommands returns all built-in commands.
func BuiltinCommands() []Command {
	return []Command{
		// Planning commands
		{Name: "calc", Aliases: []string{"calculate", "status"}, Usage: "calc", Help: "Show raw resources, crafting steps and inventory usage", Category: CategoryPlanning, Handler: HandlerCalc},
		{Name: "steps", Aliases: []string{"st"}, Usage: "steps [all]", Help: "Show crafting steps leaf-first; all includes covered steps", Category: CategoryPlanning, Handler: HandlerSteps},
		{Name: "raw", Aliases: []string{"gather"}, Usage: "raw", Help: "Show raw resources still to gather", Category: CategoryPlanning, Handler: HandlerRaw},
		{Name: "usage", Aliases: []string{"used"}, Usage: "usage", Help: "Show inventory consumed by the plan", Category: CategoryPlanning, Handler: HandlerUsage},
		{Name: "list", Aliases: []string{"ls", "state"}, Usage: "list", Help: "Show the craft list and inventory", Category: CategoryPlanning, Handler: HandlerState},

		// Craft list commands
		{Name: "craft", Aliases: []string{"add"}, Usage: "craft <item> [quantity]", Help: "Add an item to the craft list", Category: CategoryCraft, Handler: HandlerCraft},
		{Name: "setcraft", Aliases: nil, Usage: "setcraft <item> <quantity>", Help: "Set a craft list quantity; 0 or invalid removes", Category: CategoryCraft, Handler: HandlerSetCraft},
		{Name: "uncraft", Aliases: []string{"rm"}, Usage: "uncraft <item>", Help: "Remove an item from the craft list", Category: CategoryCraft, Handler: HandlerUncraft},
		{Name: "clearcraft", Aliases: nil, Usage: "clearcraft", Help: "Empty the craft list and recipe selections", Category: CategoryCraft, Handler: HandlerClearCraft},
		{Name: "select", Aliases: []string{"recipe"}, Usage: "select <item> <recipe index>", Help: "Choose which recipe crafts an item", Category: CategoryCraft, Handler: HandlerSelect},

		// Inventory commands
		{Name: "have", Aliases: []string{"inv", "own"}, Usage: "have <item> [quantity]", Help: "Add an item to the inventory", Category: CategoryInventory, Handler: HandlerHave},
		{Name: "sethave", Aliases: []string{"setinv"}, Usage: "sethave <item> <quantity>", Help: "Set an inventory quantity; 0 or invalid removes", Category: CategoryInventory, Handler: HandlerSetHave},
		{Name: "unhave", Aliases: []string{"uninv"}, Usage: "unhave <item>", Help: "Remove an item from the inventory", Category: CategoryInventory, Handler: HandlerUnhave},
		{Name: "clearhave", Aliases: []string{"clearinv"}, Usage: "clearhave", Help: "Empty the inventory", Category: CategoryInventory, Handler: HandlerClearHave},

		// Saved plan commands
		{Name: "plans", Aliases: nil, Usage: "plans [craft|inventory]", Help: "List saved plans", Category: CategoryPlans, Handler: HandlerPlans},
		{Name: "save", Aliases: nil, Usage: "save <craft|inventory> <name>", Help: "Save the craft list or inventory under a name", Category: CategoryPlans, Handler: HandlerSavePlan},
		{Name: "load", Aliases: []string{"apply"}, Usage: "load <craft|inventory> <name> [merge|replace]", Help: "Apply a saved plan (merge by default)", Category: CategoryPlans, Handler: HandlerApplyPlan},
		{Name: "delete", Aliases: []string{"del"}, Usage: "delete <craft|inventory> <name>", Help: "Delete a saved plan", Category: CategoryPlans, Handler: HandlerDeletePlan},

		// Catalog commands
		{Name: "search", Aliases: []string{"find", "items"}, Usage: "search [text] [tier=N] [rarity=NAME] [tag=TAG]", Help: "Search the item catalog", Category: CategoryCatalog, Handler: HandlerSearch},
		{Name: "show", Aliases: []string{"item", "info"}, Usage: "show <item>", Help: "Show an item and its recipes", Category: CategoryCatalog, Handler: HandlerShow},

		// System commands
		{Name: "help", Aliases: []string{"?"}, Usage: "help [command]", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "quit", Help: "Leave the planner", Category: CategorySystem, Handler: HandlerQuit},
	}
}
