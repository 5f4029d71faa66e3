package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/craftplan/internal/catalog"
	"github.com/cory-johannsen/craftplan/internal/plan"
	"github.com/cory-johannsen/craftplan/internal/planner"
	"github.com/cory-johannsen/craftplan/internal/render"
	"github.com/cory-johannsen/craftplan/internal/session"
)

// ErrQuit is returned by Execute when the user asks to leave.
var ErrQuit = errors.New("quit")

// ErrUnknownCommand is returned for input that names no registered command.
var ErrUnknownCommand = errors.New("unknown command")

// ErrUsage is returned when a command is given malformed arguments.
var ErrUsage = errors.New("usage")

// suggestions is how many "did you mean" candidates an unknown item reports.
const suggestions = 3

// categoryOrder fixes the order of help sections.
var categoryOrder = []string{
	CategoryPlanning,
	CategoryCraft,
	CategoryInventory,
	CategoryPlans,
	CategoryCatalog,
	CategorySystem,
}

type handlerFunc func(ctx context.Context, cmd *Command, args []string) (string, error)

// Dispatcher executes command lines against one session and renders the
// outcome as text.
type Dispatcher struct {
	registry *Registry
	session  *session.Session
	renderer *render.Renderer
	logger   *zap.Logger
	handlers map[string]handlerFunc
}

// NewDispatcher wires a registry, a session and a renderer together.
//
// Precondition: registry, sess and renderer must not be nil.
// Postcondition: Every built-in handler identifier has a handler.
func NewDispatcher(registry *Registry, sess *session.Session, renderer *render.Renderer, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		registry: registry,
		session:  sess,
		renderer: renderer,
		logger:   logger,
	}
	d.handlers = map[string]handlerFunc{
		HandlerCalc:       d.handleCalc,
		HandlerSteps:      d.handleSteps,
		HandlerRaw:        d.handleRaw,
		HandlerUsage:      d.handleUsage,
		HandlerState:      d.handleState,
		HandlerCraft:      d.handleCraft,
		HandlerSetCraft:   d.handleSetCraft,
		HandlerUncraft:    d.handleUncraft,
		HandlerClearCraft: d.handleClearCraft,
		HandlerHave:       d.handleHave,
		HandlerSetHave:    d.handleSetHave,
		HandlerUnhave:     d.handleUnhave,
		HandlerClearHave:  d.handleClearHave,
		HandlerSelect:     d.handleSelect,
		HandlerShow:       d.handleShow,
		HandlerSearch:     d.handleSearch,
		HandlerPlans:      d.handlePlans,
		HandlerSavePlan:   d.handleSavePlan,
		HandlerApplyPlan:  d.handleApplyPlan,
		HandlerDeletePlan: d.handleDeletePlan,
		HandlerHelp:       d.handleHelp,
		HandlerQuit:       d.handleQuit,
	}
	return d
}

// Execute parses and runs one command line and returns the text to show.
//
// Postcondition: An empty line returns ("", nil). A quit command returns
// ErrQuit. Errors wrap ErrUnknownCommand, ErrUsage or the failing
// layer's sentinel.
func (d *Dispatcher) Execute(ctx context.Context, line string) (string, error) {
	parsed := Parse(line)
	if parsed.Command == "" {
		return "", nil
	}
	cmd, ok := d.registry.Resolve(parsed.Command)
	if !ok {
		return "", fmt.Errorf("%w: %q (type help for a list)", ErrUnknownCommand, parsed.Command)
	}
	h, ok := d.handlers[cmd.Handler]
	if !ok {
		return "", fmt.Errorf("%w: %q has no handler", ErrUnknownCommand, cmd.Name)
	}

	start := time.Now()
	out, err := h(ctx, cmd, parsed.Args)
	d.logger.Debug("command executed",
		zap.String("command", cmd.Name),
		zap.Int("args", len(parsed.Args)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	return out, err
}

func usageError(cmd *Command) error {
	return fmt.Errorf("%w: %s", ErrUsage, cmd.Usage)
}

// resolveItem finds the item named by ref, suggesting close names on a miss.
func (d *Dispatcher) resolveItem(ref string) (*catalog.Item, error) {
	cat := d.session.Catalog()
	if it, ok := cat.Resolve(ref); ok {
		return it, nil
	}
	var names []string
	for _, it := range cat.Suggest(ref, suggestions) {
		names = append(names, it.Name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %q", session.ErrUnknownItem, ref)
	}
	return nil, fmt.Errorf("%w: %q (did you mean %s?)", session.ErrUnknownItem, ref, strings.Join(names, ", "))
}

// resolveForRemoval accepts ids the catalog no longer knows so stale
// entries can still be removed.
func (d *Dispatcher) resolveForRemoval(ref string) string {
	if it, ok := d.session.Catalog().Resolve(ref); ok {
		return it.ID
	}
	return strings.TrimSpace(ref)
}

// changed reports a mutation followed by the fresh requirements.
func (d *Dispatcher) changed(msg string, res planner.Result) string {
	return msg + "\n\n" + d.renderer.Requirements(res, d.session.State().Inventory)
}

func (d *Dispatcher) handleCalc(_ context.Context, cmd *Command, args []string) (string, error) {
	if len(args) > 0 {
		return "", usageError(cmd)
	}
	return d.renderer.Requirements(d.session.Result(), d.session.State().Inventory), nil
}

func (d *Dispatcher) handleSteps(_ context.Context, cmd *Command, args []string) (string, error) {
	all := false
	switch {
	case len(args) == 0:
	case len(args) == 1 && strings.EqualFold(args[0], "all"):
		all = true
	default:
		return "", usageError(cmd)
	}
	return d.renderer.Steps(d.session.Result(), d.session.State().Inventory, all), nil
}

func (d *Dispatcher) handleRaw(_ context.Context, _ *Command, _ []string) (string, error) {
	return d.renderer.Raw(d.session.Result()), nil
}

func (d *Dispatcher) handleUsage(_ context.Context, _ *Command, _ []string) (string, error) {
	return d.renderer.Usage(d.session.Result()), nil
}

func (d *Dispatcher) handleState(_ context.Context, _ *Command, _ []string) (string, error) {
	return d.renderer.State(d.session.State()), nil
}

// addArgs parses "<item> [quantity]"; the quantity defaults to 1.
func (d *Dispatcher) addArgs(cmd *Command, args []string) (*catalog.Item, int, error) {
	if len(args) == 0 {
		return nil, 0, usageError(cmd)
	}
	ref, qty, ok := SplitTrailingQuantity(args)
	n := 1
	if ok {
		n, _ = plan.ParseQuantity(qty)
	}
	if n <= 0 {
		return nil, 0, fmt.Errorf("%w: quantity must be positive: %s", ErrUsage, cmd.Usage)
	}
	it, err := d.resolveItem(ref)
	if err != nil {
		return nil, 0, err
	}
	return it, n, nil
}

// setArgs parses "<item> <quantity>". A malformed quantity reads as 0, which
// removes the entry.
func (d *Dispatcher) setArgs(cmd *Command, args []string) (string, int, error) {
	if len(args) < 2 {
		return "", 0, usageError(cmd)
	}
	ref := strings.Join(args[:len(args)-1], " ")
	n, _ := plan.ParseQuantity(args[len(args)-1])
	if n <= 0 {
		return d.resolveForRemoval(ref), 0, nil
	}
	it, err := d.resolveItem(ref)
	if err != nil {
		return "", 0, err
	}
	return it.ID, n, nil
}

func (d *Dispatcher) handleCraft(ctx context.Context, cmd *Command, args []string) (string, error) {
	it, n, err := d.addArgs(cmd, args)
	if err != nil {
		return "", err
	}
	res, err := d.session.AddCraft(ctx, it.ID, n)
	if err != nil {
		return "", err
	}
	return d.changed(fmt.Sprintf("Added %dx %s to the craft list.", n, it.Name), res), nil
}

func (d *Dispatcher) handleSetCraft(ctx context.Context, cmd *Command, args []string) (string, error) {
	id, n, err := d.setArgs(cmd, args)
	if err != nil {
		return "", err
	}
	res, err := d.session.SetCraft(ctx, id, n)
	if err != nil {
		return "", err
	}
	if n <= 0 {
		return d.changed(fmt.Sprintf("Removed %s from the craft list.", d.displayName(id)), res), nil
	}
	return d.changed(fmt.Sprintf("Craft list now wants %dx %s.", n, d.displayName(id)), res), nil
}

func (d *Dispatcher) handleUncraft(ctx context.Context, cmd *Command, args []string) (string, error) {
	if len(args) == 0 {
		return "", usageError(cmd)
	}
	id := d.resolveForRemoval(strings.Join(args, " "))
	res, err := d.session.RemoveCraft(ctx, id)
	if err != nil {
		return "", err
	}
	return d.changed(fmt.Sprintf("Removed %s from the craft list.", d.displayName(id)), res), nil
}

func (d *Dispatcher) handleClearCraft(ctx context.Context, _ *Command, _ []string) (string, error) {
	res, err := d.session.ClearCraftList(ctx)
	if err != nil {
		return "", err
	}
	return d.changed("Craft list cleared.", res), nil
}

func (d *Dispatcher) handleHave(ctx context.Context, cmd *Command, args []string) (string, error) {
	it, n, err := d.addArgs(cmd, args)
	if err != nil {
		return "", err
	}
	res, err := d.session.AddInventory(ctx, it.ID, n)
	if err != nil {
		return "", err
	}
	return d.changed(fmt.Sprintf("Added %dx %s to the inventory.", n, it.Name), res), nil
}

func (d *Dispatcher) handleSetHave(ctx context.Context, cmd *Command, args []string) (string, error) {
	id, n, err := d.setArgs(cmd, args)
	if err != nil {
		return "", err
	}
	res, err := d.session.SetInventory(ctx, id, n)
	if err != nil {
		return "", err
	}
	if n <= 0 {
		return d.changed(fmt.Sprintf("Removed %s from the inventory.", d.displayName(id)), res), nil
	}
	return d.changed(fmt.Sprintf("Inventory now holds %dx %s.", n, d.displayName(id)), res), nil
}

func (d *Dispatcher) handleUnhave(ctx context.Context, cmd *Command, args []string) (string, error) {
	if len(args) == 0 {
		return "", usageError(cmd)
	}
	id := d.resolveForRemoval(strings.Join(args, " "))
	res, err := d.session.RemoveInventory(ctx, id)
	if err != nil {
		return "", err
	}
	return d.changed(fmt.Sprintf("Removed %s from the inventory.", d.displayName(id)), res), nil
}

func (d *Dispatcher) handleClearHave(ctx context.Context, _ *Command, _ []string) (string, error) {
	res, err := d.session.ClearInventory(ctx)
	if err != nil {
		return "", err
	}
	return d.changed("Inventory cleared.", res), nil
}

func (d *Dispatcher) handleSelect(ctx context.Context, cmd *Command, args []string) (string, error) {
	ref, idx, ok := SplitTrailingQuantity(args)
	if !ok {
		return "", usageError(cmd)
	}
	index, _ := strconv.Atoi(idx)
	it, err := d.resolveItem(ref)
	if err != nil {
		return "", err
	}
	if !it.Craftable() {
		return "", fmt.Errorf("%s has no recipes to choose from", it.Name)
	}
	if index < 0 || index >= len(it.Recipes) {
		return "", fmt.Errorf("%w: %s has recipes 0 to %d", ErrUsage, it.Name, len(it.Recipes)-1)
	}
	res, err := d.session.Select(ctx, it.ID, index)
	if err != nil {
		return "", err
	}
	return d.changed(fmt.Sprintf("%s now uses recipe %d.", it.Name, index), res), nil
}

func (d *Dispatcher) handleShow(_ context.Context, cmd *Command, args []string) (string, error) {
	if len(args) == 0 {
		return "", usageError(cmd)
	}
	it, err := d.resolveItem(strings.Join(args, " "))
	if err != nil {
		return "", err
	}
	return d.renderer.Item(it, d.session.State().Selections[it.ID]), nil
}

func (d *Dispatcher) handleSearch(_ context.Context, cmd *Command, args []string) (string, error) {
	f, err := ParseFilter(args)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUsage, cmd.Usage, err)
	}
	return d.renderer.Items(d.session.Catalog().Search(f)), nil
}

// ParseFilter builds a catalog filter from search arguments. Words of the
// form key=value set tier, rarity or tag; every other word joins the query.
func ParseFilter(args []string) (catalog.Filter, error) {
	var f catalog.Filter
	var words []string
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			words = append(words, arg)
			continue
		}
		switch strings.ToLower(key) {
		case "tier":
			tier, err := parseTier(value)
			if err != nil {
				return catalog.Filter{}, err
			}
			f.Tier = &tier
		case "rarity":
			rarity, err := parseRarity(value)
			if err != nil {
				return catalog.Filter{}, err
			}
			f.Rarity = &rarity
		case "tag":
			f.Tag = value
		default:
			return catalog.Filter{}, fmt.Errorf("unknown filter %q", key)
		}
	}
	f.Query = strings.Join(words, " ")
	return f, nil
}

func parseTier(s string) (int, error) {
	if strings.EqualFold(s, "none") {
		return catalog.NoTier, nil
	}
	tier, err := strconv.Atoi(s)
	if err != nil || tier < 0 {
		return 0, fmt.Errorf("tier must be a non-negative number or none, got %q", s)
	}
	return tier, nil
}

func parseRarity(s string) (catalog.Rarity, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if r := catalog.Rarity(n); r.Valid() {
			return r, nil
		}
		return 0, fmt.Errorf("rarity must be 0 to 6, got %d", n)
	}
	for r := catalog.RarityNone; r <= catalog.RarityMythic; r++ {
		if strings.EqualFold(r.String(), s) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown rarity %q", s)
}

func (d *Dispatcher) handlePlans(ctx context.Context, cmd *Command, args []string) (string, error) {
	kinds := []plan.Kind{plan.KindCraft, plan.KindInventory}
	switch len(args) {
	case 0:
	case 1:
		kind, err := plan.ParseKind(args[0])
		if err != nil {
			return "", err
		}
		kinds = []plan.Kind{kind}
	default:
		return "", usageError(cmd)
	}
	var b strings.Builder
	for i, kind := range kinds {
		plans, err := d.session.ListPlans(ctx, kind)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(d.renderer.Plans(kind, plans))
	}
	return b.String(), nil
}

// planArgs parses "<kind> <name...>".
func planArgs(cmd *Command, args []string) (plan.Kind, string, error) {
	if len(args) < 2 {
		return "", "", usageError(cmd)
	}
	kind, err := plan.ParseKind(args[0])
	if err != nil {
		return "", "", err
	}
	return kind, strings.Join(args[1:], " "), nil
}

func (d *Dispatcher) handleSavePlan(ctx context.Context, cmd *Command, args []string) (string, error) {
	kind, name, err := planArgs(cmd, args)
	if err != nil {
		return "", err
	}
	saved, err := d.session.SavePlan(ctx, kind, name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Saved %s plan %q with %d item(s).\n", kind, saved.Name, len(saved.Items)), nil
}

func (d *Dispatcher) handleApplyPlan(ctx context.Context, cmd *Command, args []string) (string, error) {
	mode := plan.ApplyMerge
	if len(args) >= 3 {
		if m, err := plan.ParseApplyMode(args[len(args)-1]); err == nil {
			mode = m
			args = args[:len(args)-1]
		}
	}
	kind, name, err := planArgs(cmd, args)
	if err != nil {
		return "", err
	}
	res, err := d.session.ApplyPlan(ctx, kind, name, mode)
	if err != nil {
		return "", err
	}
	verb := "Merged"
	if mode == plan.ApplyReplace {
		verb = "Applied"
	}
	return d.changed(fmt.Sprintf("%s %s plan %q.", verb, kind, name), res), nil
}

func (d *Dispatcher) handleDeletePlan(ctx context.Context, cmd *Command, args []string) (string, error) {
	kind, name, err := planArgs(cmd, args)
	if err != nil {
		return "", err
	}
	if err := d.session.DeletePlan(ctx, kind, name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted %s plan %q.\n", kind, name), nil
}

func (d *Dispatcher) handleHelp(_ context.Context, _ *Command, args []string) (string, error) {
	if len(args) > 0 {
		cmd, ok := d.registry.Resolve(strings.ToLower(args[0]))
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownCommand, args[0])
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n  %s\n", cmd.Usage, cmd.Help)
		if len(cmd.Aliases) > 0 {
			fmt.Fprintf(&b, "  aliases: %s\n", strings.Join(cmd.Aliases, ", "))
		}
		return b.String(), nil
	}

	byCategory := d.registry.CommandsByCategory()
	var b strings.Builder
	for _, category := range categoryOrder {
		cmds := byCategory[category]
		if len(cmds) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", category)
		for _, cmd := range cmds {
			fmt.Fprintf(&b, "  %-48s %s\n", cmd.Usage, cmd.Help)
		}
	}
	return b.String(), nil
}

func (d *Dispatcher) handleQuit(_ context.Context, _ *Command, _ []string) (string, error) {
	return "", ErrQuit
}

func (d *Dispatcher) displayName(id string) string {
	if it, ok := d.session.Catalog().Item(id); ok {
		return it.Name
	}
	return id
}
