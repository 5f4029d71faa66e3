package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/craftplan/internal/catalog"
	"github.com/cory-johannsen/craftplan/internal/command"
	"github.com/cory-johannsen/craftplan/internal/config"
	"github.com/cory-johannsen/craftplan/internal/planner"
	"github.com/cory-johannsen/craftplan/internal/render"
	"github.com/cory-johannsen/craftplan/internal/session"
)

func TestReplRunsUntilQuit(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	cfg := config.Config{Storage: config.StorageConfig{Backend: config.BackendFile, Dir: t.TempDir(), Profile: "default"}}
	states, plans, closeStore, err := openStore(ctx, cfg, logger)
	require.NoError(t, err)
	defer closeStore()

	cat := catalog.New()
	require.NoError(t, cat.Register(&catalog.Item{ID: "rope", Name: "Rope", Tier: 1, Recipes: []catalog.Recipe{
		{Consumed: []catalog.Ingredient{{ItemID: "fiber", Quantity: 3}}, Yield: catalog.FixedYield(1)},
	}}))
	require.NoError(t, cat.Register(&catalog.Item{ID: "fiber", Name: "Fiber", Tier: 0}))

	sess, err := session.Open(ctx, "default", session.Deps{
		Planner: planner.New(cat),
		States:  states,
		Plans:   plans,
		Logger:  logger,
	})
	require.NoError(t, err)
	d := command.NewDispatcher(command.DefaultRegistry(), sess, render.New(cat, planner.PolicyRange, false), logger)

	in := strings.NewReader("craft rope 2\nbogus\nquit\ncraft rope 5\n")
	var out bytes.Buffer
	require.NoError(t, repl(ctx, d, in, &out))

	text := out.String()
	assert.Contains(t, text, "Added 2x Rope to the craft list.")
	assert.Contains(t, text, "required: 6")
	assert.Contains(t, text, "error: unknown command")
	assert.Equal(t, 2, sess.State().CraftList["rope"], "input after quit is ignored")
}

func TestReplStopsAtEOF(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, repl(context.Background(), nil, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), prompt)
}

func TestOpenStoreRejectsUnknownBackend(t *testing.T) {
	cfg := config.Config{Storage: config.StorageConfig{Backend: "sqlite"}}
	_, _, _, err := openStore(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}
