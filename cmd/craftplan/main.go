// Package main provides the craftplan binary: a crafting requirements planner
// that runs one command from its arguments or an interactive prompt on stdin.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/craftplan/internal/catalog"
	"github.com/cory-johannsen/craftplan/internal/command"
	"github.com/cory-johannsen/craftplan/internal/config"
	"github.com/cory-johannsen/craftplan/internal/lifecycle"
	"github.com/cory-johannsen/craftplan/internal/observability"
	"github.com/cory-johannsen/craftplan/internal/planner"
	"github.com/cory-johannsen/craftplan/internal/render"
	"github.com/cory-johannsen/craftplan/internal/session"
	"github.com/cory-johannsen/craftplan/internal/storage/file"
	"github.com/cory-johannsen/craftplan/internal/storage/postgres"
)

const prompt = "craftplan> "

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty = defaults and environment only")
	profile := flag.String("profile", "", "profile whose state and plans are used (default from storage.profile)")
	noColor := flag.Bool("no-color", false, "disable ANSI colors in output")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	// Load catalog
	catStart := time.Now()
	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("loading catalog", zap.String("path", cfg.Catalog.Path), zap.Error(err))
	}
	logger.Info("catalog loaded",
		zap.String("path", cfg.Catalog.Path),
		zap.Int("items", cat.Len()),
		zap.String("fingerprint", cat.Fingerprint()),
		zap.Duration("elapsed", time.Since(catStart)),
	)

	policy, err := planner.ParseYieldPolicy(cfg.Planner.YieldPolicy)
	if err != nil {
		logger.Fatal("parsing yield policy", zap.Error(err))
	}

	lc := lifecycle.New(logger)

	states, plans, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("opening storage", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	lc.OnShutdown("storage", closeStore)

	name := *profile
	if name == "" {
		name = cfg.Storage.Profile
	}
	sess, err := session.Open(ctx, name, session.Deps{
		Planner: planner.New(cat, planner.WithYieldPolicy(policy), planner.WithLogger(logger)),
		States:  states,
		Plans:   plans,
		Logger:  logger,
	})
	if err != nil {
		closeStore()
		logger.Fatal("opening session", zap.String("profile", name), zap.Error(err))
	}

	color := !*noColor && os.Getenv("NO_COLOR") == ""
	dispatcher := command.NewDispatcher(
		command.DefaultRegistry(),
		sess,
		render.New(cat, policy, color),
		logger,
	)
	logger.Debug("planner ready", zap.Duration("startup", time.Since(start)))

	if args := flag.Args(); len(args) > 0 {
		lc.Add("command", &lifecycle.FuncService{StartFn: func() error {
			out, err := dispatcher.Execute(ctx, strings.Join(args, " "))
			fmt.Fprint(os.Stdout, out)
			if errors.Is(err, command.ErrQuit) {
				return nil
			}
			return err
		}})
	} else {
		replCtx, stop := context.WithCancel(ctx)
		lc.Add("prompt", &lifecycle.FuncService{
			StartFn: func() error { return repl(replCtx, dispatcher, os.Stdin, os.Stdout) },
			StopFn:  stop,
		})
	}

	if err := lc.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", errors.Unwrap(err))
		logger.Sync()
		os.Exit(1)
	}
}

// openStore builds the state and plan stores for the configured backend. The
// returned close function releases backend resources.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (session.StateStore, session.PlanStore, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		store, err := file.NewStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("file storage ready", zap.String("dir", store.Dir()))
		return store, store, func() {}, nil

	case config.BackendPostgres:
		dbStart := time.Now()
		version, err := postgres.MigrateUp(cfg.Database.DSN())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("migrating schema: %w", err)
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Uint("schema_version", version),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		return pool.States(), pool.Plans(), pool.Close, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// repl reads command lines from in until EOF or quit.
func repl(ctx context.Context, d *command.Dispatcher, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Type help for a list of commands.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		text, err := d.Execute(ctx, scanner.Text())
		if errors.Is(err, command.ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprint(out, text)
	}
}
