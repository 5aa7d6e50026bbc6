package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/joho/godotenv/autoload"

	"github.com/sandeepkv93/taskboard/internal/api"
	"github.com/sandeepkv93/taskboard/internal/config"
	"github.com/sandeepkv93/taskboard/internal/logging"
	"github.com/sandeepkv93/taskboard/internal/model"
	"github.com/sandeepkv93/taskboard/internal/scheduler"
	"github.com/sandeepkv93/taskboard/internal/session"
	"github.com/sandeepkv93/taskboard/internal/storage"
	"github.com/sandeepkv93/taskboard/internal/tasks"
	"github.com/sandeepkv93/taskboard/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskboard failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.EnsureStateDir(); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	logger, logCloser, err := logging.Open(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	repo, err := storage.OpenSQLite(cfg.StatePath())
	if err != nil {
		return err
	}
	defer repo.Close()

	// The auth endpoints never carry a token, so the session store gets a
	// client of its own and the task client reads tokens from the store.
	authClient, err := api.New(cfg.APIBaseURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithRateLimit(cfg.RequestsPerSecond),
		api.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	store := session.NewStore(repo, authClient, logger)

	taskClient, err := api.New(cfg.APIBaseURL,
		api.WithTokenSource(store),
		api.WithTimeout(cfg.RequestTimeout),
		api.WithRateLimit(cfg.RequestsPerSecond),
		api.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx := context.Background()
	query := tasks.NewQueryEngine(taskClient,
		tasks.WithPageSize(cfg.PageSize),
		tasks.WithDefaultSort(model.SortKey(cfg.DefaultSort)),
		tasks.WithTeardown(func() { _ = store.Logout(ctx) }),
		tasks.WithQueryLogger(logger),
	)
	mutation := tasks.NewMutationEngine(taskClient, query,
		tasks.WithConcurrency(cfg.BulkConcurrency),
		tasks.WithMutationLogger(logger),
	)

	deadlines := scheduler.NewEngine(8)
	deadlines.Start()
	defer deadlines.Stop()

	logger.Info().Str("api", cfg.APIBaseURL).Int("page_size", cfg.PageSize).Msg("starting")
	program := tea.NewProgram(update.New(update.Deps{
		Session:       store,
		Query:         query,
		Mutation:      mutation,
		Repo:          repo,
		Scheduler:     deadlines,
		Logger:        logger,
		ToastDuration: cfg.ToastDuration,
	}), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
