package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/onegotchi/arena/internal/config"
	"github.com/onegotchi/arena/internal/observability"
	"github.com/onegotchi/arena/internal/storage/postgres"
)

type rootFlags struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "arenactl",
		Short:         "arenactl inspects and seeds the OneGotchi battle arena",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "configs/dev.yaml", "path to configuration file")

	cmd.AddCommand(newSimulateCmd())
	cmd.AddCommand(newSeedCmd(flags))
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newRecordCmd(flags))

	return cmd
}

// env is the database-backed context shared by seed and record.
type env struct {
	cfg    config.Config
	logger *zap.Logger
	pool   *postgres.Pool
}

func openEnv(ctx context.Context, flags *rootFlags) (*env, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, newCommandError("load configuration", flags.configPath, err, "Check the --config path and ARENA_* environment overrides.")
	}
	logger, err := observability.NewLogger(cfg.Logging, "arenactl")
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, newCommandError("connect to database", cfg.Database.Host, err, "Ensure PostgreSQL is running and migrations are applied.")
	}
	return &env{cfg: cfg, logger: logger, pool: pool}, nil
}

func (e *env) Close() {
	e.pool.Close()
	_ = e.logger.Sync()
}

type commandError struct {
	operation  string
	context    string
	cause      error
	suggestion string
}

func newCommandError(operation, context string, cause error, suggestion string) error {
	return &commandError{operation: operation, context: context, cause: cause, suggestion: suggestion}
}

func (e *commandError) Error() string {
	return fmt.Sprintf("Failed to %s: %s\n\nError: %v\n\nSuggestion: %s", e.operation, e.context, e.cause, e.suggestion)
}

func (e *commandError) Unwrap() error { return e.cause }
