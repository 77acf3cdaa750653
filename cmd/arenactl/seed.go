package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/onegotchi/arena/internal/game/pet"
	"github.com/onegotchi/arena/internal/storage/postgres"
)

func newSeedCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <roster.yaml>",
		Short: "Insert or update every roster pet in the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, flags, args[0])
		},
	}
}

func runSeed(cmd *cobra.Command, flags *rootFlags, rosterPath string) error {
	start := time.Now()
	pets, err := pet.LoadRoster(rosterPath)
	if err != nil {
		return newCommandError("seed", "loading roster", err, "Check the roster path.")
	}

	e, err := openEnv(cmd.Context(), flags)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := postgres.NewPetRepository(e.pool.DB()).Upsert(cmd.Context(), pets); err != nil {
		return newCommandError("seed", "writing pets", err, "Run the migrate command first.")
	}
	e.logger.Info("roster seeded",
		zap.String("roster", rosterPath),
		zap.Int("pets", len(pets)),
		zap.Duration("elapsed", time.Since(start)),
	)
	fmt.Fprintln(cmd.OutOrStdout(), winStyle.Render(fmt.Sprintf("seeded %d pets", len(pets))))
	return nil
}
