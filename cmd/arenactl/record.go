package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onegotchi/arena/internal/game/pet"
	"github.com/onegotchi/arena/internal/storage/postgres"
)

type recordOptions struct {
	limit int
}

func newRecordCmd(flags *rootFlags) *cobra.Command {
	opts := &recordOptions{}

	cmd := &cobra.Command{
		Use:   "record <address>",
		Short: "Show a trainer's win/loss record and recent battles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd, flags, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.limit, "limit", 10, "number of recent battles to show")

	return cmd
}

func runRecord(cmd *cobra.Command, flags *rootFlags, address string, opts *recordOptions) error {
	if err := pet.ValidAddress(address); err != nil {
		return newCommandError("show record", "validating address", err, "Pass a 0x-prefixed 40 hex digit wallet address.")
	}

	e, err := openEnv(cmd.Context(), flags)
	if err != nil {
		return err
	}
	defer e.Close()

	repo := postgres.NewBattleRepository(e.pool.DB())
	rec, err := repo.RecordFor(cmd.Context(), address)
	if err != nil {
		return newCommandError("show record", "loading record", err, "Ensure migrations are applied.")
	}
	battles, err := repo.ListRecentByTrainer(cmd.Context(), address, opts.limit)
	if err != nil {
		return newCommandError("show record", "loading battles", err, "Ensure migrations are applied.")
	}
	renderRecord(cmd, pet.NormalizeOwner(address), rec, battles)
	return nil
}

func renderRecord(cmd *cobra.Command, address string, rec postgres.Record, battles []postgres.BattleRecord) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("Trainer "+address))
	fmt.Fprintf(out, "Wins: %d  Losses: %d  Total: %d\n", rec.Wins, rec.Losses, rec.Total())
	if len(battles) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("no battles recorded"))
		return
	}
	for _, b := range battles {
		outcome := winStyle.Render("WIN ")
		if !b.SelfWon() {
			outcome = lossStyle.Render("LOSS")
		}
		fmt.Fprintf(out, "%s  %s  %s vs %s  %d rounds", b.FinishedAt.UTC().Format("2006-01-02 15:04"), outcome, b.SelfName, b.OpponentName, b.Rounds)
		if b.Reward != "" {
			fmt.Fprint(out, "  "+rewardStyle.Render(b.Reward))
		}
		fmt.Fprintln(out)
	}
}
