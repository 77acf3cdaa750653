package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/onegotchi/arena/internal/game/pet"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <roster.yaml>",
		Short: "Print the attack and defense table of a roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pets, err := pet.LoadRoster(args[0])
			if err != nil {
				return newCommandError("show stats", "loading roster", err, "Check the roster path.")
			}
			pet.SortByName(pets)
			fmt.Fprintln(cmd.OutOrStdout(), renderStatsTable(pets))
			return nil
		},
	}
}

var headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)

func renderStatsTable(pets []pet.Pet) string {
	const row = "%-12s %-6s %4s %5s %4s %4s %-12s"
	lines := []string{headerStyle.Render(fmt.Sprintf(row, "NAME", "STAGE", "FED", "HAPPY", "ATK", "DEF", "OWNER"))}
	for _, p := range pets {
		lines = append(lines, fmt.Sprintf(row,
			p.Name, p.StageName(),
			fmt.Sprint(p.Fed()), fmt.Sprint(p.Happiness),
			fmt.Sprint(p.Power()), fmt.Sprint(p.Defense()),
			p.Owner[:min(len(p.Owner), 12)],
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
