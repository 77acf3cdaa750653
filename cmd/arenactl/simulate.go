package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/onegotchi/arena/internal/game/arena"
	"github.com/onegotchi/arena/internal/game/battle"
	"github.com/onegotchi/arena/internal/game/pet"
	"github.com/onegotchi/arena/internal/scripting"
)

type simulateOptions struct {
	scriptDir  string
	jsonOutput bool
}

func newSimulateCmd() *cobra.Command {
	opts := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate <roster.yaml> <self-pet-id> <opponent-pet-id>",
		Short: "Fight two roster pets to completion and print the battle log",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, args[0], args[1], args[2], opts)
		},
	}

	cmd.Flags().StringVar(&opts.scriptDir, "scripts", "", "reward script directory; empty skips rewards")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "output the result as JSON")

	return cmd
}

// simulation is the JSON form of a simulated battle.
type simulation struct {
	Self     string            `json:"self"`
	Opponent string            `json:"opponent"`
	Winner   string            `json:"winner"`
	Rounds   int               `json:"rounds"`
	Reward   string            `json:"reward,omitempty"`
	Log      []battle.LogEntry `json:"log"`
}

func runSimulate(cmd *cobra.Command, rosterPath, selfID, oppID string, opts *simulateOptions) error {
	pets, err := pet.LoadRoster(rosterPath)
	if err != nil {
		return newCommandError("simulate", "loading roster", err, "Check the roster path.")
	}
	self, err := findPet(pets, selfID)
	if err != nil {
		return newCommandError("simulate", "selecting your pet", err, "Use a pet id from the roster.")
	}
	opp, err := findPet(pets, oppID)
	if err != nil {
		return newCommandError("simulate", "selecting the opponent", err, "Use a pet id from the roster.")
	}

	sc, oc := self.Combatant(), opp.Combatant()
	st := battle.Simulate(sc, oc)
	res := arena.MatchResult{
		Self:       sc,
		Opponent:   oc,
		Winner:     st.Winner,
		Rounds:     st.Rounds(),
		SelfHealth: st.SelfHealth,
		OppHealth:  st.OpponentHealth,
		Log:        st.Log,
	}

	if opts.scriptDir != "" {
		m := scripting.NewManager(zap.NewNop())
		defer m.Close()
		if err := m.LoadDir(opts.scriptDir, 0); err != nil {
			return newCommandError("simulate", "loading reward scripts", err, "Check the --scripts directory.")
		}
		if res.Reward, err = scripting.NewRewardHook(m).Reward(res); err != nil {
			return newCommandError("simulate", "running reward script", err, "Check the battle_reward function.")
		}
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(simulation{
			Self:     sc.Name,
			Opponent: oc.Name,
			Winner:   res.WinnerName(),
			Rounds:   res.Rounds,
			Reward:   res.Reward,
			Log:      st.Log,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cardStyle.Render(petSummary(self)+"\n"+petSummary(opp)))
	for _, e := range st.Log {
		fmt.Fprintln(out, entryStyle(e).Render(e.Message))
	}
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%d rounds, %s left at %d HP", res.Rounds, res.WinnerName(), max(res.SelfHealth, res.OppHealth))))
	if res.Reward != "" {
		fmt.Fprintln(out, rewardStyle.Render("Reward: "+res.Reward))
	}
	return nil
}

func findPet(pets []pet.Pet, id string) (pet.Pet, error) {
	for _, p := range pets {
		if p.ID == id {
			return p, nil
		}
	}
	return pet.Pet{}, fmt.Errorf("%w: %q", pet.ErrPetNotFound, id)
}

func petSummary(p pet.Pet) string {
	return strings.Join([]string{
		p.Name,
		"[" + p.Badge() + "]",
		fmt.Sprintf("fed %d", p.Fed()),
		fmt.Sprintf("happy %d", p.Happiness),
		fmt.Sprintf("power %d", p.Power()),
	}, "  ")
}
