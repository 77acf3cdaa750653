package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/onegotchi/arena/internal/frontend/telnet"
	"github.com/onegotchi/arena/internal/game/arena"
	"github.com/onegotchi/arena/internal/game/battle"
	"github.com/onegotchi/arena/internal/game/pet"
	"github.com/onegotchi/arena/internal/storage/postgres"
)

const (
	barWidth = 20
	// Health below criticalHealth is drawn red, below lowHealth yellow.
	criticalHealth = 30
	lowHealth      = 50
)

// HealthColor returns the bar color for hp.
func HealthColor(hp int) string {
	switch {
	case hp < criticalHealth:
		return telnet.BrightRed
	case hp < lowHealth:
		return telnet.BrightYellow
	default:
		return telnet.BrightGreen
	}
}

// HealthBar renders hp out of battle.StartingHealth as a fixed-width bar.
func HealthBar(hp int) string {
	hp = max(0, min(hp, battle.StartingHealth))
	filled := hp * barWidth / battle.StartingHealth
	if hp > 0 && filled == 0 {
		filled = 1
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return telnet.Colorize(HealthColor(hp), bar) + fmt.Sprintf(" %3d/%d", hp, battle.StartingHealth)
}

func stageColor(s battle.Stage) string {
	switch s.Normalized() {
	case battle.StageBaby:
		return telnet.BrightCyan
	case battle.StageTeen:
		return telnet.BrightMagenta
	case battle.StageAdult:
		return telnet.BrightYellow
	default:
		return telnet.White
	}
}

// RenderPetCard renders one numbered pet line. Opponent cards summarize
// strength as a single power figure; the trainer's own cards show ATK and DEF.
func RenderPetCard(idx int, p pet.Pet, opponent bool, now time.Time) string {
	badge := telnet.Colorf(stageColor(battle.Stage(p.Stage)), "[%s]", p.Badge())
	line := fmt.Sprintf("  %2d. %s %s  fed %3d  happy %3d  age %s",
		idx, telnet.PadRight(telnet.Colorize(telnet.BrightWhite, p.Name), 16), telnet.PadRight(badge, 7),
		p.Fed(), p.Happiness, formatAge(p.AgeAt(now)))
	if opponent {
		return line + telnet.Colorf(telnet.Red, "  power %d", p.Power())
	}
	return line + telnet.Colorf(telnet.Cyan, "  ATK %d DEF %d", p.Power(), p.Defense())
}

// RenderPetList renders a numbered list under title.
func RenderPetList(title string, pets []pet.Pet, opponent bool, now time.Time) []string {
	lines := []string{telnet.Colorize(telnet.Bold+telnet.Cyan, title)}
	if len(pets) == 0 {
		return append(lines, telnet.Colorize(telnet.Dim, "  (no pets)"))
	}
	for i, p := range pets {
		lines = append(lines, RenderPetCard(i+1, p, opponent, now))
	}
	return lines
}

func formatAge(d time.Duration) string {
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	case d >= time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	}
}

// RenderStatus renders both combatants with health bars.
func RenderStatus(self, opponent battle.Combatant, st battle.State) []string {
	turn := "Your turn! Type " + telnet.Colorize(telnet.Green, "attack") + "."
	switch {
	case st.Finished:
		turn = telnet.Colorize(telnet.Dim, "The battle is over.")
	case st.Turn == battle.SideOpponent:
		turn = telnet.Colorf(telnet.Yellow, "%s is attacking...", opponent.Name)
	}
	return []string{
		fmt.Sprintf("  %s %s", telnet.PadRight(telnet.Colorize(telnet.BrightWhite, self.Name), 16), HealthBar(st.SelfHealth)),
		fmt.Sprintf("  %s %s", telnet.PadRight(telnet.Colorize(telnet.BrightRed, opponent.Name), 16), HealthBar(st.OpponentHealth)),
		"  " + turn,
	}
}

// RenderEntry renders one log entry.
func RenderEntry(e battle.LogEntry) string {
	switch e.Kind {
	case battle.EntryStart:
		return telnet.Colorize(telnet.Bold+telnet.BrightYellow, e.Message)
	case battle.EntryResult:
		return telnet.Colorize(telnet.Bold+telnet.BrightCyan, e.Message)
	}
	color := telnet.White
	if e.Attacker == battle.SideOpponent {
		color = telnet.Red
	}
	return telnet.Colorize(color, e.Message)
}

// RenderTurn renders a resolved attack followed by both health bars.
func RenderTurn(self, opponent battle.Combatant, ev arena.TurnEvent) []string {
	lines := []string{RenderEntry(ev.Entry)}
	lines = append(lines, RenderStatus(self, opponent, ev.State)[:2]...)
	if ev.Result != nil {
		lines = append(lines, RenderEntry(*ev.Result))
	}
	return lines
}

// RenderResult renders the finish summary.
func RenderResult(r arena.MatchResult) []string {
	var lines []string
	if r.SelfWon() {
		lines = append(lines, telnet.Colorf(telnet.Bold+telnet.BrightGreen, "*** VICTORY in %d rounds ***", r.Rounds))
	} else {
		lines = append(lines, telnet.Colorf(telnet.Bold+telnet.BrightRed, "*** DEFEAT after %d rounds ***", r.Rounds))
	}
	if r.Reward != "" {
		lines = append(lines, telnet.Colorize(telnet.BrightYellow, "Reward: "+r.Reward))
	}
	if r.Epilogue != "" {
		lines = append(lines, telnet.Colorf(telnet.Magenta, "%s: \"%s\"", r.Self.Name, r.Epilogue))
	}
	lines = append(lines, "Type "+telnet.Colorize(telnet.Green, "fight")+" for a rematch or "+
		telnet.Colorize(telnet.Green, "back")+" to choose again.")
	return lines
}

// RenderHistory renders a trainer's record and recent battles.
func RenderHistory(rec postgres.Record, battles []postgres.BattleRecord) []string {
	lines := []string{telnet.Colorf(telnet.Bold+telnet.Cyan, "Record: %d wins, %d losses", rec.Wins, rec.Losses)}
	if len(battles) == 0 {
		return append(lines, telnet.Colorize(telnet.Dim, "  No battles yet."))
	}
	for _, b := range battles {
		outcome := telnet.Colorize(telnet.BrightGreen, "WIN ")
		if !b.SelfWon() {
			outcome = telnet.Colorize(telnet.BrightRed, "LOSS")
		}
		line := fmt.Sprintf("  %s  %s %s vs %s  %d rounds",
			b.FinishedAt.UTC().Format("2006-01-02 15:04"), outcome, b.SelfName, b.OpponentName, b.Rounds)
		if b.Reward != "" {
			line += telnet.Colorize(telnet.Yellow, "  "+b.Reward)
		}
		lines = append(lines, line)
	}
	return lines
}
