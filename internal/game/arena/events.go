package arena

import (
	"context"
	"time"

	"github.com/onegotchi/arena/internal/game/battle"
)

// ScheduledTurn announces that side will act automatically at Due.
type ScheduledTurn struct {
	MatchID string
	Side    battle.Side
	// Round is the log index the scheduled attack will occupy.
	Round int
	Due   time.Time
}

// TurnEvent reports one resolved attack.
type TurnEvent struct {
	MatchID string
	Entry   battle.LogEntry
	// Result is the terminal log entry when this turn ended the battle.
	Result *battle.LogEntry
	State  battle.State
}

// MatchResult summarizes a finished battle.
type MatchResult struct {
	MatchID    string
	Trainer    string
	Self       battle.Combatant
	Opponent   battle.Combatant
	Winner     battle.Side
	Rounds     int
	SelfHealth int
	OppHealth  int
	Log        []battle.LogEntry
	StartedAt  time.Time
	FinishedAt time.Time
	// Reward and Epilogue are filled by the configured hooks; empty when absent.
	Reward   string
	Epilogue string
}

// SelfWon reports whether the trainer's pet won.
func (r MatchResult) SelfWon() bool { return r.Winner == battle.SideSelf }

// WinnerName returns the name of the winning pet.
func (r MatchResult) WinnerName() string {
	if r.SelfWon() {
		return r.Self.Name
	}
	return r.Opponent.Name
}

// LoserName returns the name of the losing pet.
func (r MatchResult) LoserName() string {
	if r.SelfWon() {
		return r.Opponent.Name
	}
	return r.Self.Name
}

// Listener receives asynchronous match notifications. Calls for one match are
// never concurrent with each other.
type Listener interface {
	OnScheduled(ScheduledTurn)
	OnTurn(TurnEvent)
	OnFinish(MatchResult)
}

// Recorder persists finished battles.
type Recorder interface {
	Record(ctx context.Context, r MatchResult) error
}

// RewardHook produces the reward line granted for a finished battle.
type RewardHook interface {
	Reward(r MatchResult) (string, error)
}

// Narrator produces a narrated epilogue for a finished battle.
type Narrator interface {
	Epilogue(ctx context.Context, r MatchResult) (string, error)
}

// RewardFunc adapts a function to RewardHook.
type RewardFunc func(r MatchResult) (string, error)

func (f RewardFunc) Reward(r MatchResult) (string, error) { return f(r) }

// NarrateFunc adapts a function to Narrator.
type NarrateFunc func(ctx context.Context, r MatchResult) (string, error)

func (f NarrateFunc) Epilogue(ctx context.Context, r MatchResult) (string, error) { return f(ctx, r) }

// NopListener ignores every notification.
type NopListener struct{}

func (NopListener) OnScheduled(ScheduledTurn) {}
func (NopListener) OnTurn(TurnEvent)          {}
func (NopListener) OnFinish(MatchResult)      {}
