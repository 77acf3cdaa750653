package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/onegotchi/arena/internal/game/arena"
)

// RewardHookName is the Lua global called after every finished battle.
const RewardHookName = "battle_reward"

// RewardHook adapts a Manager to arena.RewardHook. The script receives one
// table:
//
//	{ winner, loser, winner_stage, loser_stage, rounds,
//	  self_won, self_health, opponent_health, trainer }
//
// and may return a string reward line; any other return means no reward.
type RewardHook struct {
	m *Manager
}

// NewRewardHook wraps m.
func NewRewardHook(m *Manager) *RewardHook {
	return &RewardHook{m: m}
}

var _ arena.RewardHook = (*RewardHook)(nil)

// Reward implements arena.RewardHook.
func (h *RewardHook) Reward(r arena.MatchResult) (string, error) {
	ret, err := h.m.CallHookWith(RewardHookName, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{resultTable(L, r)}
	})
	if err != nil {
		return "", err
	}
	if s, ok := ret.(lua.LString); ok {
		return string(s), nil
	}
	return "", nil
}

func resultTable(L *lua.LState, r arena.MatchResult) *lua.LTable {
	winnerStage, loserStage := r.Self.Stage, r.Opponent.Stage
	if !r.SelfWon() {
		winnerStage, loserStage = loserStage, winnerStage
	}
	t := L.CreateTable(0, 9)
	t.RawSetString("winner", lua.LString(r.WinnerName()))
	t.RawSetString("loser", lua.LString(r.LoserName()))
	t.RawSetString("winner_stage", lua.LNumber(winnerStage.Normalized()))
	t.RawSetString("loser_stage", lua.LNumber(loserStage.Normalized()))
	t.RawSetString("rounds", lua.LNumber(r.Rounds))
	t.RawSetString("self_won", lua.LBool(r.SelfWon()))
	t.RawSetString("self_health", lua.LNumber(r.SelfHealth))
	t.RawSetString("opponent_health", lua.LNumber(r.OppHealth))
	t.RawSetString("trainer", lua.LString(r.Trainer))
	return t
}
