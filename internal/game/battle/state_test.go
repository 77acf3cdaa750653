package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/onegotchi/arena/internal/game/battle"
)

var (
	sparky = battle.Combatant{ID: "a", Name: "Sparky", Hunger: 50, Happiness: 50, Stage: battle.StageBaby}
	blob   = battle.Combatant{ID: "b", Name: "Blob", Hunger: 50, Happiness: 50, Stage: battle.StageBaby}
)

func TestStart(t *testing.T) {
	s := battle.Start(sparky, blob)
	assert.Equal(t, 100, s.SelfHealth)
	assert.Equal(t, 100, s.OpponentHealth)
	assert.Equal(t, battle.SideSelf, s.Turn)
	assert.False(t, s.Finished)
	assert.Equal(t, battle.SideNone, s.Winner)
	require.Len(t, s.Log, 1)
	assert.Equal(t, battle.EntryStart, s.Log[0].Kind)
	assert.Equal(t, 0, s.Log[0].Round)
	assert.Equal(t, "Battle start! Sparky vs Blob!", s.Log[0].Message)
	assert.Equal(t, battle.PhaseInProgress, s.Phase())
}

func TestZeroState_IsNotStarted(t *testing.T) {
	var s battle.State
	assert.Equal(t, battle.PhaseNotStarted, s.Phase())
	assert.Equal(t, s, battle.ExecuteTurn(s, sparky, blob))
}

func TestExecuteTurn_FirstTurn(t *testing.T) {
	s := battle.ExecuteTurn(battle.Start(sparky, blob), sparky, blob)
	assert.Equal(t, 100, s.SelfHealth)
	assert.Equal(t, 70, s.OpponentHealth)
	assert.Equal(t, battle.SideOpponent, s.Turn)
	require.Len(t, s.Log, 2)

	e := s.Log[1]
	assert.Equal(t, 1, e.Round)
	assert.Equal(t, battle.EntryAttack, e.Kind)
	assert.Equal(t, battle.SideSelf, e.Attacker)
	assert.Equal(t, "Sparky attacks Blob!\n62 ATK - 23 DEF = 30 damage dealt!", e.Message)
	assert.Equal(t, 100, e.SelfHealth)
	assert.Equal(t, 70, e.OpponentHealth)
}

func TestExecuteTurn_DoesNotMutateInput(t *testing.T) {
	start := battle.Start(sparky, blob)
	_ = battle.ExecuteTurn(start, sparky, blob)
	assert.Len(t, start.Log, 1)
	assert.Equal(t, 100, start.OpponentHealth)
	assert.Equal(t, battle.SideSelf, start.Turn)
}

func TestExecuteTurn_IdenticalTwinsFinishOnFourthSelfTurn(t *testing.T) {
	s := battle.Start(sparky, blob)
	var selfTurns int
	for !s.Finished {
		if s.Turn == battle.SideSelf {
			selfTurns++
		}
		s = battle.ExecuteTurn(s, sparky, blob)
	}
	assert.Equal(t, 4, selfTurns)
	assert.Equal(t, battle.SideSelf, s.Winner)
	assert.Equal(t, 0, s.OpponentHealth)
	assert.Equal(t, 10, s.SelfHealth)
	assert.Equal(t, 7, s.Rounds())

	require.Len(t, s.Log, 9)
	knockout := s.Log[7]
	assert.Contains(t, knockout.Message, "KNOCKOUT! Blob is defeated!")
	last := s.Log[8]
	assert.Equal(t, battle.EntryResult, last.Kind)
	assert.Equal(t, 8, last.Round)
	assert.Equal(t, "Victory! Sparky defeated Blob!", last.Message)
}

func TestExecuteTurn_OpponentWins(t *testing.T) {
	weak := battle.Combatant{Name: "Pebble", Hunger: 100, Happiness: 0, Stage: battle.StageEgg}
	strong := battle.Combatant{Name: "Drake", Hunger: 0, Happiness: 100, Stage: battle.StageAdult}

	s := battle.Simulate(weak, strong)
	require.True(t, s.Finished)
	assert.Equal(t, battle.SideOpponent, s.Winner)
	assert.Equal(t, 0, s.SelfHealth)
	assert.Equal(t, 90, s.OpponentHealth)
	assert.Equal(t, "Pebble has been defeated! Drake wins!", s.Log[len(s.Log)-1].Message)
}

func TestExecuteTurn_FinishedStateUnchanged(t *testing.T) {
	s := battle.Simulate(sparky, blob)
	require.True(t, s.Finished)
	again := battle.ExecuteTurn(s, sparky, blob)
	assert.Equal(t, s, again)
}

func TestStart_ResetsAfterFinishedBattle(t *testing.T) {
	finished := battle.Simulate(sparky, blob)
	require.True(t, finished.Finished)
	fresh := battle.Start(sparky, blob)
	assert.Equal(t, 100, fresh.SelfHealth)
	assert.Equal(t, 100, fresh.OpponentHealth)
	assert.Len(t, fresh.Log, 1)
	assert.False(t, fresh.Finished)
}

func TestExecuteTurn_Property_Deterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		self := drawCombatant(rt, "self")
		opp := drawCombatant(rt, "opp")
		turns := rapid.IntRange(0, 10).Draw(rt, "turns")
		s := battle.Start(self, opp)
		for i := 0; i < turns; i++ {
			s = battle.ExecuteTurn(s, self, opp)
		}
		a := battle.ExecuteTurn(s, self, opp)
		b := battle.ExecuteTurn(s, self, opp)
		assert.Equal(rt, a, b)
	})
}

func TestExecuteTurn_Property_TerminatesWithinMaxTurns(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		self := drawCombatant(rt, "self")
		opp := drawCombatant(rt, "opp")
		s := battle.Start(self, opp)
		turns := 0
		for !s.Finished {
			s = battle.ExecuteTurn(s, self, opp)
			turns++
			if turns > battle.MaxTurns {
				rt.Fatalf("battle did not finish within %d turns", battle.MaxTurns)
			}
		}
		assert.NotEqual(rt, battle.SideNone, s.Winner)
		assert.Greater(rt, s.Health(s.Winner), 0)
		assert.Equal(rt, 0, s.Health(s.Winner.Other()))
	})
}

func TestExecuteTurn_Property_HealthMonotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		self := drawCombatant(rt, "self")
		opp := drawCombatant(rt, "opp")
		s := battle.Start(self, opp)
		for !s.Finished {
			defender := s.Turn.Other()
			before := s.Health(defender)
			attackerBefore := s.Health(s.Turn)
			attacker := s.Turn
			s = battle.ExecuteTurn(s, self, opp)
			assert.LessOrEqual(rt, s.Health(defender), before)
			assert.GreaterOrEqual(rt, s.Health(defender), 0)
			assert.Equal(rt, attackerBefore, s.Health(attacker))
		}
	})
}

func TestExecuteTurn_Property_LogRoundsMatchIndex(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := battle.Simulate(drawCombatant(rt, "self"), drawCombatant(rt, "opp"))
		for i, e := range s.Log {
			assert.Equal(rt, i, e.Round)
		}
	})
}
