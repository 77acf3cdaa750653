package battle

import "fmt"

// MaxTurns bounds the length of any battle: every turn deals at least
// MinDamage against a StartingHealth pool, so each side can act at most
// StartingHealth/MinDamage times.
const MaxTurns = 2 * StartingHealth / MinDamage

// EntryKind classifies a log entry.
type EntryKind int

const (
	EntryStart EntryKind = iota
	EntryAttack
	EntryResult
)

// LogEntry is one line of battle narration together with both sides' health
// after the event it describes.
type LogEntry struct {
	Round          int       `json:"round"`
	Kind           EntryKind `json:"kind"`
	Message        string    `json:"message"`
	SelfHealth     int       `json:"self_health"`
	OpponentHealth int       `json:"opponent_health"`
	// Attacker and Strike are set only for EntryAttack.
	Attacker Side   `json:"attacker,omitempty"`
	Strike   Strike `json:"strike,omitzero"`
}

// Phase is the coarse state-machine position of a battle.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseFinished
)

// String returns a human-readable phase label.
func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not started"
	case PhaseInProgress:
		return "in progress"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// State is the caller-owned record of one battle. The zero value is a battle
// that has not started.
type State struct {
	SelfHealth     int
	OpponentHealth int
	Turn           Side
	Log            []LogEntry
	Finished       bool
	// Winner is SideNone until Finished is true.
	Winner Side
}

// Phase derives the state-machine position from s.
func (s State) Phase() Phase {
	switch {
	case s.Finished:
		return PhaseFinished
	case len(s.Log) == 0:
		return PhaseNotStarted
	default:
		return PhaseInProgress
	}
}

// Health returns the current health of side.
func (s State) Health(side Side) int {
	switch side {
	case SideSelf:
		return s.SelfHealth
	case SideOpponent:
		return s.OpponentHealth
	default:
		return 0
	}
}

// Rounds returns the number of attack entries in the log.
func (s State) Rounds() int {
	n := 0
	for _, e := range s.Log {
		if e.Kind == EntryAttack {
			n++
		}
	}
	return n
}

// Start creates the state of a fresh battle between self and opponent.
//
// Postcondition: both healths are StartingHealth, Turn is SideSelf and the log
// holds exactly one EntryStart entry.
func Start(self, opponent Combatant) State {
	return State{
		SelfHealth:     StartingHealth,
		OpponentHealth: StartingHealth,
		Turn:           SideSelf,
		Log: []LogEntry{{
			Round:          0,
			Kind:           EntryStart,
			Message:        fmt.Sprintf("Battle start! %s vs %s!", self.Name, opponent.Name),
			SelfHealth:     StartingHealth,
			OpponentHealth: StartingHealth,
		}},
	}
}

// ExecuteTurn resolves one attack by the side whose turn it is and returns the
// resulting state. The input state is not modified. A state that has not
// started or has already finished is returned unchanged.
//
// Postcondition: the defending side's health is non-increasing and >= 0; on a
// lethal blow Finished is true and Winner is the attacking side, otherwise
// Turn has flipped.
func ExecuteTurn(s State, self, opponent Combatant) State {
	if s.Phase() != PhaseInProgress {
		return s
	}

	attackerSide := s.Turn
	if attackerSide != SideOpponent {
		attackerSide = SideSelf
	}
	attacker, defender := self, opponent
	if attackerSide == SideOpponent {
		attacker, defender = opponent, self
	}

	next := s
	next.Log = make([]LogEntry, len(s.Log), len(s.Log)+2)
	copy(next.Log, s.Log)

	strike := ResolveStrike(attacker, defender)
	if attackerSide == SideSelf {
		next.OpponentHealth = max(0, next.OpponentHealth-strike.Damage)
	} else {
		next.SelfHealth = max(0, next.SelfHealth-strike.Damage)
	}

	round := len(s.Log)
	knockout := next.SelfHealth == 0 || next.OpponentHealth == 0

	msg := fmt.Sprintf("%s attacks %s!\n%d ATK - %d DEF = %d damage dealt!",
		attacker.Name, defender.Name, strike.AttackPower, strike.DefensePower, strike.Damage)
	if knockout {
		msg += fmt.Sprintf("\nKNOCKOUT! %s is defeated!", defender.Name)
	}
	next.Log = append(next.Log, LogEntry{
		Round:          round,
		Kind:           EntryAttack,
		Message:        msg,
		SelfHealth:     next.SelfHealth,
		OpponentHealth: next.OpponentHealth,
		Attacker:       attackerSide,
		Strike:         strike,
	})

	if !knockout {
		next.Turn = attackerSide.Other()
		return next
	}

	next.Finished = true
	next.Winner = attackerSide
	var result string
	if attackerSide == SideSelf {
		result = fmt.Sprintf("Victory! %s defeated %s!", self.Name, opponent.Name)
	} else {
		result = fmt.Sprintf("%s has been defeated! %s wins!", self.Name, opponent.Name)
	}
	next.Log = append(next.Log, LogEntry{
		Round:          round + 1,
		Kind:           EntryResult,
		Message:        result,
		SelfHealth:     next.SelfHealth,
		OpponentHealth: next.OpponentHealth,
	})
	return next
}

// Simulate plays a whole battle from Start until it finishes.
//
// Postcondition: the returned state is finished after at most MaxTurns turns.
func Simulate(self, opponent Combatant) State {
	s := Start(self, opponent)
	for i := 0; i < MaxTurns && !s.Finished; i++ {
		s = ExecuteTurn(s, self, opponent)
	}
	return s
}
