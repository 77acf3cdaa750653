// Package battle implements the deterministic turn-based battle resolver for
// OneGotchi pets. It holds no state between calls: every operation takes the
// caller-owned State and combatant snapshots and returns the next State.
package battle

// Stage is a pet's evolution tier.
type Stage int

const (
	StageEgg Stage = iota
	StageBaby
	StageTeen
	StageAdult
)

// Valid reports whether s is one of the four known stages.
func (s Stage) Valid() bool { return s >= StageEgg && s <= StageAdult }

// Normalized maps an unknown stage to StageEgg.
func (s Stage) Normalized() Stage {
	if !s.Valid() {
		return StageEgg
	}
	return s
}

// String returns the upper-case badge label for the stage.
func (s Stage) String() string {
	switch s {
	case StageEgg:
		return "EGG"
	case StageBaby:
		return "BABY"
	case StageTeen:
		return "TEEN"
	case StageAdult:
		return "ADULT"
	default:
		return "UNKNOWN"
	}
}

// Side identifies one of the two parties in a battle.
// The zero value SideNone is used for "no winner yet".
type Side int

const (
	SideNone Side = iota
	SideSelf
	SideOpponent
)

// Other returns the opposing side. SideNone maps to itself.
func (s Side) Other() Side {
	switch s {
	case SideSelf:
		return SideOpponent
	case SideOpponent:
		return SideSelf
	default:
		return SideNone
	}
}

// String returns a human-readable side label.
func (s Side) String() string {
	switch s {
	case SideSelf:
		return "self"
	case SideOpponent:
		return "opponent"
	default:
		return "none"
	}
}

// Combatant is an immutable snapshot of a pet taken when a battle starts.
type Combatant struct {
	ID        string
	Name      string
	Hunger    int // 0 = fully fed
	Happiness int
	Stage     Stage
}

// Normalized returns a copy of c with every stat forced into its legal range:
// hunger and happiness are clamped into [0,100] and an unknown stage becomes
// StageEgg.
//
// Postcondition: the returned Combatant satisfies 0 <= Hunger, Happiness <= 100
// and Stage.Valid().
func (c Combatant) Normalized() Combatant {
	c.Hunger = clamp(c.Hunger, 0, MaxStat)
	c.Happiness = clamp(c.Happiness, 0, MaxStat)
	c.Stage = c.Stage.Normalized()
	return c
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
