package pet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotOwner is returned when a trainer tends a pet they do not own.
	ErrNotOwner = errors.New("pet belongs to another trainer")
	// ErrCannotEvolve is returned when evolving a pet whose stats are too low
	// or that is already an adult.
	ErrCannotEvolve = errors.New("pet cannot evolve yet")
)

// Care is a trainer interaction that changes a pet's stats.
type Care int

const (
	CareFeed Care = iota
	CarePlay
	CareEvolve
)

const (
	feedHunger     = 30
	feedHappiness  = 5
	playHappiness  = 15
	playHunger     = 10
	evolveMinHappy = 70
	// evolveMaxHunger is exclusive.
	evolveMaxHunger = 30
	maxStage        = 3
)

func (c Care) String() string {
	switch c {
	case CareFeed:
		return "feed"
	case CarePlay:
		return "play"
	case CareEvolve:
		return "evolve"
	default:
		return fmt.Sprintf("care(%d)", int(c))
	}
}

// ParseCare maps a command word to a Care action.
func ParseCare(s string) (Care, bool) {
	switch strings.ToLower(s) {
	case "feed":
		return CareFeed, true
	case "play":
		return CarePlay, true
	case "evolve":
		return CareEvolve, true
	}
	return 0, false
}

func clampStat(v int) int {
	return min(max(v, 0), 100)
}

// CanEvolve reports whether p is happy and fed enough to reach the next stage.
func (p Pet) CanEvolve() bool {
	return p.Stage < maxStage && p.Happiness >= evolveMinHappy && p.Hunger < evolveMaxHunger
}

// Apply returns p after action c. Feeding lowers hunger by 30 and cheers the
// pet a little; playing raises happiness by 15 and makes it hungrier by 10;
// evolving advances one stage and requires CanEvolve.
//
// Postcondition: hunger and happiness stay within [0,100]; on error p is
// returned unchanged.
func (p Pet) Apply(c Care) (Pet, error) {
	switch c {
	case CareFeed:
		p.Hunger = clampStat(p.Hunger - feedHunger)
		p.Happiness = clampStat(p.Happiness + feedHappiness)
	case CarePlay:
		p.Happiness = clampStat(p.Happiness + playHappiness)
		p.Hunger = clampStat(p.Hunger + playHunger)
	case CareEvolve:
		if !p.CanEvolve() {
			return p, fmt.Errorf("%w: %s needs happiness %d+ and hunger below %d",
				ErrCannotEvolve, p.Name, evolveMinHappy, evolveMaxHunger)
		}
		p.Stage++
	default:
		return p, fmt.Errorf("unknown care action %d", int(c))
	}
	return p, nil
}

// Tend checks that owner owns p and applies c. Registry implementations call
// it inside their read-modify-write step.
func Tend(p Pet, owner string, c Care) (Pet, error) {
	if p.Owner != NormalizeOwner(owner) {
		return Pet{}, fmt.Errorf("%w: %q", ErrNotOwner, p.ID)
	}
	return p.Apply(c)
}
