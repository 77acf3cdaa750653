// Package pet models OneGotchi pets as read from the pet registry and converts
// them into battle snapshots.
package pet

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/onegotchi/arena/internal/game/battle"
)

var (
	// ErrPetNotFound is returned when a pet lookup yields no results.
	ErrPetNotFound = errors.New("pet not found")
	// ErrPetExists is returned when creating a pet whose ID is taken.
	ErrPetExists = errors.New("pet already exists")
)

// Pet is a registry record for one pet.
type Pet struct {
	ID        string `json:"id" yaml:"id" validate:"required"`
	Owner     string `json:"owner" yaml:"owner" validate:"required"`
	Name      string `json:"name" yaml:"name" validate:"required,max=64"`
	Hunger    int    `json:"hunger" yaml:"hunger" validate:"gte=0,lte=100"`
	Happiness int    `json:"happiness" yaml:"happiness" validate:"gte=0,lte=100"`
	Stage     int    `json:"stage" yaml:"stage" validate:"gte=0,lte=3"`
	// BirthMs is the mint time in Unix milliseconds.
	BirthMs int64 `json:"birth_ms" yaml:"birth_ms" validate:"gte=0"`
}

var (
	validateOnce sync.Once
	validateInst *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// Validate checks the pet's field ranges.
//
// Postcondition: Returns nil iff every field is within range; otherwise one
// error naming every offending field.
func (p Pet) Validate() error {
	err := validatorInstance().Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating pet %q: %w", p.ID, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", strings.ToLower(fe.Field()), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid pet %q: %s", p.ID, strings.Join(msgs, "; "))
}

// ValidAddress checks that address is a 0x-prefixed 20-byte hex wallet address.
func ValidAddress(address string) error {
	if err := validatorInstance().Var(strings.TrimSpace(address), "required,eth_addr"); err != nil {
		return fmt.Errorf("invalid wallet address %q", address)
	}
	return nil
}

// Combatant returns the battle snapshot of p.
func (p Pet) Combatant() battle.Combatant {
	return battle.Combatant{
		ID:        p.ID,
		Name:      p.Name,
		Hunger:    p.Hunger,
		Happiness: p.Happiness,
		Stage:     battle.Stage(p.Stage),
	}
}

// Badge returns the stage label shown on pet cards.
func (p Pet) Badge() string { return battle.Stage(p.Stage).String() }

// StageName returns the title-case stage name, e.g. "Teen".
func (p Pet) StageName() string {
	b := p.Badge()
	return b[:1] + strings.ToLower(b[1:])
}

// Defense is the pet's defense power against any attacker.
func (p Pet) Defense() int { return battle.DefensePower(p.Combatant()) }

// Fed is the inverse of hunger, as displayed to trainers.
func (p Pet) Fed() int { return 100 - p.Hunger }

// Power is the single-number strength summary shown on opponent cards.
func (p Pet) Power() int { return battle.AttackPower(p.Combatant()) }

// AgeAt returns how long the pet has existed at now.
// A pet minted in the future has age zero.
func (p Pet) AgeAt(now time.Time) time.Duration {
	age := now.Sub(time.UnixMilli(p.BirthMs))
	if age < 0 {
		return 0
	}
	return age
}
