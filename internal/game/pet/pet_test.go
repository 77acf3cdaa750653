package pet_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/onegotchi/arena/internal/game/battle"
	"github.com/onegotchi/arena/internal/game/pet"
)

func validPet() pet.Pet {
	return pet.Pet{
		ID:        "0xpet1",
		Owner:     "0xabc",
		Name:      "Sparky",
		Hunger:    20,
		Happiness: 80,
		Stage:     2,
		BirthMs:   1_700_000_000_000,
	}
}

func TestPet_Validate(t *testing.T) {
	assert.NoError(t, validPet().Validate())

	p := validPet()
	p.Happiness = 101
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "happiness")

	p = validPet()
	p.Stage = 4
	p.Name = ""
	err = p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage")
	assert.Contains(t, err.Error(), "name")
}

func TestPet_Property_InRangeAlwaysValid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := validPet()
		p.Hunger = rapid.IntRange(0, 100).Draw(rt, "hunger")
		p.Happiness = rapid.IntRange(0, 100).Draw(rt, "happiness")
		p.Stage = rapid.IntRange(0, 3).Draw(rt, "stage")
		assert.NoError(rt, p.Validate())
	})
}

func TestPet_Property_OutOfRangeRejected(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := validPet()
		p.Hunger = rapid.OneOf(rapid.IntRange(-500, -1), rapid.IntRange(101, 500)).Draw(rt, "hunger")
		assert.Error(rt, p.Validate())
	})
}

func TestPet_Combatant(t *testing.T) {
	c := validPet().Combatant()
	assert.Equal(t, battle.Combatant{ID: "0xpet1", Name: "Sparky", Hunger: 20, Happiness: 80, Stage: battle.StageTeen}, c)
}

func TestPet_DisplayHelpers(t *testing.T) {
	p := validPet()
	assert.Equal(t, "TEEN", p.Badge())
	assert.Equal(t, "Teen", p.StageName())
	assert.Equal(t, 80, p.Fed())
	assert.Equal(t, 20+40+20+10, p.Power())
	assert.Equal(t, 10+16+6, p.Defense())

	birth := time.UnixMilli(p.BirthMs)
	assert.Equal(t, 2*time.Hour, p.AgeAt(birth.Add(2*time.Hour)))
	assert.Equal(t, time.Duration(0), p.AgeAt(birth.Add(-time.Hour)))
}

func TestMemoryRegistry(t *testing.T) {
	ctx := context.Background()
	a := validPet()
	b := validPet()
	b.ID, b.Name = "0xpet2", "Blob"
	c := validPet()
	c.ID, c.Owner = "0xpet3", "0xDEF"

	reg, err := pet.NewMemoryRegistry(a, b, c)
	require.NoError(t, err)

	mine, err := reg.ListByOwner(ctx, " 0xABC ")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Blob", mine[0].Name)
	assert.Equal(t, "Sparky", mine[1].Name)

	got, err := reg.Get(ctx, "0xpet3")
	require.NoError(t, err)
	assert.Equal(t, "0xdef", got.Owner)

	_, err = reg.Get(ctx, "missing")
	assert.ErrorIs(t, err, pet.ErrPetNotFound)

	_, err = reg.Create(ctx, a)
	assert.ErrorIs(t, err, pet.ErrPetExists)

	none, err := reg.ListByOwner(ctx, "0xnobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	assert.Len(t, reg.All(), 3)
}

func TestNewMemoryRegistry_RejectsInvalid(t *testing.T) {
	bad := validPet()
	bad.Stage = 9
	_, err := pet.NewMemoryRegistry(bad)
	assert.Error(t, err)
}

func TestValidAddress(t *testing.T) {
	assert.NoError(t, pet.ValidAddress("0x71C7656EC7ab88b098defB751B7401B5f6d8976F"))
	assert.NoError(t, pet.ValidAddress(" 0x71c7656ec7ab88b098defb751b7401b5f6d8976f "))
	for _, bad := range []string{"", "0x", "71C7656EC7ab88b098defB751B7401B5f6d8976F", "0x71C7656EC7ab88b098defB751B7401B5f6d8976", "0xZZC7656EC7ab88b098defB751B7401B5f6d8976F"} {
		assert.Error(t, pet.ValidAddress(bad), bad)
	}
}
