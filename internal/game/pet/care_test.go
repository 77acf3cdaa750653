package pet_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/onegotchi/arena/internal/game/battle"
	"github.com/onegotchi/arena/internal/game/pet"
)

func TestApply_Feed(t *testing.T) {
	p := validPet()
	p.Hunger, p.Happiness = 50, 40

	fed, err := p.Apply(pet.CareFeed)
	require.NoError(t, err)
	assert.Equal(t, 20, fed.Hunger)
	assert.Equal(t, 45, fed.Happiness)
	assert.Equal(t, 50, p.Hunger, "receiver is not modified")

	fed, err = fed.Apply(pet.CareFeed)
	require.NoError(t, err)
	assert.Equal(t, 0, fed.Hunger)
}

func TestApply_Play(t *testing.T) {
	p := validPet()
	p.Hunger, p.Happiness = 95, 90

	played, err := p.Apply(pet.CarePlay)
	require.NoError(t, err)
	assert.Equal(t, 100, played.Hunger)
	assert.Equal(t, 100, played.Happiness)
}

func TestApply_Evolve(t *testing.T) {
	cases := []struct {
		name      string
		hunger    int
		happiness int
		stage     int
		ok        bool
	}{
		{"thriving baby", 10, 90, 1, true},
		{"threshold", 29, 70, 0, true},
		{"too hungry", 30, 90, 1, false},
		{"too sad", 0, 69, 2, false},
		{"already adult", 0, 100, 3, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			p := validPet()
			p.Hunger, p.Happiness, p.Stage = tc.hunger, tc.happiness, tc.stage
			assert.Equal(t, tc.ok, p.CanEvolve())

			got, err := p.Apply(pet.CareEvolve)
			if !tc.ok {
				assert.ErrorIs(t, err, pet.ErrCannotEvolve)
				assert.Equal(t, p, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.stage+1, got.Stage)
		})
	}
}

func TestApply_CareRaisesBattleStats(t *testing.T) {
	p := validPet()
	p.Hunger, p.Happiness, p.Stage = 60, 50, 1
	before := p.Power()

	fed, err := p.Apply(pet.CareFeed)
	require.NoError(t, err)
	assert.Greater(t, fed.Power(), before)

	played, err := p.Apply(pet.CarePlay)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, played.Defense(), p.Defense())
}

func TestParseCare(t *testing.T) {
	for _, c := range []pet.Care{pet.CareFeed, pet.CarePlay, pet.CareEvolve} {
		got, ok := pet.ParseCare(c.String())
		require.True(t, ok)
		assert.Equal(t, c, got)
	}
	_, ok := pet.ParseCare("pet")
	assert.False(t, ok)
	assert.Equal(t, "care(9)", pet.Care(9).String())
}

func TestApply_Property_StatsStayValid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := validPet()
		p.Hunger = rapid.IntRange(0, 100).Draw(rt, "hunger")
		p.Happiness = rapid.IntRange(0, 100).Draw(rt, "happiness")
		p.Stage = rapid.IntRange(0, 3).Draw(rt, "stage")
		actions := rapid.SliceOfN(rapid.IntRange(0, 2), 0, 20).Draw(rt, "actions")

		for _, a := range actions {
			next, err := p.Apply(pet.Care(a))
			if err != nil {
				if !assert.ErrorIs(rt, err, pet.ErrCannotEvolve) {
					return
				}
				continue
			}
			if next.Stage < p.Stage {
				rt.Fatalf("stage went backwards: %d -> %d", p.Stage, next.Stage)
			}
			p = next
			if err := p.Validate(); err != nil {
				rt.Fatalf("invalid after %v: %v", pet.Care(a), err)
			}
		}
		c := p.Combatant()
		if battle.AttackPower(c) < 20 || battle.DefensePower(c) < 10 {
			rt.Fatalf("battle stats out of range for %+v", c)
		}
	})
}

func TestMemoryRegistry_Tend(t *testing.T) {
	ctx := context.Background()
	p := validPet()
	p.Hunger, p.Happiness, p.Stage = 10, 65, 1
	reg, err := pet.NewMemoryRegistry(p)
	require.NoError(t, err)

	_, err = reg.Tend(ctx, "0xABC", p.ID, pet.CareEvolve)
	assert.ErrorIs(t, err, pet.ErrCannotEvolve)

	played, err := reg.Tend(ctx, "0xABC", p.ID, pet.CarePlay)
	require.NoError(t, err)
	assert.Equal(t, 80, played.Happiness)

	evolved, err := reg.Tend(ctx, "0xabc", p.ID, pet.CareEvolve)
	require.NoError(t, err)
	assert.Equal(t, 2, evolved.Stage)

	got, err := reg.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, evolved, got)

	_, err = reg.Tend(ctx, "0xdef", p.ID, pet.CareFeed)
	assert.ErrorIs(t, err, pet.ErrNotOwner)
	_, err = reg.Tend(ctx, "0xabc", "missing", pet.CareFeed)
	assert.ErrorIs(t, err, pet.ErrPetNotFound)
}
