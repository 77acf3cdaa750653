package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/onegotchi/arena/internal/game/arena"
	"github.com/onegotchi/arena/internal/game/battle"
	"github.com/onegotchi/arena/internal/storage/postgres"
)

func TestArena_FullBattle(t *testing.T) {
	f := newFixture(t, arena.Options{
		OpponentDelay: 20 * time.Millisecond,
		Reward: arena.RewardFunc(func(r arena.MatchResult) (string, error) {
			return "Battle Medal", nil
		}),
	})
	c := f.login(t)

	c.Send("pick 1")
	c.ReadUntil("Drake is ready to fight!", 2*time.Second)
	c.ReadUntil(`Drake: "I am at your side, trainer. Lead the way."`, 2*time.Second)

	c.Send("find " + addrRival)
	out := c.ReadUntil("challenge <n>", 2*time.Second)
	assert.Contains(t, out, "1. Pebble")
	assert.Contains(t, out, "power")

	c.Send("challenge 1")
	c.ReadUntil("Pebble accepts the challenge!", 2*time.Second)

	c.Send("fight")
	c.ReadUntil("Battle start! Drake vs Pebble!", 2*time.Second)
	c.ReadUntil("Your turn!", 2*time.Second)
	assert.Equal(t, 1, f.sessions.InBattle())

	c.Send("attack")
	out = c.ReadUntil("Pebble is preparing to strike...", 2*time.Second)
	assert.Contains(t, out, "Drake attacks Pebble!")
	assert.Contains(t, out, "80 damage dealt!")
	assert.Contains(t, out, " 20/100")

	out = c.ReadUntil("Your turn!", 2*time.Second)
	assert.Contains(t, out, "Pebble attacks Drake!")
	assert.Contains(t, out, " 95/100")

	c.Send("a")
	out = c.ReadUntil("Victory! Drake defeated Pebble!", 2*time.Second)
	assert.Contains(t, out, "KNOCKOUT! Pebble is defeated!")

	out = c.ReadUntil("rematch", 2*time.Second)
	assert.Contains(t, out, "VICTORY in 3 rounds")
	assert.Contains(t, out, "Reward: Battle Medal")

	c.Send("attack")
	c.ReadUntil("The battle is over", 2*time.Second)

	c.Send("back")
	c.ReadUntil("Back to pet selection.", 2*time.Second)
	assert.Eventually(t, func() bool { return f.arena.Active() == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, f.sessions.InBattle())
}

func TestArena_AttackRequiresBattle(t *testing.T) {
	f := newFixture(t, arena.Options{})
	c := f.login(t)

	c.Send("attack")
	c.ReadUntil("You are not in a battle", 2*time.Second)

	c.Send("fight")
	c.ReadUntil("Pick your pet", 2*time.Second)
}

func TestArena_NotYourTurn(t *testing.T) {
	f := newFixture(t, arena.Options{OpponentDelay: time.Hour})
	c := f.login(t)

	c.Send("pick 2")
	c.ReadUntil("Sprout is ready to fight!", 2*time.Second)
	c.Send("find " + addrRival)
	c.ReadUntil("Pebble", 2*time.Second)
	c.Send("challenge 1")
	c.ReadUntil("accepts the challenge", 2*time.Second)
	c.Send("fight")
	c.ReadUntil("Battle start!", 2*time.Second)

	c.Send("attack")
	c.ReadUntil("preparing to strike", 2*time.Second)
	c.Send("attack")
	c.ReadUntil("Wait! Your opponent is about to strike.", 2*time.Second)

	c.Send("pick 1")
	c.ReadUntil("You are in a battle", 2*time.Second)

	c.Send("status")
	out := c.ReadUntil("is attacking...", 2*time.Second)
	assert.Contains(t, out, "Sprout")

	c.Send("flee")
	c.ReadUntil("You fled the battle.", 2*time.Second)
	assert.Equal(t, 0, f.arena.Active())
}

func TestArena_PickAndChallengeUsage(t *testing.T) {
	f := newFixture(t, arena.Options{})
	c := f.login(t)

	c.Send("pick 9")
	c.ReadUntil("Usage: pick <n>", 2*time.Second)

	c.Send("challenge 1")
	c.ReadUntil("Usage: challenge <n>", 2*time.Second)

	c.Send("find nobody")
	c.ReadUntil("not a valid wallet address", 2*time.Second)

	c.Send("find " + addrRival)
	c.ReadUntil("Pebble", 2*time.Second)
	c.Send("challenge 1")
	c.ReadUntil("Now pick <n> one of your pets.", 2*time.Second)

	c.Send("status")
	c.ReadUntil("Opponent:", 2*time.Second)
}

func TestArena_CareCommands(t *testing.T) {
	f := newFixture(t, arena.Options{})
	c := f.login(t)

	c.Send("feed 2")
	out := c.ReadUntil(`Sprout: "Yummy yummy! Thank you!"`, 2*time.Second)
	assert.Contains(t, out, "Sprout has been fed!")

	c.Send("play 2")
	c.ReadUntil("Sprout had fun!", 2*time.Second)
	c.ReadUntil(`Sprout: "Yay! This is so fun!"`, 2*time.Second)

	c.Send("evolve 2")
	c.ReadUntil("Sprout cannot evolve yet", 2*time.Second)

	c.Send("feed 2")
	c.ReadUntil("Sprout has been fed!", 2*time.Second)
	c.Send("evolve 2")
	c.ReadUntil("Sprout evolved into a TEEN!", 2*time.Second)
	c.ReadUntil(`Sprout: "Whoa, look at me now! Nobody can stop me!"`, 2*time.Second)

	got, err := f.pets.Get(context.Background(), "p-sprout")
	assert.NoError(t, err)
	assert.Equal(t, 2, got.Stage)
	assert.Equal(t, 0, got.Hunger)
	assert.Equal(t, 75, got.Happiness)

	c.Send("evolve 1")
	c.ReadUntil("Drake is fully grown.", 2*time.Second)

	c.Send("feed 7")
	c.ReadUntil("Usage: feed <n>", 2*time.Second)
}

func TestArena_CareRefusedDuringBattle(t *testing.T) {
	f := newFixture(t, arena.Options{})
	c := f.login(t)

	c.Send("pick 2")
	c.ReadUntil("Sprout is ready to fight!", 2*time.Second)
	c.Send("find " + addrRival)
	c.ReadUntil("Pebble", 2*time.Second)
	c.Send("challenge 1")
	c.ReadUntil("accepts the challenge", 2*time.Second)
	c.Send("fight")
	c.ReadUntil("Battle start!", 2*time.Second)

	c.Send("feed 2")
	c.ReadUntil("You are in a battle", 2*time.Second)

	got, err := f.pets.Get(context.Background(), "p-sprout")
	assert.NoError(t, err)
	assert.Equal(t, 50, got.Hunger)
}

func TestArena_FindExcludesSelectedPet(t *testing.T) {
	f := newFixture(t, arena.Options{})
	c := f.login(t)

	c.Send("pick 1")
	c.ReadUntil("Lead the way.", 2*time.Second)
	c.Send("find " + addrTrainer)
	out := c.ReadUntil("challenge <n>", 2*time.Second)
	assert.Contains(t, out, "1. Sprout")
	assert.NotContains(t, out, "Drake ")
}

func TestArena_History(t *testing.T) {
	f := newFixture(t, arena.Options{})
	f.history.record = postgres.Record{Wins: 3, Losses: 1}
	f.history.battles = []postgres.BattleRecord{{
		SelfName:     "Drake",
		OpponentName: "Pebble",
		Winner:       battle.SideSelf,
		Rounds:       3,
		Reward:       "Battle Medal",
		FinishedAt:   time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
	}}
	c := f.login(t)

	c.Send("history")
	out := c.ReadUntil("Battle Medal", 2*time.Second)
	assert.Contains(t, out, "Record: 3 wins, 1 losses")
	assert.Contains(t, out, "2026-03-01 12:30")
	assert.Contains(t, out, "WIN  Drake vs Pebble  3 rounds")

	f.history.mu.Lock()
	defer f.history.mu.Unlock()
	assert.Equal(t, 5, f.history.limit)
}

func TestArena_Help(t *testing.T) {
	f := newFixture(t, arena.Options{})
	c := f.login(t)

	c.Send("help")
	out := c.ReadUntil("Disconnect", 2*time.Second)
	for _, cmd := range []string{"pets", "pick <n>", "find <address>", "challenge <n>", "fight", "attack (a)", "back (flee)", "history", "feed <n>", "play <n>", "evolve <n>"} {
		assert.Contains(t, out, cmd)
	}
}

func TestArena_FindAddressWithoutPets(t *testing.T) {
	f := newFixture(t, arena.Options{})
	c := f.login(t)

	c.Send("find 0x3333333333333333333333333333333333333333")
	c.ReadUntil("This address has no pets!", 2*time.Second)

	c.Send("challenge 1")
	c.ReadUntil("Usage: challenge <n>", 2*time.Second)
}
