package narration

import (
	"context"

	"github.com/onegotchi/arena/internal/game/arena"
)

// ResultRequest builds the narration request for the trainer's pet after a battle.
func ResultRequest(r arena.MatchResult) Request {
	req := Request{
		PetName:     r.Self.Name,
		Stage:       r.Self.Stage,
		Hunger:      r.Self.Hunger,
		Happiness:   r.Self.Happiness,
		Health:      r.SelfHealth,
		Interaction: InteractionDefeat,
		Opponent:    r.Opponent.Name,
		Rounds:      r.Rounds,
	}
	if r.SelfWon() {
		req.Interaction = InteractionVictory
	}
	return req
}

// Epilogue adapts n to arena.Narrator.
func Epilogue(n Narrator) arena.Narrator {
	return arena.NarrateFunc(func(ctx context.Context, r arena.MatchResult) (string, error) {
		return n.Narrate(ctx, ResultRequest(r))
	})
}
