// Package narration gives pets a voice: short in-character lines reacting to
// battles and greetings, generated by an LLM with canned fallbacks.
package narration

import (
	"context"

	"go.uber.org/zap"

	"github.com/onegotchi/arena/internal/config"
	"github.com/onegotchi/arena/internal/game/battle"
)

// Interaction is what just happened to the pet.
type Interaction int

const (
	InteractionGreet Interaction = iota
	InteractionVictory
	InteractionDefeat
	InteractionFeed
	InteractionPlay
	InteractionEvolve
)

var interactionNames = [...]string{"greet", "victory", "defeat", "feed", "play", "evolve"}

func (i Interaction) String() string {
	if i < 0 || int(i) >= len(interactionNames) {
		return "unknown"
	}
	return interactionNames[i]
}

// Request describes the pet and the moment to narrate.
type Request struct {
	PetName     string
	Stage       battle.Stage
	Hunger      int
	Happiness   int
	Health      int
	Interaction Interaction
	// Opponent and Rounds are set for battle interactions.
	Opponent string
	Rounds   int
}

// Narrator produces one short line spoken by the pet.
type Narrator interface {
	Narrate(ctx context.Context, req Request) (string, error)
}

// New returns the narrator described by cfg: canned lines when narration is
// disabled, otherwise the Anthropic narrator falling back to canned lines.
func New(cfg config.NarrationConfig, logger *zap.Logger) Narrator {
	static := StaticNarrator{}
	if !cfg.Enabled {
		return static
	}
	return WithFallback(NewAnthropicNarrator(cfg), static, logger)
}

type fallbackNarrator struct {
	primary  Narrator
	fallback Narrator
	logger   *zap.Logger
}

// WithFallback returns a Narrator that uses fallback whenever primary errors
// or produces an empty line.
func WithFallback(primary, fallback Narrator, logger *zap.Logger) Narrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fallbackNarrator{primary: primary, fallback: fallback, logger: logger}
}

func (f *fallbackNarrator) Narrate(ctx context.Context, req Request) (string, error) {
	line, err := f.primary.Narrate(ctx, req)
	if err == nil && line != "" {
		return line, nil
	}
	if err != nil {
		f.logger.Warn("narration failed, using fallback", zap.String("pet", req.PetName), zap.Error(err))
	}
	return f.fallback.Narrate(ctx, req)
}
