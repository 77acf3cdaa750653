package narration

import "context"

var staticLines = map[Interaction][4]string{
	InteractionGreet: {
		"*The egg pulses softly, ready for anything*",
		"Hi hi! Are we gonna fight? I'm ready!",
		"Yeah, yeah, I'm here. Let's get this over with.",
		"I am at your side, trainer. Lead the way.",
	},
	InteractionVictory: {
		"*The egg glows brightly with pride*",
		"I won! I won! Did you see me?!",
		"Too easy. Next!",
		"A hard-won victory. We fought well together.",
	},
	InteractionDefeat: {
		"*The egg trembles, then rests quietly*",
		"Owie... that was scary...",
		"Whatever. I wasn't even trying.",
		"Defeat teaches more than victory. We will return stronger.",
	},
	InteractionFeed: {
		"*The egg glows warmly*",
		"Yummy yummy! Thank you!",
		"Finally! I was starving!",
		"Your care sustains me. Thank you, trainer.",
	},
	InteractionPlay: {
		"*The egg wiggles happily*",
		"Yay! This is so fun!",
		"Now this is what I am talking about!",
		"It is good to bond with you, old friend.",
	},
	InteractionEvolve: {
		"*The egg shudders and glows*",
		"I hatched! Everything is so big!",
		"Whoa, look at me now! Nobody can stop me!",
		"I have grown into my full strength. I will protect you, trainer.",
	},
}

// StaticNarrator returns canned lines per interaction and stage. It never fails.
type StaticNarrator struct{}

// Narrate implements Narrator.
func (StaticNarrator) Narrate(_ context.Context, req Request) (string, error) {
	lines, ok := staticLines[req.Interaction]
	if !ok {
		lines = staticLines[InteractionGreet]
	}
	return lines[req.Stage.Normalized()], nil
}
