package narration

import (
	"fmt"
	"strings"

	"github.com/onegotchi/arena/internal/game/battle"
)

const systemPrompt = "You are an AI-powered virtual pet in a battle arena. " +
	"Respond naturally and emotionally based on your current state and evolution stage. " +
	"Keep responses concise and in-character."

var personalities = map[battle.Stage]string{
	battle.StageEgg: "You are a mysterious egg, about to hatch. You communicate with soft vibrations " +
		"and gentle pulses of warmth. Keep responses very short (1-2 sentences) and mystical.",
	battle.StageBaby: "You are a baby OneGotchi: innocent, excitable, and full of wonder. You see " +
		"everything for the first time and express emotions openly with simple words. Keep responses " +
		"SHORT (1-2 sentences) and childlike.",
	battle.StageTeen: "You are a teenage OneGotchi: curious, energetic, but sometimes moody. You can be " +
		"dramatic or sarcastic when neglected, but loving when cared for. Keep responses 2-3 sentences.",
	battle.StageAdult: "You are a fully evolved adult OneGotchi: wise, loyal, and protective of your " +
		"trainer. You speak with maturity and gratitude. Keep responses 2-3 sentences but thoughtful.",
}

// Personality returns the character brief for stage. Unknown stages speak as eggs.
func Personality(stage battle.Stage) string {
	if p, ok := personalities[stage]; ok {
		return p
	}
	return personalities[battle.StageEgg]
}

// Situation describes how the pet feels given its stats.
func Situation(req Request) string {
	var parts []string
	switch {
	case req.Hunger > 80:
		parts = append(parts, "You are VERY HUNGRY and feel weak.")
	case req.Hunger > 50:
		parts = append(parts, "You are getting hungry.")
	}
	switch {
	case req.Happiness < 20:
		parts = append(parts, "You feel very sad and neglected.")
	case req.Happiness < 50:
		parts = append(parts, "You are feeling a bit down.")
	case req.Happiness > 80:
		parts = append(parts, "You are very happy and energetic!")
	}
	if req.Health < 30 {
		parts = append(parts, "You are battered and hurting.")
	}
	return strings.Join(parts, " ")
}

func interactionText(req Request) string {
	switch req.Interaction {
	case InteractionVictory:
		return fmt.Sprintf("You just defeated %s in the arena after %d rounds! Celebrate your victory with your trainer.",
			req.Opponent, req.Rounds)
	case InteractionDefeat:
		return fmt.Sprintf("You were just defeated by %s in the arena after %d rounds. React to the loss honestly.",
			req.Opponent, req.Rounds)
	case InteractionFeed:
		return "Your trainer just fed you. React with gratitude and describe how you feel."
	case InteractionPlay:
		return "Your trainer just played with you. React with joy and excitement."
	case InteractionEvolve:
		prev := titleStage(max(req.Stage.Normalized()-1, battle.StageEgg))
		return fmt.Sprintf("You just evolved from %s to %s! Express your excitement and transformation. This is a HUGE moment!",
			prev, titleStage(req.Stage.Normalized()))
	default:
		return "Your trainer just picked you for the arena. Greet them and let them know how you are feeling."
	}
}

// BuildPrompt renders the user prompt sent to the model.
func BuildPrompt(req Request) string {
	stage := req.Stage.Normalized()
	name := titleStage(stage)

	var b strings.Builder
	b.WriteString(Personality(stage))
	fmt.Fprintf(&b, "\n\nYour name is %s. You are currently a %s stage OneGotchi.\n\n", req.PetName, name)
	fmt.Fprintf(&b, "Current stats:\n- Happiness: %d/100\n- Hunger: %d/100\n- Health: %d/100\n\n",
		req.Happiness, req.Hunger, req.Health)
	if s := Situation(req); s != "" {
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString(interactionText(req))
	fmt.Fprintf(&b, "\n\nIMPORTANT:\n- Stay in character as a %s\n- Keep the response SHORT and emotional\n"+
		"- NO explanations, just respond as the pet would\n\nRespond now:", name)
	return b.String()
}

func titleStage(s battle.Stage) string {
	label := strings.ToLower(s.String())
	return strings.ToUpper(label[:1]) + label[1:]
}
