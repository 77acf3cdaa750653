package narration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/onegotchi/arena/internal/config"
)

// AnthropicNarrator asks a Claude model to speak as the pet.
type AnthropicNarrator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicNarrator builds a narrator from cfg. Requests are not retried;
// the caller falls back to canned lines instead.
func NewAnthropicNarrator(cfg config.NarrationConfig) *AnthropicNarrator {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &AnthropicNarrator{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
	}
}

// Narrate implements Narrator.
func (n *AnthropicNarrator) Narrate(ctx context.Context, req Request) (string, error) {
	msg, err := n.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(n.model),
		MaxTokens:   n.maxTokens,
		Temperature: anthropic.Float(0.9),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(req))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("requesting narration: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	line := strings.TrimSpace(b.String())
	if line == "" {
		return "", errors.New("narration response had no text")
	}
	return line, nil
}
