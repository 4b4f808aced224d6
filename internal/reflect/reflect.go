// Package reflect generates a short written reflection over recent prayer
// history using the Anthropic API. Entirely optional: nothing else in the
// app depends on it, and it degrades to a clear error without an API key.
package reflect

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ferventapp/fervent/internal/models"
)

// Client wraps the Anthropic API for reflections.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClient creates an API client with the given key and model.
func NewClient(apiKey, model string) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// buildPrompt constructs the system and user prompts from session history.
func buildPrompt(sessions []*models.Session) (system string, user string) {
	system = `You write a brief, warm reflection on someone's recent prayer practice.
Rules:
- Two or three sentences, plain text, no markdown
- Ground every observation in the listed sessions; never invent details
- Mention consistency or growth if the data shows it, gently acknowledge missed or cut-short sessions without guilt
- Never give medical, financial, or theological rulings`

	var sb strings.Builder
	sb.WriteString("Recent sessions, newest first:\n")
	for _, s := range sessions {
		status := "completed"
		if !s.Completed {
			status = "stopped early"
		}
		when := "unknown time"
		if s.StartedAt != nil {
			when = s.StartedAt.Local().Format("Mon Jan 2 15:04")
		}
		fmt.Fprintf(&sb, "- %s: intended %s, actual %s, %s\n",
			when, formatMinutes(s.IntendedDuration), formatMinutes(s.ActualDuration()), status)
	}
	sb.WriteString("\nWrite the reflection.")
	user = sb.String()
	return
}

func formatMinutes(d time.Duration) string {
	m := int(d.Round(time.Minute) / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}

// Reflect sends recent history to the LLM and returns the reflection text.
func (c *Client) Reflect(ctx context.Context, sessions []*models.Session) (string, error) {
	if len(sessions) == 0 {
		return "", fmt.Errorf("no sessions to reflect on")
	}

	systemPrompt, userPrompt := buildPrompt(sessions)

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return "", fmt.Errorf("no text content in API response")
	}
	return strings.TrimSpace(text), nil
}
