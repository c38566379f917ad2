package gemini

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/generative-ai-go/genai"
)

// Generator sends a composed prompt to a Gemini generation model. One attempt
// per call; retry policy belongs to the caller. Every call carries a bounded
// timeout so a stalled upstream can never hang a request goroutine.
type Generator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGenerator(client *genai.Client, model string, timeout time.Duration) *Generator {
	if model == "" {
		model = "gemini-1.5-pro-latest"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Generator{client: client, model: model, timeout: timeout}
}

// Generate returns the generated text verbatim. Failures are classified into
// the ai taxonomy before they leave this adapter.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		slog.ErrorContext(ctx, "generation failed", "model", g.model, "error", err)
		return "", Classify(err)
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("no response generated")
	}

	var content string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				content += string(t)
			}
		}
	}
	return content, nil
}
