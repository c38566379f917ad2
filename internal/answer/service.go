// Package answer runs the question-answering pipeline over a document's
// content: chunk, embed into a request-local index, retrieve, prompt, generate.
package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docqa/internal/index"
	"docqa/internal/text"
)

const promptTemplate = `Use the following pieces of context to answer the question at the end.
If you don't know the answer, just say that you don't know, don't try to make up an answer.

Context:
%s

Question: %s

Helpful Answer:`

// Generator produces text from a composed prompt in a single attempt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Options struct {
	ChunkSize    int
	ChunkOverlap int
	Separator    string
	TopK         int
}

type Service struct {
	embedder  index.Embedder
	generator Generator
	opts      Options
}

func NewService(embedder index.Embedder, generator Generator, opts Options) *Service {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if opts.Separator == "" {
		opts.Separator = "\n"
	}
	if opts.TopK <= 0 {
		opts.TopK = 4
	}
	return &Service{embedder: embedder, generator: generator, opts: opts}
}

// Answer runs the full pipeline for one question. Every step is a hard
// dependency on the previous one succeeding; the first failure aborts the
// call and propagates to the caller for backoff bookkeeping.
func (s *Service) Answer(ctx context.Context, question, content string) (string, error) {
	chunks := text.Split(content, s.opts.ChunkSize, s.opts.ChunkOverlap, s.opts.Separator)
	if len(chunks) == 0 {
		return "", fmt.Errorf("document has no extractable content")
	}

	ix, err := index.Build(ctx, s.embedder, chunks)
	if err != nil {
		return "", err
	}

	top, err := ix.Query(ctx, question, s.opts.TopK)
	if err != nil {
		return "", err
	}
	slog.DebugContext(ctx, "retrieved context", "chunks", len(top), "total", len(chunks))

	return s.generator.Generate(ctx, BuildPrompt(question, top))
}

// BuildPrompt assembles the deterministic prompt: instruction header, the
// retrieved chunks joined by a blank line under the Context label, the
// question, and the answer cue.
func BuildPrompt(question string, chunks []text.Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	return fmt.Sprintf(promptTemplate, strings.Join(parts, "\n\n"), question)
}
