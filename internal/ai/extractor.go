package ai

import (
	"context"
	"fmt"
	"github.com/modfin/bellman/models/gen"
	"github.com/modfin/bellman/prompt"
	"github.com/modfin/bellman/schema"
	"log/slog"
	"strings"
	"time"
)

const DefaultExtractPrompt = `You are an extractive question answering system for health questions.
You are given a passage and a question. Copy the shortest span of the passage that answers the question.
Never add facts that are not in the passage. If the passage does not answer the question, return an empty answer with confidence 0.`

// Extractor answers a question by extracting a span from a passage with an
// LLM.
type Extractor struct {
	Proxy        *Proxy
	Model        gen.Model
	SystemPrompt string
	Timeout      time.Duration
	Logger       *slog.Logger
}

// Name is the model name reported as the answer source.
func (e *Extractor) Name() string {
	return e.Model.Name
}

func (e *Extractor) Extract(ctx context.Context, question, passage string) (string, float64, error) {
	span, err := e.Span(ctx, question, passage)
	if err != nil {
		return "", 0, err
	}
	return span.Answer, float64(span.ConfidenceScore), nil
}

func (e *Extractor) Span(ctx context.Context, question, passage string) (Span, error) {
	if e.Proxy == nil {
		return Span{}, ErrClientNotFound
	}
	llm, err := e.Proxy.Gen(e.Model)
	if err != nil {
		return Span{}, fmt.Errorf("failed to create llm: %w", err)
	}

	system := e.SystemPrompt
	if system == "" {
		system = DefaultExtractPrompt
	}

	start := time.Now()
	span, err := call(ctx, e.Timeout, func() (Span, error) {
		res, err := llm.
			System(system).
			Output(schema.From(Span{})).
			Prompt(extractPrompts(question, passage)...)
		if err != nil {
			return Span{}, fmt.Errorf("failed to generate response: %w", err)
		}

		var span Span
		err = res.Unmarshal(&span)
		if err != nil {
			return Span{}, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		span.Metadata = res.Metadata
		return span, nil
	})
	if err != nil {
		return Span{}, err
	}

	e.logger().Debug("extracted span",
		"model", e.Model.Name,
		"confidence", span.ConfidenceScore,
		"took", time.Since(start),
		"input-tokens", span.Metadata.InputTokens,
		"output-tokens", span.Metadata.OutputTokens,
	)
	return span, nil
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func extractPrompts(question, passage string) []prompt.Prompt {
	return []prompt.Prompt{
		{
			Role: prompt.UserRole,
			Text: fmt.Sprintf("<passage> %s </passage>", strings.TrimSpace(passage)),
		},
		{
			Role: prompt.UserRole,
			Text: fmt.Sprintf("<user-question> %s </user-question>", strings.TrimSpace(question)),
		},
	}
}
