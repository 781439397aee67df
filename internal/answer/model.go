package answer

import (
	"context"
	"fmt"
	"github.com/apomuden/apomuden/internal/lang"
	"log/slog"
	"strings"
)

const (
	DefaultFloor = 0.3
	minWords     = 3
)

// Extractor is an extractive question answering capability. It returns the
// answer span found in passage with a confidence in [0, 1].
type Extractor interface {
	Extract(ctx context.Context, question, passage string) (string, float64, error)
}

// ModelAnswerer guards an Extractor with a confidence floor. Failures never
// escape, they become a failed outcome.
type ModelAnswerer struct {
	Name      string
	Extractor Extractor
	Floor     float64
	Logger    *slog.Logger
}

func (m *ModelAnswerer) Answer(ctx context.Context, question string, code lang.Code, passage string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			m.logger().Error("model answerer panicked", "model", m.Name, "panic", r)
			out = Failed(fmt.Sprintf("model panicked: %v", r))
		}
	}()

	if m == nil || m.Extractor == nil {
		return Failed("no model configured")
	}
	if strings.TrimSpace(passage) == "" {
		passage = question
	}

	text, conf, err := m.Extractor.Extract(ctx, question, passage)
	if err != nil {
		m.logger().Warn("model failed", "model", m.Name, "err", err)
		return Failed(fmt.Sprintf("model failed: %v", err))
	}
	if conf < m.Floor {
		return Failed(fmt.Sprintf("confidence %.3f below floor %.3f", conf, m.Floor))
	}
	text = strings.TrimSpace(text)
	if len(strings.Fields(text)) < minWords {
		return Failed("answer too short")
	}

	return Ok(Result{
		Answer:     text,
		Language:   code,
		Confidence: confidence(conf),
		Source:     m.Name,
	})
}

func (m *ModelAnswerer) logger() *slog.Logger {
	if m != nil && m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}
