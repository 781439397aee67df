package ai

import (
	"context"
	"fmt"
	"github.com/apomuden/apomuden/internal/lang"
	"github.com/modfin/bellman/models/gen"
	"github.com/modfin/bellman/prompt"
	"github.com/modfin/bellman/schema"
	"log/slog"
	"strings"
	"time"
	"unicode"
)

// Dictionary maps English medical terms to Akan.
var Dictionary = map[string]string{
	"headache":  "ti yare",
	"fever":     "ɔhyew",
	"pain":      "yare",
	"medicine":  "adurow",
	"doctor":    "oduruyɛfoɔ",
	"hospital":  "ayaresabea",
	"malaria":   "atiridii",
	"symptom":   "nneɛma a ɛda adi",
	"treatment": "ayaresa",
	"emergency": "ntɛm mu yare",
}

// Translator translates answers with an LLM when one is configured and falls
// back to word substitution from Dictionary otherwise.
type Translator struct {
	Proxy   *Proxy
	Model   gen.Model
	Timeout time.Duration
	Logger  *slog.Logger
}

func (t *Translator) Translate(ctx context.Context, text string, target lang.Code) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if !t.Proxy.Supports(t.Model) {
		return Substitute(text, target), nil
	}

	llm, err := t.Proxy.Gen(t.Model)
	if err != nil {
		return "", fmt.Errorf("failed to create llm: %w", err)
	}

	res, err := call(ctx, t.Timeout, func() (translation, error) {
		res, err := llm.
			System(fmt.Sprintf("Translate the user text to %s. Keep medical terms accurate and do not add content.", languageName(target))).
			Output(schema.From(translation{})).
			Prompt(prompt.Prompt{Role: prompt.UserRole, Text: text})
		if err != nil {
			return translation{}, fmt.Errorf("failed to generate translation: %w", err)
		}
		var tr translation
		err = res.Unmarshal(&tr)
		if err != nil {
			return translation{}, fmt.Errorf("failed to unmarshal translation: %w", err)
		}
		return tr, nil
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(res.Text) == "" {
		return text, nil
	}
	return res.Text, nil
}

func languageName(code lang.Code) string {
	switch code {
	case lang.Akan:
		return "Akan (Twi)"
	default:
		return "English"
	}
}

// Substitute replaces known English terms word by word. Only Akan is a
// supported target, other targets return text unchanged. The output is lower
// cased.
func Substitute(text string, target lang.Code) string {
	if target != lang.Akan || strings.TrimSpace(text) == "" {
		return text
	}
	words := strings.Fields(strings.ToLower(text))
	for i, w := range words {
		core := strings.TrimRightFunc(w, unicode.IsPunct)
		if tr, ok := Dictionary[core]; ok {
			words[i] = tr + w[len(core):]
		}
	}
	return strings.Join(words, " ")
}
