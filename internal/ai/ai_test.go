package ai

import (
	"context"
	"errors"
	"github.com/apomuden/apomuden/internal/lang"
	"github.com/modfin/bellman/models/gen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		target lang.Code
		want   string
	}{
		{"known terms", "See a doctor about the fever", lang.Akan, "see a oduruyɛfoɔ about the ɔhyew"},
		{"punctuation kept", "Malaria, headache.", lang.Akan, "atiridii, ti yare."},
		{"english target untouched", "See a doctor", lang.English, "See a doctor"},
		{"blank", "  ", lang.Akan, "  "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Substitute(tc.text, tc.target))
		})
	}
}

func TestTranslatorWithoutModelSubstitutes(t *testing.T) {
	tr := &Translator{}
	got, err := tr.Translate(context.Background(), "Go to the hospital", lang.Akan)
	require.NoError(t, err)
	assert.Equal(t, "go to the ayaresabea", got)

	tr = &Translator{Proxy: newProxy(), Model: ParseModel("OpenAI/gpt-4o-mini")}
	got, err = tr.Translate(context.Background(), "medicine", lang.Akan)
	require.NoError(t, err)
	assert.Equal(t, "adurow", got)
}

func TestParseModel(t *testing.T) {
	assert.Equal(t, gen.Model{Provider: "OpenAI", Name: "gpt-4o-mini"}, ParseModel("OpenAI/gpt-4o-mini"))
	assert.Equal(t, gen.Model{Provider: "Bellman", Name: "OpenAI/gpt-4o"}, ParseModel(" Bellman/OpenAI/gpt-4o "))
	assert.Equal(t, gen.Model{Provider: "OpenAI"}, ParseModel("OpenAI"))
}

func TestProxyWithoutCredentials(t *testing.T) {
	p, err := New(APICredentials{}, slog.Default())
	require.NoError(t, err)
	assert.Empty(t, p.Providers())
	assert.False(t, p.Supports(ParseModel("OpenAI/gpt-4o-mini")))

	_, err = p.Gen(ParseModel("OpenAI/gpt-4o-mini"))
	assert.ErrorIs(t, err, ErrClientNotFound)

	var nilProxy *Proxy
	assert.False(t, nilProxy.Supports(ParseModel("OpenAI/gpt-4o-mini")))
}

func TestExtractorWithoutProxy(t *testing.T) {
	e := &Extractor{Model: ParseModel("OpenAI/gpt-4o-mini")}
	assert.Equal(t, "gpt-4o-mini", e.Name())

	_, _, err := e.Extract(context.Background(), "q", "p")
	assert.ErrorIs(t, err, ErrClientNotFound)

	e.Proxy = newProxy()
	_, _, err = e.Extract(context.Background(), "q", "p")
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestExtractPrompts(t *testing.T) {
	prompts := extractPrompts(" what is malaria? ", "Malaria is caused by parasites.\n")
	require.Len(t, prompts, 2)
	assert.Equal(t, "<passage> Malaria is caused by parasites. </passage>", prompts[0].Text)
	assert.Equal(t, "<user-question> what is malaria? </user-question>", prompts[1].Text)
}

func TestCall(t *testing.T) {
	v, err := call(context.Background(), 0, func() (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	boom := errors.New("boom")
	_, err = call(context.Background(), 0, func() (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = call(context.Background(), 10*time.Millisecond, func() (int, error) {
		time.Sleep(time.Second)
		return 1, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = call(ctx, 0, func() (int, error) {
		time.Sleep(time.Second)
		return 1, nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = call(context.Background(), 0, func() (int, error) {
		panic("bad")
	})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "bad"))
}
