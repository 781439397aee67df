package kb

import (
	"github.com/apomuden/apomuden/internal/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRetrieve(t *testing.T) {
	base := Default()

	tests := []struct {
		name     string
		question string
		code     lang.Code
		key      string
		prefix   string
	}{
		{"malaria symptoms", "What are the symptoms of malaria?", lang.English, "malaria", "Malaria is caused by parasites"},
		{"malaria in akan", "What are the symptoms of malaria?", lang.Akan, "malaria", "Atiridii yɛ ɔyare"},
		{"uppercase", "HEADACHE remedies", lang.English, "headache", "Headaches can be caused"},
		{"suffix", "I keep getting migraineheadache", lang.English, "headache", "Headaches can be caused"},
		{"substring", "feverish since monday", lang.English, "fever", "Fever is the body's response"},
		{"structured entry", "how is cholera spread", lang.English, "cholera", "About Cholera:"},
		{"structured falls back to english", "how is cholera spread", lang.Akan, "cholera", "About Cholera:"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, ok := base.Retrieve(tc.question, tc.code)
			require.True(t, ok)
			assert.Equal(t, tc.key, m.Key)
			assert.True(t, strings.HasPrefix(m.Text, tc.prefix), m.Text)
		})
	}
}

func TestRetrieveNoMatch(t *testing.T) {
	_, ok := Default().Retrieve("How do vaccines work?", lang.English)
	assert.False(t, ok)

	_, ok = New().Retrieve("malaria", lang.English)
	assert.False(t, ok)
}

func TestRetrieveTieKeepsFirst(t *testing.T) {
	base := New(
		Entry{Key: "sore", Text: map[lang.Code]string{lang.English: "first"}},
		Entry{Key: "throat", Text: map[lang.Code]string{lang.English: "second"}},
	)
	m, ok := base.Retrieve("sore throat", lang.English)
	require.True(t, ok)
	assert.Equal(t, "sore", m.Key)
	assert.Equal(t, 4, m.Score)
}

func TestScores(t *testing.T) {
	base := New(
		Entry{Key: "high blood pressure", Text: map[lang.Code]string{lang.English: "x"}},
		Entry{Key: "pressure", Text: map[lang.Code]string{lang.English: "y"}},
		Entry{Key: "ssure", Text: map[lang.Code]string{lang.English: "z"}},
	)
	scores := base.Scores("Is my blood pressure high?")
	require.Len(t, scores, 3)

	assert.Equal(t, Score{Key: "high blood pressure", Overlap: 3, Bonus: 0}, scores[0])
	assert.Equal(t, Score{Key: "pressure", Overlap: 1, Bonus: 3}, scores[1])
	assert.Equal(t, Score{Key: "ssure", Overlap: 0, Bonus: 1}, scores[2])
}

func TestScoresIgnoresPunctuation(t *testing.T) {
	base := New(Entry{Key: "covid-19", Text: map[lang.Code]string{lang.English: "x"}})
	scores := base.Scores("tell me about covid19")
	assert.Equal(t, 4, scores[0].Total())
}

func TestNewReplacesDuplicateKeys(t *testing.T) {
	base := New(
		Entry{Key: "a", Text: map[lang.Code]string{lang.English: "old"}},
		Entry{Key: "b", Text: map[lang.Code]string{lang.English: "b"}},
		Entry{Key: "a", Text: map[lang.Code]string{lang.English: "new"}},
	)
	assert.Equal(t, []string{"a", "b"}, base.Keys())
	e, ok := base.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "new", e.Text[lang.English])
}

func TestEntriesAreCopies(t *testing.T) {
	base := Default()
	entries := base.Entries()
	entries[0].Text[lang.English] = "changed"

	e, ok := base.Lookup(entries[0].Key)
	require.True(t, ok)
	assert.NotEqual(t, "changed", e.Text[lang.English])
}

func TestFormat(t *testing.T) {
	d := Details{
		Name:        "Flu",
		Symptoms:    []string{"fever", "cough"},
		Precautions: []string{"vaccination"},
	}
	got := Format(d, "influenza", lang.English)
	assert.Equal(t, "About Flu:\nCommon symptoms include: fever, cough\nPrecautions to take: vaccination\n\n"+
		layouts[lang.English].disclaimer, got)

	got = Format(Details{}, "influenza", lang.Akan)
	assert.True(t, strings.HasPrefix(got, "Nea ɛfa influenza ho:"))
	assert.True(t, strings.HasSuffix(got, layouts[lang.Akan].disclaimer))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	yml := `
- key: malaria
  text:
    en: Overridden malaria text.
- key: ebola
  details:
    en:
      name: Ebola
      symptoms: [fever, bleeding]
`
	path := filepath.Join(dir, "kb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	base, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, len(defaultEntries)+1, base.Len())

	m, ok := base.Retrieve("malaria", lang.English)
	require.True(t, ok)
	assert.Equal(t, "Overridden malaria text.", m.Text)

	m, ok = base.Retrieve("is ebola contagious", lang.English)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(m.Text, "About Ebola:\nCommon symptoms include: fever, bleeding"))

	js := `[{"key":"yaws","text":{"en":"Yaws text","ak":"Yaws ak"}}]`
	path = filepath.Join(dir, "kb.json")
	require.NoError(t, os.WriteFile(path, []byte(js), 0o644))
	base, err = Load(path)
	require.NoError(t, err)
	m, ok = base.Retrieve("yaws", lang.Akan)
	require.True(t, ok)
	assert.Equal(t, "Yaws ak", m.Text)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("[]"), ".toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Parse([]byte(`[{"key":""}]`), ".json")
	assert.Error(t, err)

	_, err = Parse([]byte(`[{"key":"x"}]`), ".json")
	assert.Error(t, err)

	_, err = Parse([]byte(`{`), ".json")
	assert.Error(t, err)
}
