package triage

import (
	"github.com/apomuden/apomuden/internal/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestCheck(t *testing.T) {
	tr := Default()

	tests := []struct {
		name     string
		text     string
		code     lang.Code
		wantRule string
		wantOK   bool
	}{
		{name: "chest pain", text: "I have CHEST PAIN and malaria", code: lang.English, wantRule: "cardiac", wantOK: true},
		{name: "bleeding", text: "there is blood everywhere", code: lang.English, wantRule: "bleeding", wantOK: true},
		{name: "first rule wins", text: "I can't breathe", code: lang.English, wantRule: "cardiac", wantOK: true},
		{name: "curly apostrophe", text: "I can’t breathe", code: lang.English, wantRule: "cardiac", wantOK: true},
		{name: "choking", text: "my child is choking", code: lang.English, wantRule: "breathing", wantOK: true},
		{name: "allergy", text: "my throat closing after peanuts", code: lang.English, wantRule: "anaphylaxis", wantOK: true},
		{name: "unconscious", text: "he fainted at school", code: lang.English, wantRule: "unconscious", wantOK: true},
		{name: "no emergency", text: "What are the symptoms of malaria?", code: lang.English},
		// Substring matching over triggers inside unrelated words.
		{name: "documented false positive", text: "is there a piano air conditioner", code: lang.English, wantRule: "breathing", wantOK: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, ok := tr.Check(tc.text, tc.code)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantRule, m.Rule)
		})
	}
}

func TestCheckLanguage(t *testing.T) {
	tr := Default()

	m, ok := tr.Check("chest pain", lang.Akan)
	require.True(t, ok)
	assert.Contains(t, m.Response, "NTƐM YI")

	m, ok = tr.Check("chest pain", lang.English)
	require.True(t, ok)
	assert.Contains(t, m.Response, "EMERGENCY")
}

func TestCheckFallsBackToEnglish(t *testing.T) {
	tr := New(Rule{
		Name:     "test",
		Keywords: []string{" Stroke "},
		Response: map[lang.Code]string{lang.English: "call now"},
	})

	m, ok := tr.Check("signs of a stroke", lang.Akan)
	require.True(t, ok)
	assert.Equal(t, "call now", m.Response)
	assert.Equal(t, "stroke", m.Keyword)
}

func TestRulesIsACopy(t *testing.T) {
	tr := Default()
	rules := tr.Rules()
	rules[0] = Rule{Name: "changed"}
	assert.Equal(t, "cardiac", tr.Rules()[0].Name)
}
