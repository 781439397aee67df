package lang

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Code
	}{
		{name: "akan markers", text: "wo ho yare wo mu", want: Akan},
		{name: "english", text: "I have a headache", want: English},
		{name: "empty", text: "", want: English},
		{name: "single marker", text: "no", want: English},
		{name: "akan with open vowels", text: "Ɛyɛ me ya sɛ me ti pae", want: Akan},
		{name: "upper case", text: "WO HO YARE", want: Akan},
		// Substring matching: "how" contains "ho" and "know" contains "no".
		{name: "documented false positive", text: "how do I know", want: Akan},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Detect(tc.text))
		})
	}
}

func TestResolve(t *testing.T) {
	assert.Equal(t, Akan, Resolve("", "wo ho yare wo mu"))
	assert.Equal(t, Akan, Resolve("auto", "wo ho yare wo mu"))
	assert.Equal(t, English, Resolve("auto", "I have a headache"))
	assert.Equal(t, Akan, Resolve("ak", "I have a headache"))
	assert.Equal(t, English, Resolve("en", "wo ho yare wo mu"))
	assert.Equal(t, English, Resolve("fr", "wo ho yare wo mu"))
}

func TestPick(t *testing.T) {
	texts := map[Code]string{English: "hello", Akan: "akwaaba"}
	assert.Equal(t, "akwaaba", Pick(texts, Akan))
	assert.Equal(t, "hello", Pick(texts, English))
	assert.Equal(t, "hello", Pick(map[Code]string{English: "hello"}, Akan))
	assert.Equal(t, "hello", Pick(map[Code]string{English: "hello", Akan: ""}, Akan))
}
