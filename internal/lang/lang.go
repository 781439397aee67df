// Package lang guesses whether a question is written in English or Akan.
package lang

import (
	"golang.org/x/text/unicode/norm"
	"strings"
)

type Code string

const (
	English Code = "en"
	Akan    Code = "ak"

	// Auto asks the caller to detect the language from the text.
	Auto Code = "auto"
)

// markers are short, high frequency Akan pronouns and particles. They are
// matched as substrings, so short English text with coincidental overlaps
// ("know", "how") can be classified as Akan.
var markers = []string{"wo", "me", "yɛ", "na", "sɛ", "wɔ", "no", "mu", "ho", "ba", "kɔ", "nom", "ti", "yare"}

// Threshold is the number of distinct markers needed to classify text as Akan.
const Threshold = 2

// Detect never fails, it always returns English or Akan.
func Detect(text string) Code {
	lower := strings.ToLower(norm.NFC.String(text))

	var count int
	for _, m := range markers {
		if strings.Contains(lower, m) {
			count++
		}
	}
	if count >= Threshold {
		return Akan
	}
	return English
}

// Resolve picks the language for a question. An empty or "auto" hint is
// detected from the text, a known code is used as is and anything else
// falls back to English.
func Resolve(hint string, text string) Code {
	switch c := Code(hint); c {
	case "", Auto:
		return Detect(text)
	case English, Akan:
		return c
	default:
		return English
	}
}

// Pick returns the text for code from a per language table, falling back to
// English when the language is missing.
func Pick(texts map[Code]string, code Code) string {
	if t, ok := texts[code]; ok && t != "" {
		return t
	}
	return texts[English]
}
