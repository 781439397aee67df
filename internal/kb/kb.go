// Package kb holds the curated medical knowledge base and the bag of words
// matcher that picks the entry best fitting a question.
//
// A Base is built once at startup and never mutated afterwards, so it is safe
// to share between requests without locking.
package kb

import (
	"github.com/apomuden/apomuden/internal/lang"
	"github.com/modfin/henry/slicez"
	"regexp"
	"strings"
)

// Details are the optional structured fields of an entry.
type Details struct {
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Symptoms     []string `json:"symptoms,omitempty" yaml:"symptoms,omitempty"`
	Causes       []string `json:"causes,omitempty" yaml:"causes,omitempty"`
	Treatments   []string `json:"treatments,omitempty" yaml:"treatments,omitempty"`
	Precautions  []string `json:"precautions,omitempty" yaml:"precautions,omitempty"`
	RiskGroups   []string `json:"risk_groups,omitempty" yaml:"risk_groups,omitempty"`
	Transmission string   `json:"transmission,omitempty" yaml:"transmission,omitempty"`
}

type Entry struct {
	Key     string                `json:"key" yaml:"key"`
	Text    map[lang.Code]string  `json:"text,omitempty" yaml:"text,omitempty"`
	Details map[lang.Code]Details `json:"details,omitempty" yaml:"details,omitempty"`
}

// Passage returns the entry text in the requested language, falling back to
// English. Entries without a plain text are rendered from their details.
func (e Entry) Passage(code lang.Code) string {
	if t := lang.Pick(e.Text, code); t != "" {
		return t
	}
	if d, ok := e.Details[code]; ok {
		return Format(d, e.Key, code)
	}
	if d, ok := e.Details[lang.English]; ok {
		return Format(d, e.Key, lang.English)
	}
	return ""
}

func (e Entry) clone() Entry {
	c := Entry{Key: e.Key}
	if e.Text != nil {
		c.Text = make(map[lang.Code]string, len(e.Text))
		for k, v := range e.Text {
			c.Text[k] = v
		}
	}
	if e.Details != nil {
		c.Details = make(map[lang.Code]Details, len(e.Details))
		for k, d := range e.Details {
			d.Symptoms = append([]string(nil), d.Symptoms...)
			d.Causes = append([]string(nil), d.Causes...)
			d.Treatments = append([]string(nil), d.Treatments...)
			d.Precautions = append([]string(nil), d.Precautions...)
			d.RiskGroups = append([]string(nil), d.RiskGroups...)
			c.Details[k] = d
		}
	}
	return c
}

type compiled struct {
	entry     Entry
	norm      string
	words     map[string]struct{}
	wholeWord *regexp.Regexp
}

type Base struct {
	entries []compiled
	index   map[string]int
}

// New builds a Base. A later entry with the same key replaces the earlier one
// but keeps its position, the order of keys decides ties when matching.
func New(entries ...Entry) *Base {
	b := &Base{index: map[string]int{}}
	for _, e := range entries {
		c := compile(e.clone())
		if i, ok := b.index[e.Key]; ok {
			b.entries[i] = c
			continue
		}
		b.index[e.Key] = len(b.entries)
		b.entries = append(b.entries, c)
	}
	return b
}

func compile(e Entry) compiled {
	n := Normalize(e.Key)
	c := compiled{entry: e, norm: n, words: wordSet(n)}
	if n != "" {
		c.wholeWord = regexp.MustCompile(`\b` + regexp.QuoteMeta(n) + `\b`)
	}
	return c
}

func (b *Base) Len() int {
	return len(b.entries)
}

func (b *Base) Keys() []string {
	return slicez.Map(b.entries, func(c compiled) string {
		return c.entry.Key
	})
}

// Entries returns copies of all entries in matching order.
func (b *Base) Entries() []Entry {
	return slicez.Map(b.entries, func(c compiled) Entry {
		return c.entry.clone()
	})
}

func (b *Base) Lookup(key string) (Entry, bool) {
	i, ok := b.index[key]
	if !ok {
		return Entry{}, false
	}
	return b.entries[i].entry.clone(), true
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]`)

// Normalize lower cases s and strips everything outside [a-z0-9] and
// whitespace. Letters outside ASCII, such as the Akan ɛ and ɔ, are dropped.
func Normalize(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(s), "")
}

func wordSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}
