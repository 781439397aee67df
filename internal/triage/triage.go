// Package triage flags questions that describe a life threatening situation.
//
// Triggers are plain substrings of the lower cased question, not words. A
// rule that over triggers ("no air" inside an unrelated sentence) is
// preferred to one that misses an emergency.
package triage

import (
	"github.com/apomuden/apomuden/internal/lang"
	"strings"
)

type Rule struct {
	Name     string
	Keywords []string
	Response map[lang.Code]string
}

type Match struct {
	Rule     string
	Keyword  string
	Response string
}

// Triage holds an ordered rule list, the first matching rule wins.
type Triage struct {
	rules []Rule
}

func New(rules ...Rule) *Triage {
	t := &Triage{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		kw := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" {
				kw = append(kw, k)
			}
		}
		t.rules = append(t.rules, Rule{Name: r.Name, Keywords: kw, Response: r.Response})
	}
	return t
}

func Default() *Triage {
	return New(defaultRules...)
}

// Rules returns a copy of the rule list in evaluation order.
func (t *Triage) Rules() []Rule {
	return append([]Rule(nil), t.rules...)
}

// Check returns the canned response of the first rule with a trigger present
// in text, in the requested language or English.
func (t *Triage) Check(text string, code lang.Code) (Match, bool) {
	lower := normalize(text)
	for _, r := range t.rules {
		for _, k := range r.Keywords {
			if strings.Contains(lower, k) {
				return Match{Rule: r.Name, Keyword: k, Response: lang.Pick(r.Response, code)}, true
			}
		}
	}
	return Match{}, false
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

func normalize(text string) string {
	return apostrophes.Replace(strings.ToLower(text))
}
