package kb

import (
	"github.com/apomuden/apomuden/internal/lang"
	"strings"
)

const (
	wholeWordBonus = 3
	suffixBonus    = 2
	substringBonus = 1

	// MinScore is the lowest total score accepted as a match.
	MinScore = 1
)

type Score struct {
	Key     string
	Overlap int
	Bonus   int
}

func (s Score) Total() int {
	return s.Overlap + s.Bonus
}

type Match struct {
	Key   string
	Text  string
	Score int
}

// Scores rates every entry against question, in entry order.
//
// The score of an entry is the number of words shared between the question
// and the entry key, plus one bonus: 3 when the key occurs as whole words in
// the question, else 2 when the question ends with the key, else 1 when the
// key is a plain substring of the question.
func (b *Base) Scores(question string) []Score {
	q := Normalize(question)
	qwords := wordSet(q)

	scores := make([]Score, 0, len(b.entries))
	for _, c := range b.entries {
		s := Score{Key: c.entry.Key}
		for w := range c.words {
			if _, ok := qwords[w]; ok {
				s.Overlap++
			}
		}
		if c.norm != "" {
			switch {
			case c.wholeWord.MatchString(q):
				s.Bonus = wholeWordBonus
			case strings.HasSuffix(q, c.norm):
				s.Bonus = suffixBonus
			case strings.Contains(q, c.norm):
				s.Bonus = substringBonus
			}
		}
		scores = append(scores, s)
	}
	return scores
}

// Retrieve returns the passage of the best scoring entry. Ties keep the entry
// seen first. No match is reported when the best score is below MinScore.
func (b *Base) Retrieve(question string, code lang.Code) (Match, bool) {
	best := -1
	var bestScore int
	for i, s := range b.Scores(question) {
		if s.Total() > bestScore {
			best, bestScore = i, s.Total()
		}
	}
	if best < 0 || bestScore < MinScore {
		return Match{}, false
	}
	e := b.entries[best].entry
	return Match{Key: e.Key, Text: e.Passage(code), Score: bestScore}, true
}
