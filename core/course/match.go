package course

import (
	"strings"

	"github.com/trezcool/alama/core"
)

// Free-text matching of roster names against subject text. A candidate
// matches when every one of its name tokens appears as a substring of the
// text, consumed left to right, case- and accent-insensitively. Matching is
// deliberately loose (this is a low-volume, human-supervised system); the
// safety property is that callers get the full candidate list and must fail
// on ambiguity instead of guessing.

type PersonMatch struct {
	Person *Person
	// Rest is the unconsumed tail of the text after the person's tokens,
	// available for a follow-up assignment match.
	Rest string
}

// MatchPeople returns every person whose name tokens all appear in text.
func (c *Course) MatchPeople(text string) []PersonMatch {
	folded := core.FoldString(text)
	var matches []PersonMatch
	for i := range c.People {
		if rest, ok := matchTokens(folded, c.People[i].Name); ok {
			matches = append(matches, PersonMatch{Person: &c.People[i], Rest: rest})
		}
	}
	return matches
}

// MatchAssignments returns every assignment whose name tokens all appear in text.
func (c *Course) MatchAssignments(text string) []*Assignment {
	folded := core.FoldString(text)
	var matches []*Assignment
	for i := range c.Assignments {
		if _, ok := matchTokens(folded, c.Assignments[i].Name); ok {
			matches = append(matches, &c.Assignments[i])
		}
	}
	return matches
}

// matchTokens consumes each token of name from text in order; text must
// already be folded. It returns the tail after the last consumed token.
func matchTokens(text, name string) (rest string, ok bool) {
	remaining := text
	for _, tok := range strings.Fields(core.FoldString(name)) {
		i := strings.Index(remaining, tok)
		if i < 0 {
			return "", false
		}
		remaining = remaining[i+len(tok):]
	}
	return remaining, true
}
