package quiz

import (
	"fmt"
	"strings"
)

// session is one channel's in-progress round: the question, the canonical
// answer to reveal, and the acceptance predicate over normalized guesses.
type session struct {
	kind     string
	question string
	answer   string
	accepts  func(normalized string) bool
}

// shape is one way to turn a country fact into a question/answer pair.
// Shape and fact are drawn independently.
type shape struct {
	kind  string
	build func(c Country) *session
}

func anyMatches(values []string, normalized string) bool {
	for _, v := range values {
		if Normalize(v) == normalized {
			return true
		}
	}
	return false
}

func capitalShape() shape {
	return shape{kind: "capital", build: func(c Country) *session {
		return &session{
			kind:     "capital",
			question: fmt.Sprintf("What is the capital of %s?", c.Name),
			answer:   strings.Join(c.Capitals, ", "),
			accepts: func(normalized string) bool {
				return anyMatches(c.Capitals, normalized)
			},
		}
	}}
}

// flagShape accepts either the ISO code or the full country name.
func flagShape() shape {
	return shape{kind: "flag", build: func(c Country) *session {
		return &session{
			kind:     "flag",
			question: fmt.Sprintf("What is the name of the country with this flag %s?", c.Flag),
			answer:   c.Name,
			accepts: func(normalized string) bool {
				return Normalize(c.Code) == normalized || Normalize(c.Name) == normalized
			},
		}
	}}
}

func continentShape() shape {
	return shape{kind: "continent", build: func(c Country) *session {
		return &session{
			kind:     "continent",
			question: fmt.Sprintf("On which continent is %s located?", c.Name),
			answer:   strings.Join(c.Continents, ", "),
			accepts: func(normalized string) bool {
				return anyMatches(c.Continents, normalized)
			},
		}
	}}
}

func languageShape() shape {
	return shape{kind: "language", build: func(c Country) *session {
		return &session{
			kind:     "language",
			question: fmt.Sprintf("What is an official language of %s?", c.Name),
			answer:   strings.Join(c.Languages, ", "),
			accepts: func(normalized string) bool {
				return anyMatches(c.Languages, normalized)
			},
		}
	}}
}
