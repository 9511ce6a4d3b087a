package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// TrimAndNormalize trims the input and collapses every whitespace run into a
// single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// NormalizeText is applied to user-facing free text such as session subjects
// and cancellation reasons.
func NormalizeText(s string) string {
	return Pipeline{stripControl, TrimAndNormalize}.Apply(s)
}

// NormalizeObjectID lowercases a hex ObjectID so that equal IDs compare equal
// regardless of how the client cased them.
func NormalizeObjectID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
