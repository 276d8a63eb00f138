package utils

import (
	"regexp"
	"strings"
)

// RemoveAngleBracketContent strips angle brackets and their content, used to
// drop reasoning tags from generative model output before parsing.
func RemoveAngleBracketContent(text string) string {
	re := regexp.MustCompile(`<[^>]*>`)
	return re.ReplaceAllString(text, "")
}

// RemoveControlCharacters removes control characters, keeping newlines and tabs.
func RemoveControlCharacters(text string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, text)
}

// Truncate shortens a string for log output.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// ClampScore bounds a match score to the canonical 0-100 scale.
func ClampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
