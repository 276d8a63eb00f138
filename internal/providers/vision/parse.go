package vision

import (
	"regexp"
	"strconv"
	"strings"

	"facegate-server-go/internal/utils"
)

// Model prose varies wildly, so extraction walks a fixed priority order: an
// explicit confidence token, then an explicit score token, then a bare
// percentage. Only score tokens at or below 1.0 are fractions that scale to
// 0-100. A confidence of 1 or a bare 1% already sits on the percent scale.
var (
	confidencePattern = regexp.MustCompile(`(?i)confidence[^0-9]{0,10}([0-9]+(?:\.[0-9]+)?)`)
	scorePattern      = regexp.MustCompile(`(?i)score[^0-9]{0,10}([0-9]+(?:\.[0-9]+)?)`)
	percentPattern    = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*%`)

	negativeCues = []string{"no match", "not match", "different"}
	positiveCues = []string{"yes", "true", "positive"}
)

// ParseVerdict extracts a match verdict and a 0-100 score from free-text
// model output. Unparsable text yields the safe default of no match at score
// zero rather than an error.
func ParseVerdict(text string) (bool, float64) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return false, 0
	}

	score, hasScore := extractScore(lower)

	negated := false
	for _, cue := range negativeCues {
		if strings.Contains(lower, cue) {
			negated = true
			break
		}
	}

	if negated {
		return false, score
	}

	if strings.Contains(lower, "match") {
		for _, cue := range positiveCues {
			if strings.Contains(lower, cue) {
				return true, score
			}
		}
	}

	// No explicit cue either way. A high score with no negation reads as a
	// match.
	if hasScore && score >= 70 {
		return true, score
	}

	return false, score
}

func extractScore(lower string) (float64, bool) {
	for _, pattern := range []*regexp.Regexp{confidencePattern, scorePattern, percentPattern} {
		m := pattern.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if pattern == scorePattern && value <= 1.0 {
			value *= 100
		}
		return utils.ClampScore(value), true
	}
	return 0, false
}
