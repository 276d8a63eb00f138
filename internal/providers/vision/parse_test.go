package vision

import "testing"

func TestParseVerdict(t *testing.T) {
	cases := []struct {
		name      string
		text      string
		wantMatch bool
		wantScore float64
	}{
		{"explicit yes with confidence", "Match: Yes, Confidence: 92%", true, 92},
		{"negative with fractional score", "No match found, score: 0.15", false, 15},
		{"unparsable", "unclear", false, 0},
		{"empty", "", false, 0},
		{"confidence beats score", "score: 40, confidence: 88", true, 88},
		{"fractional score", "The faces match, positive. Score: 0.97", true, 97},
		{"confidence of one stays literal", "Match: yes, confidence: 1", true, 1},
		{"bare one percent stays literal", "Only a 1% resemblance here.", false, 1},
		{"bare percentage only", "These appear to be the same person, 85% similar.", true, 85},
		{"high score without cue infers match", "Similarity score: 90", true, 90},
		{"low score without cue", "Similarity score: 45", false, 45},
		{"different faces", "The two photos show different people. Confidence: 95%", false, 95},
		{"not matching", "The selfie is not matching the document, confidence: 80", false, 80},
		{"match true cue", "match: true, score: 75", true, 75},
		{"clamps over 100", "match: yes, confidence: 250", true, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotMatch, gotScore := ParseVerdict(tc.text)
			if gotMatch != tc.wantMatch || gotScore != tc.wantScore {
				t.Errorf("ParseVerdict(%q) = (%v, %v), want (%v, %v)",
					tc.text, gotMatch, gotScore, tc.wantMatch, tc.wantScore)
			}
		})
	}
}

func TestParseVerdictDeterministic(t *testing.T) {
	text := "Match: Yes, Confidence: 92%"
	m1, s1 := ParseVerdict(text)
	m2, s2 := ParseVerdict(text)
	if m1 != m2 || s1 != s2 {
		t.Errorf("ParseVerdict not deterministic: (%v,%v) vs (%v,%v)", m1, s1, m2, s2)
	}
}
