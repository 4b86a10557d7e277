package grades

import "strings"

// ExtractSequence pulls an ordered grade sequence out of a grade-only text
// rendering, such as the webpage grade list the reconciler cross-checks
// against. Tokens that do not resolve into the allowed set are skipped;
// what survives is the grade sequence in reading order.
func ExtractSequence(text string) []string {
	var sequence []string
	for _, line := range strings.Split(text, "\n") {
		for _, token := range strings.Fields(line) {
			if normalized, ok := Normalize(token); ok {
				sequence = append(sequence, normalized)
			}
		}
	}
	return sequence
}
