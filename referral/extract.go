// Package referral extracts and segments referral phrases from clinical
// notes.
package referral

import (
	"regexp"
	"strings"
)

var recommendationPattern = regexp.MustCompile(`(?i)(Recommendation|Exam):\s*([^.\n]+)`)

// ExtractRecommendation pulls the referral phrase out of a raw note. The
// first labeled section ("Recommendation:" or "Exam:", any case) wins, with
// the capture running up to the next period or newline. Without a label the
// note is flattened onto one line, trimmed, and a single trailing period
// dropped.
func ExtractRecommendation(text string) string {
	if match := recommendationPattern.FindStringSubmatch(text); match != nil {
		return strings.TrimSpace(match[2])
	}

	flattened := strings.ReplaceAll(text, "\n", " ")
	flattened = strings.TrimSpace(flattened)
	return strings.TrimSuffix(flattened, ".")
}
