// Package sanitize normalizes user input and screens it for prompt-injection
// phrasings before it can reach a prompt.
package sanitize

import (
	"regexp"
	"strings"
)

// URLRedactionToken replaces any URL found in user input.
const URLRedactionToken = "[REDACTED_URL]"

var (
	controlCharsRE = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)
	urlRE          = regexp.MustCompile(`https?://\S+`)
	whitespaceRE   = regexp.MustCompile(`\s+`)
)

// injectionPatterns are heuristic matches for known jailbreak phrasings.
// This is a best-effort deny gate: false negatives are expected, and callers
// must not treat a pass as proof the input is safe.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore (previous|all) instructions`),
	regexp.MustCompile(`(?i)do not follow system`),
	regexp.MustCompile(`(?i)follow these new instructions`),
	regexp.MustCompile(`(?i)execute the following`),
}

// Clean strips control characters, replaces URLs with a fixed redaction
// token, collapses whitespace runs, and trims the result.
func Clean(text string) string {
	text = controlCharsRE.ReplaceAllString(text, " ")
	text = urlRE.ReplaceAllString(text, URLRedactionToken)
	text = whitespaceRE.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// DetectInjection reports whether the text matches any known injection
// pattern. A match means the query must be rejected before any model call.
func DetectInjection(text string) bool {
	for _, p := range injectionPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
