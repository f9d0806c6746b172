// Package sanitize cleans raw completion output and decides whether it is
// worth relaying. Providers echo speaker labels, pad with whitespace, or
// emit low-information filler; none of that should reach the channel.
package sanitize

import (
	"regexp"
	"strings"
)

const (
	DefaultMinLength = 3
	DefaultMaxLength = 2000

	// Ellipsis marker appended when Clean truncates.
	truncationMarker = " …"
)

var (
	// Leading speaker labels some models prepend to their own turn.
	speakerLabelPattern = regexp.MustCompile(`(?i)^\s*(assistant|bot|ai|system|user)\s*:\s*`)

	// Runs of horizontal whitespace and excess blank lines.
	spaceRunPattern     = regexp.MustCompile(`[ \t]+`)
	blankRunPattern     = regexp.MustCompile(`\n{3,}`)
	spaceAroundNewlines = regexp.MustCompile(`[ \t]*\n[ \t]*`)

	// Low-information replies: bare greetings and acknowledgements.
	bareFillerPattern = regexp.MustCompile(`(?i)^(hi|hiya|hello|hey|yo|ok|okay|k|sure|yes|yep|yeah|no|nope|nah|thanks|thank you|lol|hmm+|uh+)[\s.!?…]*$`)

	// Apology/refusal boilerplate openings.
	refusalPattern = regexp.MustCompile(`(?i)^(i'?m sorry\b|i am sorry\b|i apologi[sz]e\b|my apologies\b|as an ai\b|i can(?:not|'?t) (?:help|assist|do)\b)`)
)

type Sanitizer struct {
	minLength int
	maxLength int
}

func New(minLength, maxLength int) *Sanitizer {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Sanitizer{minLength: minLength, maxLength: maxLength}
}

// Clean strips speaker labels, normalizes whitespace, and truncates to the
// maximum length. It is applied before IsValid, so over-long output is
// restored to validity here rather than rejected there.
func (s *Sanitizer) Clean(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = speakerLabelPattern.ReplaceAllString(text, "")
	text = spaceAroundNewlines.ReplaceAllString(text, "\n")
	text = blankRunPattern.ReplaceAllString(text, "\n\n")
	text = spaceRunPattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	return Truncate(text, s.maxLength)
}

// IsValid rejects empty, too-short, too-long, and deny-listed text. A reply
// is relayed only when IsValid(Clean(raw)) holds.
func (s *Sanitizer) IsValid(text string) bool {
	runes := []rune(text)
	if len(runes) < s.minLength || len(runes) > s.maxLength {
		return false
	}
	if bareFillerPattern.MatchString(text) {
		return false
	}
	if refusalPattern.MatchString(text) {
		return false
	}
	if hasRepeatedRun(runes, 5) {
		return false
	}
	return true
}

// Truncate caps text at max runes, replacing the tail with an ellipsis
// marker when it cuts.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	marker := []rune(truncationMarker)
	if max <= len(marker) {
		return string(runes[:max])
	}
	return string(runes[:max-len(marker)]) + truncationMarker
}

// hasRepeatedRun reports a run of n or more identical characters. RE2 has
// no backreferences, so this is a plain scan.
func hasRepeatedRun(runes []rune, n int) bool {
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}
