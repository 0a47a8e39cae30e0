// Package verdict classifies free text into a trial outcome.
//
// The extractor is a pure function with two call sites: the scripted
// judge-verdict turn in the trial scheduler, and the passive scan of
// assistant replies in the chat session. It deliberately stays out of the
// tool-dispatch control flow.
package verdict

import (
	"strings"

	"tribunal/internal/types"
)

// Negative phrases are checked before the positive ones. "NOT GUILTY"
// contains "GUILTY" as a substring, so the ordering is a correctness
// invariant, not a style choice.
var notGuiltyPhrases = []string{
	"not guilty",
	"not-guilty",
	"acquitted",
	"acquittal",
}

var guiltyPhrases = []string{
	"guilty",
	"convicted",
	"conviction",
}

// Extract maps free text to a verdict. Case-insensitive. Returns
// VerdictNone when no verdict phrase is present.
func Extract(text string) types.Verdict {
	folded := strings.ToLower(text)

	for _, p := range notGuiltyPhrases {
		if strings.Contains(folded, p) {
			return types.VerdictNotGuilty
		}
	}
	for _, p := range guiltyPhrases {
		if strings.Contains(folded, p) {
			return types.VerdictGuilty
		}
	}
	return types.VerdictNone
}

// Indicates reports whether the text contains a verdict-indicating phrase.
// Used to gate the passive chat scan before paying for a full extraction.
func Indicates(text string) bool {
	folded := strings.ToLower(text)
	if strings.Contains(folded, "verdict") {
		return true
	}
	return Extract(text) != types.VerdictNone
}
