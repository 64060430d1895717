package llmpatch

import (
	"regexp"
	"strings"
)

// DiffHeader is the token that opens every file section of a unified diff.
const DiffHeader = "diff --git"

// codeFenceRE matches markdown code-fence delimiters with any language tag.
var codeFenceRE = regexp.MustCompile("```[a-zA-Z0-9_+-]*")

// Sanitize strips formatting noise from raw model output: line terminators
// are normalized to LF, code fences are removed regardless of language tag,
// and everything before the first diff header is discarded as prose. Returns
// the empty string when no diff header is present; that is a normal outcome.
func Sanitize(raw string) string {
	t := strings.ReplaceAll(raw, "\r\n", "\n")
	t = strings.ReplaceAll(t, "\r", "\n")
	t = strings.TrimSpace(t)
	if strings.Contains(t, "```") {
		t = strings.TrimSpace(codeFenceRE.ReplaceAllString(t, ""))
	}
	idx := strings.Index(t, DiffHeader)
	if idx < 0 {
		return ""
	}
	t = t[idx:]
	if !strings.HasSuffix(t, "\n") {
		t += "\n"
	}
	return t
}

// LooksLikeDiff is a cheap sanity gate: it requires, in order of appearance,
// a diff header line, an old-file marker, a new-file marker, and a hunk
// marker. A bare "@@" counts as a hunk marker since it is repairable. This
// is intentionally shallow; false routes straight to the repair loop without
// running the canonicalizer.
func LooksLikeDiff(text string) bool {
	s := strings.TrimLeft(text, " \t\n")
	if !strings.HasPrefix(s, DiffHeader) {
		return false
	}
	stage := 0
	for _, line := range strings.Split(s, "\n") {
		switch {
		case stage == 0 && strings.HasPrefix(line, "--- "):
			stage = 1
		case stage == 1 && strings.HasPrefix(line, "+++ "):
			stage = 2
		case stage == 2 && strings.HasPrefix(line, "@@"):
			return true
		}
	}
	return false
}

// Preview returns at most n bytes of the trimmed text, with an ellipsis when
// truncated. Used for operator-facing raw-text previews.
func Preview(text string, n int) string {
	t := strings.TrimSpace(text)
	if len(t) <= n {
		return t
	}
	return t[:n] + "..."
}
