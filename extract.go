package llmpatch

import (
	"encoding/json"
	"regexp"
	"strings"
)

// patchEnvelope mirrors the JSON object the generator is instructed to
// return: {"patch": "...", "notes": "..."}.
type patchEnvelope struct {
	Patch string `json:"patch"`
	Notes string `json:"notes"`
}

// jsonObjectRE finds a JSON object embedded in surrounding prose.
var jsonObjectRE = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractPatch pulls the patch text and notes out of raw model output.
// It accepts, in order of preference: the whole string as a JSON envelope,
// a JSON envelope embedded in extra text, or a raw unified diff starting at
// the first diff header. Returns empty strings when none of those match.
func ExtractPatch(raw string) (patch, notes string) {
	t := strings.TrimSpace(raw)

	if strings.HasPrefix(t, "{") {
		if p, n, ok := decodeEnvelope(t); ok {
			return p, n
		}
	}

	if m := jsonObjectRE.FindString(t); m != "" {
		if p, n, ok := decodeEnvelope(m); ok {
			return p, n
		}
	}

	if idx := strings.Index(t, DiffHeader); idx >= 0 {
		return strings.TrimSpace(t[idx:]), ""
	}

	return "", ""
}

func decodeEnvelope(s string) (patch, notes string, ok bool) {
	var env patchEnvelope
	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return "", "", false
	}
	return strings.TrimSpace(env.Patch), strings.TrimSpace(env.Notes), true
}
