package llmpatch

import (
	"fmt"
	"regexp"
	"strings"
)

// Null-file sentinel spellings models get wrong: with or without the a/b
// root, with or without the leading slash. Both normalize to /dev/null.
var (
	oldNullRE = regexp.MustCompile(`^---\s+(?:a/)?/?dev/null$`)
	newNullRE = regexp.MustCompile(`^\+\+\+\s+(?:b/)?/?dev/null$`)
)

// bareHunkMarker is the placeholder substituted for a bare "@@" until the
// section scan has counted the additions that follow it.
const bareHunkMarker = "@@ __BARE__ @@"

// Canonicalize turns "almost unified diff" text produced by a model into a
// strict unified diff that git can apply. Repairs performed per file section:
//
//   - bare "@@" hunk headers are synthesized to "@@ -0,0 +1,N @@" where N is
//     the count of added lines up to the next structural marker
//   - null-file markers are normalized to the single /dev/null spelling
//   - non-empty hunk-body lines with no recognized prefix become additions
//   - empty hunk-body lines become additions in new-file sections and
//     context lines otherwise, so blank lines are never silently dropped
//   - structural lines emitted mid-hunk close the hunk
//
// A section that ends up with zero hunks is a StructuralError for the whole
// document; no document is accepted partially valid. Canonicalize is
// idempotent on its own output.
func Canonicalize(text string) (string, error) {
	txt := strings.ReplaceAll(text, "\r\n", "\n")
	txt = strings.ReplaceAll(txt, "\r", "\n")
	txt = strings.TrimSpace(txt)

	idx := strings.Index(txt, DiffHeader)
	if idx < 0 {
		return "", &NoDiffError{Detail: "no diff header"}
	}
	txt = txt[idx:]

	var out strings.Builder
	for i, sec := range splitSections(txt) {
		canon, err := canonicalizeSection(sec, i)
		if err != nil {
			return "", err
		}
		out.WriteString(canon)
	}
	return out.String(), nil
}

// splitSections splits diff text into file sections at diff-header-line
// boundaries. The input must already start at a diff header.
func splitSections(txt string) []string {
	var sections []string
	var cur []string
	for _, line := range strings.Split(txt, "\n") {
		if strings.HasPrefix(line, DiffHeader) && len(cur) > 0 {
			sections = append(sections, strings.Join(cur, "\n"))
			cur = cur[:0]
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		sections = append(sections, strings.Join(cur, "\n"))
	}
	return sections
}

func canonicalizeSection(sec string, index int) (string, error) {
	lines := strings.Split(strings.TrimRight(sec, "\n"), "\n")
	out := make([]string, 0, len(lines))

	inHunk := false
	pendingBare := false
	bareAdded := 0
	newFile := false
	hunks := 0

	for _, line := range lines {
		line = strings.TrimRight(line, " \t")

		// Structural lines always reset hunk state, even mid-hunk: a model
		// emitting one while "inside" a hunk is a hunk-closing signal.
		switch {
		case strings.HasPrefix(line, DiffHeader+" "):
			inHunk, pendingBare = false, false
			out = append(out, line)
			continue
		case strings.HasPrefix(line, "--- "):
			inHunk, pendingBare = false, false
			if oldNullRE.MatchString(line) {
				line = "--- /dev/null"
				newFile = true
			}
			out = append(out, line)
			continue
		case strings.HasPrefix(line, "+++ "):
			inHunk, pendingBare = false, false
			if newNullRE.MatchString(line) {
				line = "+++ /dev/null"
			}
			out = append(out, line)
			continue
		case strings.HasPrefix(line, "@@ "):
			inHunk, pendingBare = true, false
			hunks++
			out = append(out, line)
			continue
		case strings.TrimSpace(line) == "@@":
			inHunk, pendingBare = true, true
			bareAdded = 0
			hunks++
			out = append(out, bareHunkMarker)
			continue
		}

		if !inHunk {
			// Metadata between markers (e.g. "index" lines) passes through.
			out = append(out, line)
			continue
		}

		switch {
		case line == "":
			if newFile {
				out = append(out, "+")
				if pendingBare {
					bareAdded++
				}
			} else {
				out = append(out, " ")
			}
		case line[0] == '+' || line[0] == '-' || line[0] == ' ' || line[0] == '\\':
			out = append(out, line)
			if pendingBare && line[0] == '+' {
				bareAdded++
			}
		default:
			// Missing prefix: treat as an implied addition. This is the only
			// reconstructable interpretation once the leading column is gone.
			out = append(out, "+"+line)
			if pendingBare {
				bareAdded++
			}
		}
	}

	if hunks == 0 {
		return "", &StructuralError{
			Section: index,
			Path:    sectionPath(out),
			Detail:  "no hunks after repair",
		}
	}

	for i, ln := range out {
		if ln == bareHunkMarker {
			n := bareAdded
			if n <= 0 {
				n = 1
			}
			out[i] = fmt.Sprintf("@@ -0,0 +1,%d @@", n)
		}
	}

	return strings.Join(out, "\n") + "\n", nil
}

// sectionPath extracts the section's file path from its new-file (or, for
// deletions, old-file) marker, for error messages.
func sectionPath(lines []string) string {
	for _, prefix := range []string{"+++ b/", "--- a/"} {
		for _, ln := range lines {
			if strings.HasPrefix(ln, prefix) {
				return strings.TrimSpace(ln[len(prefix):])
			}
		}
	}
	return ""
}
