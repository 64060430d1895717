package llmpatch

import "strings"

// Rejection reasons reported in PathDecision and PolicyError.
const (
	ReasonDeniedFile   = "attempted to modify forbidden file"
	ReasonDeniedPrefix = "attempted to modify forbidden path"
	ReasonNotAllowed   = "attempted to modify non-allowed path"
)

// Policy is the immutable path allow/deny configuration supplied at pipeline
// construction. Deny rules take precedence over allow rules; a path that
// matches neither list is rejected.
type Policy struct {
	AllowExact    []string
	AllowPrefixes []string
	DenyExact     []string
	DenyPrefixes  []string
}

// DefaultPolicy returns the safety rails used when no configuration is
// supplied: source, test, and agent directories are writable, CI workflow
// and build manifests are not.
func DefaultPolicy() Policy {
	return Policy{
		AllowExact:    []string{"README.md"},
		AllowPrefixes: []string{"agents/", "tests/", "src/", ".ai/"},
		DenyExact:     []string{"pyproject.toml", "docker-compose.yml", "Dockerfile"},
		DenyPrefixes:  []string{".github/workflows/"},
	}
}

// PathDecision is the policy verdict for a single referenced path.
type PathDecision struct {
	Path    string
	Allowed bool
	Reason  string // populated when rejected
}

// Check walks every file path referenced by the document and returns one
// decision per path. Null-file sentinels never appear here: canonicalization
// normalizes them before parsing and the parser drops them from the
// document. The document is acceptable only if every decision is allowed;
// there is no support for applying an "allowed subset" of a multi-file
// patch.
func (p Policy) Check(doc *Document) []PathDecision {
	var decisions []PathDecision
	for _, f := range doc.Files {
		for _, path := range referencedPaths(f) {
			decisions = append(decisions, p.decide(path))
		}
	}
	return decisions
}

// Rejection returns the first rejected decision as a PolicyError, or nil
// when every decision is allowed.
func Rejection(decisions []PathDecision) *PolicyError {
	for _, d := range decisions {
		if !d.Allowed {
			return &PolicyError{Path: d.Path, Reason: d.Reason}
		}
	}
	return nil
}

func (p Policy) decide(path string) PathDecision {
	for _, name := range p.DenyExact {
		if path == name {
			return PathDecision{Path: path, Reason: ReasonDeniedFile}
		}
	}
	for _, prefix := range p.DenyPrefixes {
		if strings.HasPrefix(path, prefix) {
			return PathDecision{Path: path, Reason: ReasonDeniedPrefix}
		}
	}
	for _, name := range p.AllowExact {
		if path == name {
			return PathDecision{Path: path, Allowed: true}
		}
	}
	for _, prefix := range p.AllowPrefixes {
		if strings.HasPrefix(path, prefix) {
			return PathDecision{Path: path, Allowed: true}
		}
	}
	return PathDecision{Path: path, Reason: ReasonNotAllowed}
}

// referencedPaths returns the file's old and new paths, skipping empty sides
// and collapsing the common case where both markers name the same path.
func referencedPaths(f FileDiff) []string {
	if f.OldPath == f.NewPath {
		if f.NewPath == "" {
			return nil
		}
		return []string{f.NewPath}
	}
	var paths []string
	if f.OldPath != "" {
		paths = append(paths, f.OldPath)
	}
	if f.NewPath != "" {
		paths = append(paths, f.NewPath)
	}
	return paths
}
