// Package llmpatch turns untrusted, frequently malformed diff text produced
// by a language model into a strict unified diff that can be safely applied
// to a working tree.
package llmpatch

import (
	"context"
	"io"
)

// Document is a canonicalized multi-file diff: the strict serialized text
// plus its parsed structure. A Document is built fresh per pipeline attempt
// and never mutated after canonicalization.
type Document struct {
	Text  string // strict unified diff text, as fed to the apply subprocess
	Files []FileDiff
}

// FileDiff represents changes to a single file.
type FileDiff struct {
	OldPath   string // path on the old side, empty for new files
	NewPath   string // path on the new side, empty for deleted files
	Operation FileOp
	IsBinary  bool
	Hunks     []Hunk
}

// Path returns the canonical path for the file: the new path, falling back
// to the old path for deletions.
func (f FileDiff) Path() string {
	if f.NewPath != "" {
		return f.NewPath
	}
	return f.OldPath
}

// FileOp represents the type of operation performed on a file.
type FileOp int

// File operation types.
const (
	FileModified FileOp = iota
	FileAdded
	FileDeleted
)

// Hunk represents a contiguous block of changes within a file.
type Hunk struct {
	OldStart int // From @@ -X,...
	OldCount int // From @@ -X,Y ...
	NewStart int // From @@ ...,+X
	NewCount int // From @@ ...,+X,Y
	Lines    []Line
}

// Line represents a single line within a hunk.
type Line struct {
	Type      LineType
	Content   string
	NoNewline bool // "\ No newline at end of file" marker
}

// LineType represents the type of a diff line.
type LineType int

// Line types.
const (
	LineContext LineType = iota
	LineAdded
	LineDeleted
)

// ApplyMode identifies which apply strategy succeeded.
type ApplyMode int

// Apply strategies, in escalation order.
const (
	ApplyNone     ApplyMode = iota // nothing applied
	ApplyStrict                    // exact context match at declared offsets
	ApplyThreeWay                  // fuzzy/three-way merge against drifted content
)

// String returns the operator-facing name of the mode.
func (m ApplyMode) String() string {
	switch m {
	case ApplyStrict:
		return "strict"
	case ApplyThreeWay:
		return "3way"
	default:
		return "none"
	}
}

// GenerateRequest carries the context the generation collaborator needs to
// produce (or repair) a patch.
type GenerateRequest struct {
	IssueTitle string
	IssueBody  string
	Review     string // latest reviewer feedback, may be empty
	FileTree   string // bounded repository file listing for prompt grounding
	Failure    string // why the previous attempt failed, empty on the first
	Attempt    int    // 1-based attempt number
}

// Generator obtains raw patch text from the external generation collaborator.
// The returned string has no structural guarantees.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Parser parses strict unified diff text into a Document.
type Parser interface {
	Parse(r io.Reader) (*Document, error)
}

// Applier applies canonical diff text to the working tree, escalating from
// strict to fuzzy/three-way. A double failure is reported as *ApplyError.
type Applier interface {
	Apply(ctx context.Context, diff string) (ApplyMode, error)
}

// Formatter runs the external code formatter after a successful apply.
// It is best-effort: a formatter failure never fails the pipeline attempt.
type Formatter interface {
	Format(ctx context.Context) (string, error)
}

// AttemptRecord is the audit record emitted once per pipeline attempt.
type AttemptRecord struct {
	Attempt    int         `json:"attempt"`
	State      State       `json:"state"`
	Mode       string      `json:"mode,omitempty"`
	Kind       FailureKind `json:"kind,omitempty"`
	Failure    string      `json:"failure,omitempty"`
	RawPreview string      `json:"raw_preview,omitempty"`
}

// Recorder receives attempt records for operator visibility. Recording is
// best-effort: a recorder failure never affects the pipeline outcome.
type Recorder interface {
	Record(rec AttemptRecord) error
}
