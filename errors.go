package llmpatch

import (
	"errors"
	"fmt"
)

// FailureKind classifies a pipeline failure for operator-facing records.
type FailureKind string

// Failure kinds.
const (
	KindNoDiff     FailureKind = "no_diff"
	KindStructural FailureKind = "structural_defect"
	KindPolicy     FailureKind = "policy_rejected"
	KindApply      FailureKind = "apply_failed"
	KindGenerate   FailureKind = "generation_failed"
	KindExhausted  FailureKind = "exhausted"
)

// NoDiffError reports that no diff-shaped content was found in the model
// output. This is a normal, repairable outcome, not a fault.
type NoDiffError struct {
	Detail string
}

func (e *NoDiffError) Error() string {
	if e.Detail == "" {
		return "no unified diff found"
	}
	return "no unified diff found: " + e.Detail
}

// StructuralError reports that canonicalization could not produce a valid
// section. Section is the zero-based file-section index; Path names the
// section's file when it could be determined.
type StructuralError struct {
	Section int
	Path    string
	Detail  string
}

func (e *StructuralError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("structural defect in section %d (%s): %s", e.Section, e.Path, e.Detail)
	}
	return fmt.Sprintf("structural defect in section %d: %s", e.Section, e.Detail)
}

// PolicyError reports that a referenced path failed the allow/deny check.
// The whole document is discarded; there is no partial acceptance.
type PolicyError struct {
	Path   string
	Reason string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("patch rejected: %s: %s", e.Reason, e.Path)
}

// ApplyError reports that both apply strategies failed. It carries both
// diagnostic streams verbatim for operator/LLM consumption.
type ApplyError struct {
	StrictErr string
	FuzzyErr  string
}

func (e *ApplyError) Error() string {
	return "git apply failed:\n" + e.StrictErr + "\n---\n3way failed:\n" + e.FuzzyErr
}

// GenerateError reports that the generation collaborator itself failed
// (timeout, transport error). It feeds the same repair loop as the
// structural failures.
type GenerateError struct {
	Err error
}

func (e *GenerateError) Error() string {
	return "generation failed: " + e.Err.Error()
}

func (e *GenerateError) Unwrap() error {
	return e.Err
}

// ExhaustedError is the terminal failure: the attempt bound was reached with
// no successful apply. It carries the last failure and a bounded preview of
// the last raw text so an operator can tell whether the generator or the
// repository state is at fault.
type ExhaustedError struct {
	Attempts   int    // total generation attempts made
	State      State  // furthest state the last attempt reached
	RawPreview string // bounded preview of the last raw text
	Err        error  // last underlying failure
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("exhausted after %d attempts (last state %s): %v", e.Attempts, e.State, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// KindOf classifies an error into a FailureKind. It returns the empty kind
// for errors the pipeline does not own, which the controller treats as fatal
// rather than repairable.
func KindOf(err error) FailureKind {
	var (
		noDiff     *NoDiffError
		structural *StructuralError
		policy     *PolicyError
		apply      *ApplyError
		generate   *GenerateError
		exhausted  *ExhaustedError
	)
	switch {
	case errors.As(err, &exhausted):
		return KindExhausted
	case errors.As(err, &noDiff):
		return KindNoDiff
	case errors.As(err, &structural):
		return KindStructural
	case errors.As(err, &policy):
		return KindPolicy
	case errors.As(err, &apply):
		return KindApply
	case errors.As(err, &generate):
		return KindGenerate
	default:
		return ""
	}
}
