package llmpatch

import (
	"context"
	"fmt"
	"strings"
)

// State identifies how far through the pipeline an attempt got. It is
// reported in attempt records and in the terminal ExhaustedError.
type State string

// Pipeline states, in order of progression.
const (
	StateFresh         State = "fresh"
	StateSanitized     State = "sanitized"
	StateValidated     State = "validated"
	StateCanonicalized State = "canonicalized"
	StatePolicyChecked State = "policy_checked"
	StateApplied       State = "applied"
)

// Defaults for Config zero values.
const (
	DefaultMaxAttempts  = 3     // 1 initial + up to 2 repairs
	DefaultPreviewBytes = 500   // raw-text preview length
	DefaultMaxDiffBytes = 12000 // sanitized diff size cap
)

// Config holds the immutable pipeline configuration.
type Config struct {
	Policy       Policy
	Model        string // generation model name, consumed by the generator adapter
	MaxAttempts  int    // total generation attempts; 0 means DefaultMaxAttempts
	PreviewBytes int    // raw-text preview length; 0 means DefaultPreviewBytes
	MaxDiffBytes int    // reject sanitized diffs larger than this; 0 means DefaultMaxDiffBytes
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		Policy:       DefaultPolicy(),
		MaxAttempts:  DefaultMaxAttempts,
		PreviewBytes: DefaultPreviewBytes,
		MaxDiffBytes: DefaultMaxDiffBytes,
	}
}

func (c Config) maxAttempts() int {
	if c.MaxAttempts > 0 {
		return c.MaxAttempts
	}
	return DefaultMaxAttempts
}

func (c Config) previewBytes() int {
	if c.PreviewBytes > 0 {
		return c.PreviewBytes
	}
	return DefaultPreviewBytes
}

func (c Config) maxDiffBytes() int {
	if c.MaxDiffBytes > 0 {
		return c.MaxDiffBytes
	}
	return DefaultMaxDiffBytes
}

// Result is the structured success record for a pipeline run.
type Result struct {
	Attempts  int       // generation attempts consumed, including the successful one
	Mode      ApplyMode // which strategy applied
	Diff      string    // canonical diff text actually applied
	Notes     string    // generator notes from the accepted attempt
	Formatted string    // formatter message, empty when no formatter is wired
}

// Pipeline is the repair loop controller. Generator, Parser, and Applier are
// required; Formatter and Recorder are optional. The pipeline is synchronous
// per invocation: one diff is generated, canonicalized, checked, and applied
// before the next repair attempt is requested.
type Pipeline struct {
	Generator Generator
	Parser    Parser
	Applier   Applier
	Formatter Formatter // optional, best-effort after a successful apply
	Recorder  Recorder  // optional attempt audit sink
	Config    Config
}

// Run drives the bounded repair loop: generate, sanitize, validate,
// canonicalize, policy-check, apply. Each failed attempt feeds its failure
// reason into the next generation request and re-enters the pipeline with
// brand-new raw text; nothing from a failed attempt is reused. At the
// attempt bound it returns *ExhaustedError. Errors the pipeline does not
// own (e.g. the apply subprocess is unavailable) abort the loop and escape
// as-is.
func (p *Pipeline) Run(ctx context.Context, req GenerateRequest) (*Result, error) {
	if p.Generator == nil || p.Parser == nil || p.Applier == nil {
		return nil, fmt.Errorf("llmpatch: pipeline requires Generator, Parser, and Applier")
	}

	maxAttempts := p.Config.maxAttempts()
	var lastErr error
	var lastRaw string
	lastState := StateFresh

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		greq := req
		greq.Attempt = attempt
		if lastErr != nil {
			greq.Failure = lastErr.Error()
		}

		raw, err := p.Generator.Generate(ctx, greq)
		if err != nil {
			lastErr = &GenerateError{Err: err}
			lastState = StateFresh
			p.record(attempt, StateFresh, "", lastErr, raw)
			continue
		}
		lastRaw = raw

		res, state, err := p.attempt(ctx, raw)
		if err == nil {
			res.Attempts = attempt
			p.record(attempt, StateApplied, res.Mode.String(), nil, raw)
			return res, nil
		}
		if KindOf(err) == "" {
			// Not a pipeline-owned failure: fatal, not repairable.
			return nil, err
		}
		lastErr, lastState = err, state
		p.record(attempt, state, "", err, raw)
	}

	return nil, &ExhaustedError{
		Attempts:   maxAttempts,
		State:      lastState,
		RawPreview: Preview(lastRaw, p.Config.previewBytes()),
		Err:        lastErr,
	}
}

// attempt runs one full pass over fresh raw text. It returns the furthest
// state reached alongside any failure.
func (p *Pipeline) attempt(ctx context.Context, raw string) (*Result, State, error) {
	state := StateFresh

	patch, notes := ExtractPatch(raw)
	clean := Sanitize(patch)
	if clean == "" {
		return nil, state, &NoDiffError{Detail: "no diff header in model output"}
	}
	if limit := p.Config.maxDiffBytes(); len(clean) > limit {
		// Oversized output is rejected whole rather than truncated mid-hunk;
		// the repair loop asks for a smaller patch instead.
		return nil, state, &NoDiffError{Detail: fmt.Sprintf("diff too large: %d bytes (limit %d)", len(clean), limit)}
	}
	state = StateSanitized

	if !LooksLikeDiff(clean) {
		return nil, state, &NoDiffError{Detail: "output does not have unified diff shape"}
	}
	state = StateValidated

	canon, err := Canonicalize(clean)
	if err != nil {
		return nil, state, err
	}
	doc, err := p.Parser.Parse(strings.NewReader(canon))
	if err != nil {
		return nil, state, &StructuralError{Detail: fmt.Sprintf("canonical diff failed to parse: %v", err)}
	}
	doc.Text = canon
	if err := validateDocument(doc); err != nil {
		return nil, state, err
	}
	state = StateCanonicalized

	if err := Rejection(p.Config.Policy.Check(doc)); err != nil {
		return nil, state, err
	}
	state = StatePolicyChecked

	mode, err := p.Applier.Apply(ctx, doc.Text)
	if err != nil {
		return nil, state, err
	}
	state = StateApplied

	res := &Result{Mode: mode, Diff: doc.Text, Notes: notes}
	if p.Formatter != nil {
		msg, ferr := p.Formatter.Format(ctx)
		if ferr != nil {
			msg = fmt.Sprintf("format skipped: %v", ferr)
		}
		res.Formatted = msg
	}
	return res, state, nil
}

// validateDocument enforces the post-canonicalization invariants on the
// parsed document: at least one file section, and at least one hunk per
// non-binary section.
func validateDocument(doc *Document) error {
	if len(doc.Files) == 0 {
		return &NoDiffError{Detail: "canonical diff contains no file sections"}
	}
	for i, f := range doc.Files {
		if len(f.Hunks) == 0 && !f.IsBinary {
			return &StructuralError{Section: i, Path: f.Path(), Detail: "no hunks"}
		}
	}
	return nil
}

func (p *Pipeline) record(attempt int, state State, mode string, err error, raw string) {
	if p.Recorder == nil {
		return
	}
	rec := AttemptRecord{
		Attempt:    attempt,
		State:      state,
		Mode:       mode,
		RawPreview: Preview(raw, p.Config.previewBytes()),
	}
	if err != nil {
		rec.Kind = KindOf(err)
		rec.Failure = err.Error()
	}
	_ = p.Recorder.Record(rec)
}
