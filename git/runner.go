// Package git provides access to git operations via shell commands.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/fwojciec/llmpatch"
)

// Compile-time interface verification.
var _ llmpatch.Applier = (*Runner)(nil)

// Runner executes git commands via shell against a single working tree.
type Runner struct {
	dir string
}

// NewRunner creates a runner for the working tree at dir. An empty dir means
// the current directory.
func NewRunner(dir string) *Runner {
	return &Runner{dir: dir}
}

// Apply feeds the canonical diff to "git apply" on stdin, escalating from a
// strict attempt to a three-way attempt. Both attempts run even when the
// strict failure looks unrelated to content drift; misclassifying the strict
// failure is more costly than one extra attempt. A double failure returns
// *llmpatch.ApplyError carrying both stderr streams verbatim.
func (r *Runner) Apply(ctx context.Context, diff string) (llmpatch.ApplyMode, error) {
	strictErr, err := r.apply(ctx, diff, "--whitespace=fix")
	if err != nil {
		return llmpatch.ApplyNone, err
	}
	if strictErr == "" {
		return llmpatch.ApplyStrict, nil
	}

	fuzzyErr, err := r.apply(ctx, diff, "--3way", "--whitespace=fix")
	if err != nil {
		return llmpatch.ApplyNone, err
	}
	if fuzzyErr == "" {
		return llmpatch.ApplyThreeWay, nil
	}

	return llmpatch.ApplyNone, &llmpatch.ApplyError{StrictErr: strictErr, FuzzyErr: fuzzyErr}
}

// apply runs one "git apply" invocation. It returns the trimmed stderr text
// when git rejects the patch, and a non-nil error only when the subprocess
// itself could not run; the caller treats that as fatal.
func (r *Runner) apply(ctx context.Context, diff string, flags ...string) (string, error) {
	args := make([]string, 0, len(flags)+3)
	if r.dir != "" {
		args = append(args, "-C", r.dir)
	}
	args = append(args, "apply")
	args = append(args, flags...)

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Stdin = strings.NewReader(diff)
	if _, err := cmd.Output(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			msg := strings.TrimSpace(string(exitErr.Stderr))
			if msg == "" {
				msg = exitErr.String()
			}
			return msg, nil
		}
		return "", fmt.Errorf("git apply failed to run: %w", err)
	}
	return "", nil
}

// LsFiles returns the tracked file paths of the working tree, for prompt
// context.
func (r *Runner) LsFiles(ctx context.Context) ([]string, error) {
	args := []string{}
	if r.dir != "" {
		args = append(args, "-C", r.dir)
	}
	args = append(args, "ls-files")

	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("git ls-files failed: %s", string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("git ls-files failed: %w", err)
	}

	var files []string
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}
