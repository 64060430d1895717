// Package fs persists run context files under the agent work directory.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultDir is the default agent work directory.
const DefaultDir = ".ai"

// IssueWriter writes the issue context file a run was started from, so the
// generated branch carries a durable record of what it implements.
type IssueWriter struct {
	dir string
	now func() time.Time
}

// NewIssueWriter creates a writer rooted at dir. An empty dir means
// DefaultDir.
func NewIssueWriter(dir string) *IssueWriter {
	if dir == "" {
		dir = DefaultDir
	}
	return &IssueWriter{dir: dir, now: time.Now}
}

// Write persists the issue as markdown and returns the file path.
func (w *IssueWriter) Write(number int, title, body string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", w.dir, err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("issue-%d.md", number))
	content := fmt.Sprintf("# Issue %d\n\n## Title\n%s\n\n## Body\n%s\n\n## Generated\n%s\n",
		number, title, body, w.now().UTC().Format(time.RFC3339))

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
