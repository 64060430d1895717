package git_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/fwojciec/llmpatch"
	"github.com/fwojciec/llmpatch/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a temporary git repository with one committed file.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	runGit(t, dir, "init", "-b", "main")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")

	writeFile(t, dir, "src/main.py", "import os\nprint(\"old\")\nprint(\"keep\")\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "Initial commit")

	return dir
}

// runGit executes a git command in the given directory.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "command git %v failed: %s", args, string(output))
	return string(output)
}

// writeFile creates a file with the given content.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunner_Apply(t *testing.T) {
	t.Parallel()

	t.Run("strict apply creates a new file", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)

		diff := "diff --git a/src/a.py b/src/a.py\n" +
			"--- /dev/null\n" +
			"+++ b/src/a.py\n" +
			"@@ -0,0 +1,2 @@\n" +
			"+print(\"hello\")\n" +
			"+print(\"world\")\n"

		mode, err := git.NewRunner(dir).Apply(context.Background(), diff)

		require.NoError(t, err)
		assert.Equal(t, llmpatch.ApplyStrict, mode)

		content, err := os.ReadFile(filepath.Join(dir, "src/a.py"))
		require.NoError(t, err)
		assert.Equal(t, "print(\"hello\")\nprint(\"world\")\n", string(content))
	})

	t.Run("strict apply modifies an existing file", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)

		diff := "diff --git a/src/main.py b/src/main.py\n" +
			"--- a/src/main.py\n" +
			"+++ b/src/main.py\n" +
			"@@ -1,3 +1,3 @@\n" +
			" import os\n" +
			"-print(\"old\")\n" +
			"+print(\"new\")\n" +
			" print(\"keep\")\n"

		mode, err := git.NewRunner(dir).Apply(context.Background(), diff)

		require.NoError(t, err)
		assert.Equal(t, llmpatch.ApplyStrict, mode)

		content, err := os.ReadFile(filepath.Join(dir, "src/main.py"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "print(\"new\")")
	})

	t.Run("double failure carries both diagnostics", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)

		// Context that matches nothing in the tree: strict fails, and the
		// three-way fallback fails too (no index information in the patch).
		diff := "diff --git a/src/main.py b/src/main.py\n" +
			"--- a/src/main.py\n" +
			"+++ b/src/main.py\n" +
			"@@ -1,2 +1,2 @@\n" +
			" totally different context\n" +
			"-never existed\n" +
			"+replacement\n"

		mode, err := git.NewRunner(dir).Apply(context.Background(), diff)

		assert.Equal(t, llmpatch.ApplyNone, mode)
		var applyErr *llmpatch.ApplyError
		require.ErrorAs(t, err, &applyErr)
		assert.NotEmpty(t, applyErr.StrictErr)
		assert.NotEmpty(t, applyErr.FuzzyErr)
	})
}

func TestRunner_LsFiles(t *testing.T) {
	t.Parallel()
	dir := setupTestRepo(t)

	files, err := git.NewRunner(dir).LsFiles(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"src/main.py"}, files)
}
