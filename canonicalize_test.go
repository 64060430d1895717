package llmpatch_test

import (
	"testing"

	"github.com/fwojciec/llmpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize_BareHunkHeader(t *testing.T) {
	t.Parallel()

	input := "diff --git a/src/a.py b/src/a.py\n" +
		"--- /dev/null\n" +
		"+++ b/src/a.py\n" +
		"@@\n" +
		"print(\"a\")\n" +
		"print(\"b\")\n"

	got, err := llmpatch.Canonicalize(input)

	require.NoError(t, err)
	want := "diff --git a/src/a.py b/src/a.py\n" +
		"--- /dev/null\n" +
		"+++ b/src/a.py\n" +
		"@@ -0,0 +1,2 @@\n" +
		"+print(\"a\")\n" +
		"+print(\"b\")\n"
	assert.Equal(t, want, got)
}

func TestCanonicalize_BareHunkHeaderZeroAdditions(t *testing.T) {
	t.Parallel()

	input := "diff --git a/src/a.py b/src/a.py\n" +
		"--- /dev/null\n" +
		"+++ b/src/a.py\n" +
		"@@\n"

	got, err := llmpatch.Canonicalize(input)

	require.NoError(t, err)
	assert.Contains(t, got, "@@ -0,0 +1,1 @@")
}

func TestCanonicalize_NullSentinelSpellings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "old without slash", line: "--- dev/null", want: "--- /dev/null"},
		{name: "old with root prefix", line: "--- a/dev/null", want: "--- /dev/null"},
		{name: "old canonical", line: "--- /dev/null", want: "--- /dev/null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			input := "diff --git a/src/a.py b/src/a.py\n" +
				tt.line + "\n" +
				"+++ b/src/a.py\n" +
				"@@ -0,0 +1,1 @@\n" +
				"+x\n"

			got, err := llmpatch.Canonicalize(input)

			require.NoError(t, err)
			assert.Contains(t, got, tt.want+"\n")
			assert.NotContains(t, got, "--- dev/null\n")
			assert.NotContains(t, got, "--- a/dev/null\n")
		})
	}

	t.Run("new side with root prefix", func(t *testing.T) {
		t.Parallel()

		input := "diff --git a/src/a.py b/src/a.py\n" +
			"--- a/src/a.py\n" +
			"+++ b/dev/null\n" +
			"@@ -1,1 +0,0 @@\n" +
			"-x\n"

		got, err := llmpatch.Canonicalize(input)

		require.NoError(t, err)
		assert.Contains(t, got, "+++ /dev/null\n")
	})
}

func TestCanonicalize_ImpliedAddition(t *testing.T) {
	t.Parallel()

	// A non-empty hunk-body line with no recognized prefix becomes an
	// addition, even when it may have been meant as context.
	input := "diff --git a/src/a.py b/src/a.py\n" +
		"--- a/src/a.py\n" +
		"+++ b/src/a.py\n" +
		"@@ -1,2 +1,3 @@\n" +
		" keep\n" +
		"inserted\n" +
		" keep2\n"

	got, err := llmpatch.Canonicalize(input)

	require.NoError(t, err)
	assert.Contains(t, got, "\n+inserted\n")
}

func TestCanonicalize_EmptyLinesInsideHunk(t *testing.T) {
	t.Parallel()

	t.Run("addition prefix in new-file section", func(t *testing.T) {
		t.Parallel()

		input := "diff --git a/src/a.py b/src/a.py\n" +
			"--- /dev/null\n" +
			"+++ b/src/a.py\n" +
			"@@\n" +
			"first\n" +
			"\n" +
			"second\n"

		got, err := llmpatch.Canonicalize(input)

		require.NoError(t, err)
		assert.Contains(t, got, "@@ -0,0 +1,3 @@")
		assert.Contains(t, got, "+first\n+\n+second\n")
	})

	t.Run("context prefix in existing-file section", func(t *testing.T) {
		t.Parallel()

		input := "diff --git a/src/a.py b/src/a.py\n" +
			"--- a/src/a.py\n" +
			"+++ b/src/a.py\n" +
			"@@ -1,3 +1,4 @@\n" +
			" keep\n" +
			"\n" +
			"+added\n" +
			" keep2\n"

		got, err := llmpatch.Canonicalize(input)

		require.NoError(t, err)
		assert.Contains(t, got, " keep\n \n+added\n keep2\n")
	})
}

func TestCanonicalize_StructuralLineClosesHunk(t *testing.T) {
	t.Parallel()

	// The second file's markers arrive while the first hunk is still "open";
	// they must be treated as structural, not as hunk content.
	input := "diff --git a/src/a.py b/src/a.py\n" +
		"--- a/src/a.py\n" +
		"+++ b/src/a.py\n" +
		"@@ -1,1 +1,1 @@\n" +
		"-old\n" +
		"+new\n" +
		"diff --git a/src/b.py b/src/b.py\n" +
		"--- /dev/null\n" +
		"+++ b/src/b.py\n" +
		"@@ -0,0 +1,1 @@\n" +
		"+content\n"

	got, err := llmpatch.Canonicalize(input)

	require.NoError(t, err)
	assert.Contains(t, got, "diff --git a/src/b.py b/src/b.py\n--- /dev/null\n")
}

func TestCanonicalize_MetadataLinesPassThrough(t *testing.T) {
	t.Parallel()

	input := "diff --git a/src/a.py b/src/a.py\n" +
		"index 1234567..abcdefg 100644\n" +
		"--- a/src/a.py\n" +
		"+++ b/src/a.py\n" +
		"@@ -1,1 +1,1 @@\n" +
		"-old\n" +
		"+new\n"

	got, err := llmpatch.Canonicalize(input)

	require.NoError(t, err)
	assert.Contains(t, got, "index 1234567..abcdefg 100644\n")
}

func TestCanonicalize_ZeroHunkSectionFailsWholeDocument(t *testing.T) {
	t.Parallel()

	input := "diff --git a/src/a.py b/src/a.py\n" +
		"--- a/src/a.py\n" +
		"+++ b/src/a.py\n" +
		"@@ -1,1 +1,1 @@\n" +
		"-old\n" +
		"+new\n" +
		"diff --git a/src/b.py b/src/b.py\n" +
		"--- a/src/b.py\n" +
		"+++ b/src/b.py\n"

	got, err := llmpatch.Canonicalize(input)

	require.Error(t, err)
	assert.Empty(t, got)

	var structural *llmpatch.StructuralError
	require.ErrorAs(t, err, &structural)
	assert.Equal(t, 1, structural.Section)
	assert.Equal(t, "src/b.py", structural.Path)
}

func TestCanonicalize_NoDiffHeader(t *testing.T) {
	t.Parallel()

	_, err := llmpatch.Canonicalize("just some prose\n")

	var noDiff *llmpatch.NoDiffError
	assert.ErrorAs(t, err, &noDiff)
}

func TestCanonicalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		// bare hunk new file with unprefixed and blank lines
		"diff --git a/src/a.py b/src/a.py\n--- dev/null\n+++ b/src/a.py\n@@\nfirst\n\nsecond\n",
		// existing-file edit with blank context line
		"diff --git a/src/a.py b/src/a.py\n--- a/src/a.py\n+++ b/src/a.py\n@@ -1,3 +1,4 @@\n keep\n\n+added\n keep2\n",
		// multi-file
		"diff --git a/src/a.py b/src/a.py\n--- a/src/a.py\n+++ b/src/a.py\n@@ -1,1 +1,1 @@\n-old\n+new\ndiff --git a/src/b.py b/src/b.py\n--- /dev/null\n+++ b/src/b.py\n@@\nx\n",
	}

	for _, input := range inputs {
		once, err := llmpatch.Canonicalize(input)
		require.NoError(t, err)

		twice, err := llmpatch.Canonicalize(once)
		require.NoError(t, err)

		assert.Equal(t, once, twice)
	}
}
