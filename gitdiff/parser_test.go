package gitdiff_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/llmpatch"
	"github.com/fwojciec/llmpatch/gitdiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Parse_EmptyInput(t *testing.T) {
	t.Parallel()

	p := gitdiff.NewParser()

	doc, err := p.Parse(strings.NewReader(""))

	require.NoError(t, err)
	assert.Empty(t, doc.Files)
}

func TestParser_Parse_NewFile(t *testing.T) {
	t.Parallel()

	input := `diff --git a/src/a.py b/src/a.py
--- /dev/null
+++ b/src/a.py
@@ -0,0 +1,2 @@
+print("hello")
+print("world")
`

	p := gitdiff.NewParser()

	doc, err := p.Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, doc.Files, 1)

	file := doc.Files[0]
	assert.Equal(t, llmpatch.FileAdded, file.Operation)
	assert.Empty(t, file.OldPath)
	assert.Equal(t, "src/a.py", file.NewPath)
	assert.Equal(t, "src/a.py", file.Path())

	require.Len(t, file.Hunks, 1)
	hunk := file.Hunks[0]
	assert.Equal(t, 0, hunk.OldStart)
	assert.Equal(t, 0, hunk.OldCount)
	assert.Equal(t, 1, hunk.NewStart)
	assert.Equal(t, 2, hunk.NewCount)

	require.Len(t, hunk.Lines, 2)
	assert.Equal(t, llmpatch.LineAdded, hunk.Lines[0].Type)
	assert.Equal(t, llmpatch.LineAdded, hunk.Lines[1].Type)
}

func TestParser_Parse_ModifiedFile(t *testing.T) {
	t.Parallel()

	input := `diff --git a/src/main.py b/src/main.py
--- a/src/main.py
+++ b/src/main.py
@@ -1,2 +1,2 @@
 import os
-print("old")
+print("new")
`

	p := gitdiff.NewParser()

	doc, err := p.Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, doc.Files, 1)

	file := doc.Files[0]
	assert.Equal(t, llmpatch.FileModified, file.Operation)
	assert.Equal(t, "src/main.py", file.OldPath)
	assert.Equal(t, "src/main.py", file.NewPath)

	require.Len(t, file.Hunks, 1)
	require.Len(t, file.Hunks[0].Lines, 3)
	assert.Equal(t, llmpatch.LineContext, file.Hunks[0].Lines[0].Type)
	assert.Equal(t, llmpatch.LineDeleted, file.Hunks[0].Lines[1].Type)
	assert.Equal(t, llmpatch.LineAdded, file.Hunks[0].Lines[2].Type)
}

func TestParser_Parse_DeletedFile(t *testing.T) {
	t.Parallel()

	input := `diff --git a/src/old.py b/src/old.py
--- a/src/old.py
+++ /dev/null
@@ -1,1 +0,0 @@
-print("bye")
`

	p := gitdiff.NewParser()

	doc, err := p.Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, doc.Files, 1)
	assert.Equal(t, llmpatch.FileDeleted, doc.Files[0].Operation)
	assert.Equal(t, "src/old.py", doc.Files[0].Path())
}

func TestParser_Parse_MultipleFiles(t *testing.T) {
	t.Parallel()

	input := `diff --git a/src/a.py b/src/a.py
--- a/src/a.py
+++ b/src/a.py
@@ -1,1 +1,1 @@
-old
+new
diff --git a/src/b.py b/src/b.py
--- /dev/null
+++ b/src/b.py
@@ -0,0 +1,1 @@
+content
`

	p := gitdiff.NewParser()

	doc, err := p.Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, doc.Files, 2)
	assert.Equal(t, "src/a.py", doc.Files[0].Path())
	assert.Equal(t, "src/b.py", doc.Files[1].Path())
}

func TestParser_Parse_CanonicalizedRoundTrip(t *testing.T) {
	t.Parallel()

	// Canonicalizer output must parse cleanly.
	canon, err := llmpatch.Canonicalize("diff --git a/src/a.py b/src/a.py\n--- dev/null\n+++ b/src/a.py\n@@\nfirst\nsecond\n")
	require.NoError(t, err)

	doc, err := gitdiff.NewParser().Parse(strings.NewReader(canon))

	require.NoError(t, err)
	require.Len(t, doc.Files, 1)
	assert.Equal(t, llmpatch.FileAdded, doc.Files[0].Operation)
	require.Len(t, doc.Files[0].Hunks, 1)
	assert.Equal(t, 2, doc.Files[0].Hunks[0].NewCount)
}
