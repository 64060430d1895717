// Package gitdiff implements diff parsing using bluekeyes/go-gitdiff.
package gitdiff

import (
	"io"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/fwojciec/llmpatch"
)

// Compile-time interface verification.
var _ llmpatch.Parser = (*Parser)(nil)

// Parser parses strict unified diff content using go-gitdiff.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads diff content and returns the parsed document. The document's
// Text field is left empty; the caller owns the serialized form.
func (p *Parser) Parse(r io.Reader) (*llmpatch.Document, error) {
	files, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, err
	}

	doc := &llmpatch.Document{
		Files: make([]llmpatch.FileDiff, 0, len(files)),
	}
	for _, f := range files {
		doc.Files = append(doc.Files, convertFile(f))
	}
	return doc, nil
}

func convertFile(f *gitdiff.File) llmpatch.FileDiff {
	fd := llmpatch.FileDiff{
		OldPath:  f.OldName,
		NewPath:  f.NewName,
		IsBinary: f.IsBinary,
	}

	switch {
	case f.IsNew:
		fd.Operation = llmpatch.FileAdded
	case f.IsDelete:
		fd.Operation = llmpatch.FileDeleted
	default:
		fd.Operation = llmpatch.FileModified
	}

	fd.Hunks = make([]llmpatch.Hunk, 0, len(f.TextFragments))
	for _, frag := range f.TextFragments {
		fd.Hunks = append(fd.Hunks, convertFragment(frag))
	}
	return fd
}

func convertFragment(frag *gitdiff.TextFragment) llmpatch.Hunk {
	hunk := llmpatch.Hunk{
		OldStart: int(frag.OldPosition),
		OldCount: int(frag.OldLines),
		NewStart: int(frag.NewPosition),
		NewCount: int(frag.NewLines),
	}

	for _, l := range frag.Lines {
		line := llmpatch.Line{
			Content:   l.Line,
			NoNewline: l.NoEOL(),
		}
		switch l.Op {
		case gitdiff.OpContext:
			line.Type = llmpatch.LineContext
		case gitdiff.OpAdd:
			line.Type = llmpatch.LineAdded
		case gitdiff.OpDelete:
			line.Type = llmpatch.LineDeleted
		}
		hunk.Lines = append(hunk.Lines, line)
	}
	return hunk
}
