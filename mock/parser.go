package mock

import (
	"io"

	"github.com/fwojciec/llmpatch"
)

// Compile-time interface verification.
var _ llmpatch.Parser = (*Parser)(nil)

// Parser is a mock implementation of llmpatch.Parser.
type Parser struct {
	ParseFn func(r io.Reader) (*llmpatch.Document, error)
}

func (p *Parser) Parse(r io.Reader) (*llmpatch.Document, error) {
	return p.ParseFn(r)
}
