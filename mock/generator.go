package mock

import (
	"context"

	"github.com/fwojciec/llmpatch"
)

// Compile-time interface verification.
var _ llmpatch.Generator = (*Generator)(nil)

// Generator is a mock implementation of llmpatch.Generator.
type Generator struct {
	GenerateFn func(ctx context.Context, req llmpatch.GenerateRequest) (string, error)
}

func (g *Generator) Generate(ctx context.Context, req llmpatch.GenerateRequest) (string, error) {
	return g.GenerateFn(ctx, req)
}
