package mock

import (
	"context"

	"github.com/fwojciec/llmpatch"
)

// Compile-time interface verification.
var _ llmpatch.Applier = (*Applier)(nil)

// Applier is a mock implementation of llmpatch.Applier.
type Applier struct {
	ApplyFn func(ctx context.Context, diff string) (llmpatch.ApplyMode, error)
}

func (a *Applier) Apply(ctx context.Context, diff string) (llmpatch.ApplyMode, error) {
	return a.ApplyFn(ctx, diff)
}
