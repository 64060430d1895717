package mock

import (
	"context"

	"github.com/fwojciec/llmpatch"
)

// Compile-time interface verification.
var _ llmpatch.Formatter = (*Formatter)(nil)

// Formatter is a mock implementation of llmpatch.Formatter.
type Formatter struct {
	FormatFn func(ctx context.Context) (string, error)
}

func (f *Formatter) Format(ctx context.Context) (string, error) {
	return f.FormatFn(ctx)
}
