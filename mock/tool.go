package mock

import (
	"context"

	"github.com/fwojciec/webtools"
)

var _ webtools.Tool = (*Tool)(nil)

// Tool is a mock implementation of webtools.Tool.
type Tool struct {
	InfoFn func() webtools.ToolInfo
	RunFn  func(ctx context.Context, input []byte) (any, error)
}

func (t *Tool) Info() webtools.ToolInfo {
	return t.InfoFn()
}

func (t *Tool) Run(ctx context.Context, input []byte) (any, error) {
	return t.RunFn(ctx, input)
}
