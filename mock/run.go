package mock

import (
	"context"

	"github.com/fwojciec/webtools"
)

var _ webtools.RunService = (*RunService)(nil)

// RunService is a mock implementation of webtools.RunService.
type RunService struct {
	CreateRunFn func(ctx context.Context, run *webtools.Run) error
	FindRunsFn  func(ctx context.Context, filter webtools.RunFilter) ([]*webtools.Run, error)
	ToolStatsFn func(ctx context.Context) ([]webtools.ToolStat, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *webtools.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRuns(ctx context.Context, filter webtools.RunFilter) ([]*webtools.Run, error) {
	return s.FindRunsFn(ctx, filter)
}

func (s *RunService) ToolStats(ctx context.Context) ([]webtools.ToolStat, error) {
	return s.ToolStatsFn(ctx)
}

var _ webtools.AnalysisCache = (*AnalysisCache)(nil)

// AnalysisCache is a mock implementation of webtools.AnalysisCache.
type AnalysisCache struct {
	GetFn func(ctx context.Context, key string) (string, bool, error)
	PutFn func(ctx context.Context, key, text string) error
}

func (c *AnalysisCache) Get(ctx context.Context, key string) (string, bool, error) {
	return c.GetFn(ctx, key)
}

func (c *AnalysisCache) Put(ctx context.Context, key, text string) error {
	return c.PutFn(ctx, key, text)
}
