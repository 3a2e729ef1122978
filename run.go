package webtools

import (
	"context"
	"time"
)

// Run records a single tool execution for usage statistics.
type Run struct {
	ID        string        `json:"id"`
	Category  string        `json:"category"`
	Tool      string        `json:"tool"`
	Success   bool          `json:"success"`
	ErrorCode string        `json:"errorCode,omitempty"`
	Duration  time.Duration `json:"duration"`
	InputHash string        `json:"inputHash"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.Category == "" {
		return Errorf(EINVALID, "run category required")
	}
	if r.Tool == "" {
		return Errorf(EINVALID, "run tool required")
	}
	if r.Duration < 0 {
		return Errorf(EINVALID, "run duration must not be negative")
	}
	return nil
}

// RunService represents a service for recording tool usage.
type RunService interface {
	// CreateRun records a new run. ID and CreatedAt are assigned by the service.
	CreateRun(ctx context.Context, run *Run) error

	// FindRuns retrieves runs matching the filter, newest first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// ToolStats aggregates runs per tool, most used first.
	ToolStats(ctx context.Context) ([]ToolStat, error)
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	Category *string `json:"category"`
	Tool     *string `json:"tool"`
	Success  *bool   `json:"success"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ToolStat holds aggregated usage for one tool.
type ToolStat struct {
	Category    string        `json:"category"`
	Tool        string        `json:"tool"`
	Runs        int           `json:"runs"`
	Failures    int           `json:"failures"`
	AvgDuration time.Duration `json:"avgDuration"`
}

// AnalysisCache stores analysis commentary by content key.
type AnalysisCache interface {
	// Get returns the cached text for key. The bool is false on a miss.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put stores text under key, replacing any previous value.
	Put(ctx context.Context, key, text string) error
}

// RateLimiter decides whether a client identified by key may make a request.
type RateLimiter interface {
	// Allow returns nil if the request may proceed and ERATELIMIT otherwise.
	Allow(ctx context.Context, key string) error
}

// DomainLimiter provides per-domain politeness for outbound crawling.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
