package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/webtools"
	"github.com/fwojciec/webtools/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedRuns inserts runs one second apart so ordering is deterministic.
func seedRuns(t *testing.T, svc *sqlite.RunService, runs ...webtools.Run) {
	t.Helper()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	for i := range runs {
		require.NoError(t, svc.CreateRun(context.Background(), &runs[i]))
	}
}

func TestRunService_CreateRun(t *testing.T) {
	t.Parallel()

	t.Run("assigns ID and timestamp", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		run := &webtools.Run{
			Category:  webtools.CategoryConverters,
			Tool:      "length-converter",
			Success:   true,
			Duration:  1500 * time.Microsecond,
			InputHash: "00ff",
		}

		require.NoError(t, svc.CreateRun(context.Background(), run))

		assert.NotEmpty(t, run.ID)
		assert.False(t, run.CreatedAt.IsZero())

		runs, err := svc.FindRuns(context.Background(), webtools.RunFilter{})
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, run.ID, runs[0].ID)
		assert.Equal(t, 1500*time.Microsecond, runs[0].Duration)
		assert.Equal(t, "00ff", runs[0].InputHash)
		assert.True(t, runs[0].Success)
		assert.True(t, run.CreatedAt.Equal(runs[0].CreatedAt))
	})

	t.Run("returns EINVALID for invalid run", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))

		err := svc.CreateRun(context.Background(), &webtools.Run{Tool: "x"})

		assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
	})
}

func TestRunService_FindRuns(t *testing.T) {
	t.Parallel()

	newService := func(t *testing.T) *sqlite.RunService {
		svc := sqlite.NewRunService(setupTestDB(t))
		seedRuns(t, svc,
			webtools.Run{Category: "converters", Tool: "length-converter", Success: true},
			webtools.Run{Category: "converters", Tool: "mass-converter", Success: false, ErrorCode: webtools.EINVALID},
			webtools.Run{Category: "hash-tools", Tool: "hash-generator", Success: true},
			webtools.Run{Category: "converters", Tool: "length-converter", Success: true},
		)
		return svc
	}

	t.Run("returns newest first", func(t *testing.T) {
		t.Parallel()

		runs, err := newService(t).FindRuns(context.Background(), webtools.RunFilter{})

		require.NoError(t, err)
		require.Len(t, runs, 4)
		assert.Equal(t, "length-converter", runs[0].Tool)
		assert.Equal(t, "hash-generator", runs[1].Tool)
		assert.True(t, runs[0].CreatedAt.After(runs[1].CreatedAt))
	})

	t.Run("filters by category, tool and success", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		category, tool, success := "converters", "mass-converter", false

		runs, err := svc.FindRuns(context.Background(), webtools.RunFilter{Category: &category})
		require.NoError(t, err)
		assert.Len(t, runs, 3)

		runs, err = svc.FindRuns(context.Background(), webtools.RunFilter{Tool: &tool})
		require.NoError(t, err)
		assert.Len(t, runs, 1)

		runs, err = svc.FindRuns(context.Background(), webtools.RunFilter{Success: &success})
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, webtools.EINVALID, runs[0].ErrorCode)
	})

	t.Run("respects limit and offset", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)

		runs, err := svc.FindRuns(context.Background(), webtools.RunFilter{Limit: 2, Offset: 1})
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "hash-generator", runs[0].Tool)

		runs, err = svc.FindRuns(context.Background(), webtools.RunFilter{Offset: 3})
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, "length-converter", runs[0].Tool)
	})
}

func TestRunService_ToolStats(t *testing.T) {
	t.Parallel()

	t.Run("aggregates per tool", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		seedRuns(t, svc,
			webtools.Run{Category: "converters", Tool: "length-converter", Success: true, Duration: 2 * time.Millisecond},
			webtools.Run{Category: "converters", Tool: "length-converter", Success: false, Duration: 4 * time.Millisecond},
			webtools.Run{Category: "hash-tools", Tool: "hash-generator", Success: true, Duration: time.Millisecond},
		)

		stats, err := svc.ToolStats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []webtools.ToolStat{
			{Category: "converters", Tool: "length-converter", Runs: 2, Failures: 1, AvgDuration: 3 * time.Millisecond},
			{Category: "hash-tools", Tool: "hash-generator", Runs: 1, Failures: 0, AvgDuration: time.Millisecond},
		}, stats)
	})

	t.Run("returns empty slice without runs", func(t *testing.T) {
		t.Parallel()

		stats, err := sqlite.NewRunService(setupTestDB(t)).ToolStats(context.Background())

		require.NoError(t, err)
		assert.NotNil(t, stats)
		assert.Empty(t, stats)
	})
}
