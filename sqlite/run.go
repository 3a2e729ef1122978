package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/webtools"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ webtools.RunService = (*RunService)(nil)

// RunService implements webtools.RunService using SQLite.
type RunService struct {
	db *DB

	// Now returns the current time; replaceable in tests.
	Now func() time.Time
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db, Now: time.Now}
}

// CreateRun records a new run.
func (s *RunService) CreateRun(ctx context.Context, run *webtools.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()
	run.CreatedAt = s.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, category, tool, success, error_code, duration_ns, input_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Category, run.Tool, run.Success, run.ErrorCode, int64(run.Duration),
		run.InputHash, formatTime(run.CreatedAt))

	return err
}

// FindRuns retrieves runs matching the filter, newest first.
func (s *RunService) FindRuns(ctx context.Context, filter webtools.RunFilter) ([]*webtools.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, category, tool, success, error_code, duration_ns, input_hash, created_at
		FROM runs WHERE 1=1`)

	if filter.Category != nil {
		query.WriteString(" AND category = ?")
		args = append(args, *filter.Category)
	}
	if filter.Tool != nil {
		query.WriteString(" AND tool = ?")
		args = append(args, *filter.Tool)
	}
	if filter.Success != nil {
		query.WriteString(" AND success = ?")
		args = append(args, *filter.Success)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*webtools.Run
	for rows.Next() {
		var run webtools.Run
		var durationNS int64
		var createdAt string

		if err := rows.Scan(&run.ID, &run.Category, &run.Tool, &run.Success, &run.ErrorCode,
			&durationNS, &run.InputHash, &createdAt); err != nil {
			return nil, err
		}

		run.Duration = time.Duration(durationNS)
		if run.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// ToolStats aggregates runs per tool, most used first.
func (s *RunService) ToolStats(ctx context.Context) ([]webtools.ToolStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, tool, COUNT(*), SUM(CASE WHEN success THEN 0 ELSE 1 END), AVG(duration_ns)
		FROM runs
		GROUP BY category, tool
		ORDER BY COUNT(*) DESC, category, tool
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []webtools.ToolStat{}
	for rows.Next() {
		var stat webtools.ToolStat
		var avg float64

		if err := rows.Scan(&stat.Category, &stat.Tool, &stat.Runs, &stat.Failures, &avg); err != nil {
			return nil, err
		}
		stat.AvgDuration = time.Duration(avg)

		stats = append(stats, stat)
	}

	return stats, rows.Err()
}
