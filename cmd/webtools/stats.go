package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/webtools"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	stats, err := deps.Runs.ToolStats(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webtools.ErrorMessage(err))
		return err
	}

	if len(stats) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded yet. Use 'webtools serve' to start recording.")
		return nil
	}

	fmt.Fprintf(deps.Stdout, "%-40s  %6s  %8s  %10s\n", "TOOL", "RUNS", "FAILURES", "AVG")
	for _, s := range stats {
		fmt.Fprintf(deps.Stdout, "%-40s  %6d  %8d  %10s\n",
			s.Category+"/"+s.Tool, s.Runs, s.Failures, s.AvgDuration.Round(time.Microsecond))
	}
	return nil
}
