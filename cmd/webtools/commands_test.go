package main_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/webtools"
	main "github.com/fwojciec/webtools/cmd/webtools"
	"github.com/fwojciec/webtools/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greetRequest struct {
	Name string `json:"name"`
}

func newTestDeps() (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	catalog := webtools.NewCatalog(
		webtools.NewTool(webtools.ToolInfo{Category: "text-tools", Slug: "greet", Name: "Greeter"},
			func(_ context.Context, req greetRequest) (map[string]string, error) {
				if req.Name == "" {
					return nil, webtools.Errorf(webtools.EINVALID, "name required")
				}
				return map[string]string{"greeting": "hello " + req.Name}, nil
			}),
		webtools.NewTool(webtools.ToolInfo{Category: "hash-tools", Slug: "md5", Name: "MD5"},
			func(_ context.Context, _ greetRequest) (string, error) { return "", nil }),
	)
	return &main.Dependencies{
		Ctx:     context.Background(),
		Stdin:   strings.NewReader(""),
		Stdout:  stdout,
		Stderr:  stderr,
		Catalog: catalog,
	}, stdout, stderr
}

func TestListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists every tool with key and name", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newTestDeps()
		require.NoError(t, (&main.ListCmd{}).Run(deps))

		assert.Contains(t, stdout.String(), "text-tools/greet")
		assert.Contains(t, stdout.String(), "Greeter")
		assert.Contains(t, stdout.String(), "hash-tools/md5")
	})

	t.Run("filters by category", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newTestDeps()
		require.NoError(t, (&main.ListCmd{Category: "hash-tools"}).Run(deps))

		assert.Contains(t, stdout.String(), "hash-tools/md5")
		assert.NotContains(t, stdout.String(), "greet")
	})

	t.Run("shows message for empty category", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newTestDeps()
		require.NoError(t, (&main.ListCmd{Category: "nope"}).Run(deps))

		assert.Contains(t, stdout.String(), `No tools in category "nope"`)
	})
}

func TestRunCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints indented JSON result", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newTestDeps()
		cmd := &main.RunCmd{Category: "text-tools", Tool: "greet", Input: `{"name":"gopher"}`}

		require.NoError(t, cmd.Run(deps))
		assert.Equal(t, "{\n  \"greeting\": \"hello gopher\"\n}\n", stdout.String())
	})

	t.Run("reads request from stdin", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newTestDeps()
		deps.Stdin = strings.NewReader(`{"name":"stdin"}`)
		cmd := &main.RunCmd{Category: "text-tools", Tool: "greet", Input: "-"}

		require.NoError(t, cmd.Run(deps))
		assert.Contains(t, stdout.String(), "hello stdin")
	})

	t.Run("reports unknown tool", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newTestDeps()
		cmd := &main.RunCmd{Category: "text-tools", Tool: "missing", Input: "{}"}

		err := cmd.Run(deps)
		require.Error(t, err)
		assert.Equal(t, webtools.ENOTFOUND, webtools.ErrorCode(err))
		assert.Contains(t, stderr.String(), "webtools list")
	})

	t.Run("reports invalid input", func(t *testing.T) {
		t.Parallel()

		deps, stdout, stderr := newTestDeps()
		cmd := &main.RunCmd{Category: "text-tools", Tool: "greet", Input: "{}"}

		err := cmd.Run(deps)
		require.Error(t, err)
		assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error: name required")
		assert.Empty(t, stdout.String())
	})
}

func TestStatsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints one row per tool", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newTestDeps()
		deps.Runs = &mock.RunService{
			ToolStatsFn: func(_ context.Context) ([]webtools.ToolStat, error) {
				return []webtools.ToolStat{
					{Category: "hash-tools", Tool: "md5", Runs: 12, Failures: 1, AvgDuration: 1500 * time.Microsecond},
					{Category: "text-tools", Tool: "greet", Runs: 3},
				}, nil
			},
		}

		require.NoError(t, (&main.StatsCmd{}).Run(deps))

		lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[0], "TOOL")
		assert.Contains(t, lines[1], "hash-tools/md5")
		assert.Contains(t, lines[1], "12")
		assert.Contains(t, lines[1], "1.5ms")
		assert.Contains(t, lines[2], "text-tools/greet")
	})

	t.Run("returns service errors", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newTestDeps()
		deps.Runs = &mock.RunService{
			ToolStatsFn: func(_ context.Context) ([]webtools.ToolStat, error) {
				return nil, errors.New("database locked")
			},
		}

		err := (&main.StatsCmd{}).Run(deps)
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "Internal error.")
	})
}
