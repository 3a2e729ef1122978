package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/webtools"
	"github.com/fwojciec/webtools/prometheus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Catalog  *webtools.Catalog
	Runs     webtools.RunService
	Analyzer webtools.Analyzer
	Limiter  webtools.RateLimiter
	Metrics  *prometheus.Metrics
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	LogFormat    string `name:"log-format" enum:"text,json" default:"text" help:"Log format (text or json)"`
	Debug        bool   `help:"Enable debug logging"`
	DB           string `name:"db" env:"WEBTOOLS_DB" default:"${db_path}" help:"SQLite database path"`
	AllowPrivate bool   `name:"allow-private" env:"WEBTOOLS_ALLOW_PRIVATE" help:"Allow outbound requests to private addresses"`

	Analysis         string `enum:"none,gemini,azopenai" env:"WEBTOOLS_ANALYSIS" default:"none" help:"Analysis backend (none, gemini or azopenai)"`
	GeminiAPIKey     string `name:"gemini-api-key" env:"GEMINI_API_KEY" help:"Gemini API key"`
	GeminiModel      string `name:"gemini-model" env:"WEBTOOLS_GEMINI_MODEL" help:"Gemini model used for analysis"`
	AzureEndpoint    string `name:"azure-endpoint" env:"AZURE_OPENAI_ENDPOINT" help:"Azure OpenAI endpoint"`
	AzureAPIKey      string `name:"azure-api-key" env:"AZURE_OPENAI_API_KEY" help:"Azure OpenAI API key"`
	AzureDeployment  string `name:"azure-deployment" env:"AZURE_OPENAI_DEPLOYMENT" help:"Azure OpenAI deployment"`
	SkipTokenCounter bool   `name:"skip-token-counter" env:"WEBTOOLS_SKIP_TOKEN_COUNTER" help:"Omit the token counter tool"`

	Serve  ServeCmd  `cmd:"" help:"Serve the tools API over HTTP"`
	List   ListCmd   `cmd:"" help:"List available tools"`
	Run    RunCmd    `cmd:"" help:"Run a tool with a JSON request"`
	Export ExportCmd `cmd:"" help:"Export the catalog as Markdown pages"`
	Stats  StatsCmd  `cmd:"" help:"Show tool usage statistics"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr      string  `env:"WEBTOOLS_ADDR" default:":8080" help:"Listen address"`
	RedisURL  string  `name:"redis-url" env:"WEBTOOLS_REDIS_URL" help:"Redis URL for shared rate limits"`
	RateLimit float64 `name:"rate-limit" env:"WEBTOOLS_RATE_LIMIT" default:"5" help:"Requests per second per client (0 disables)"`
	RateBurst int     `name:"rate-burst" env:"WEBTOOLS_RATE_BURST" default:"10" help:"Burst size per client"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Category string `short:"c" help:"Only list tools in this category"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Category string `arg:"" help:"Tool category"`
	Tool     string `arg:"" help:"Tool slug"`
	Input    string `arg:"" optional:"" default:"-" help:"JSON request, or - to read stdin"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Out string `short:"o" required:"" type:"path" help:"Output directory"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct{}
