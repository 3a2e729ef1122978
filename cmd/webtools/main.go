package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/webtools"
	"github.com/fwojciec/webtools/azopenai"
	"github.com/fwojciec/webtools/codec"
	"github.com/fwojciec/webtools/crawl"
	"github.com/fwojciec/webtools/csv"
	"github.com/fwojciec/webtools/digest"
	"github.com/fwojciec/webtools/etree"
	"github.com/fwojciec/webtools/gemini"
	"github.com/fwojciec/webtools/generate"
	"github.com/fwojciec/webtools/goquery"
	"github.com/fwojciec/webtools/htmltomarkdown"
	wthttp "github.com/fwojciec/webtools/http"
	"github.com/fwojciec/webtools/jsonpath"
	"github.com/fwojciec/webtools/jwt"
	"github.com/fwojciec/webtools/network"
	"github.com/fwojciec/webtools/prometheus"
	"github.com/fwojciec/webtools/rate"
	"github.com/fwojciec/webtools/readability"
	"github.com/fwojciec/webtools/redis"
	"github.com/fwojciec/webtools/seo"
	wtslog "github.com/fwojciec/webtools/slog"
	"github.com/fwojciec/webtools/sqlite"
	"github.com/fwojciec/webtools/text"
	"github.com/fwojciec/webtools/trafilatura"
	"github.com/fwojciec/webtools/units"
	"github.com/fwojciec/webtools/yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// auditDomainRPS spaces site audit requests to the same domain.
const auditDomainRPS = 2.0

// Main represents the program.
type Main struct {
	// Default database path. Set before calling Run().
	DBPath string

	// Stdin is read by "run -".
	Stdin io.Reader

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
		Stdin:  os.Stdin,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i]())
	}
	m.closers = nil
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
		m.DB = nil
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("webtools"),
		kong.Description("Online tools catalog: converters, text, hash, format, SEO and network tools."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Vars{"db_path": m.DBPath},
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'webtools --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(stderr, cli.LogFormat, cli.Debug)
	defer m.Close()

	if cmd == "serve" || cmd == "stats" {
		m.DB = sqlite.NewDB(cli.DB)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set WEBTOOLS_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
		}
		deps.Runs = sqlite.NewRunService(m.DB)
	}

	if cmd != "stats" {
		deps.Catalog = m.buildCatalog(cli, deps.Logger)
		deps.Catalog.Wrap(wtslog.ToolMiddleware(deps.Logger))
	}

	if cmd == "serve" {
		deps.Metrics = prometheus.NewMetrics()
		deps.Catalog.Wrap(deps.Metrics.ToolMiddleware())

		if deps.Analyzer, err = m.buildAnalyzer(ctx, cli, deps.Metrics, deps.Logger); err != nil {
			return err
		}
		if deps.Limiter, err = m.buildLimiter(ctx, &cli.Serve, deps.Logger); err != nil {
			return err
		}
	}

	return kongCtx.Run(deps)
}

// buildCatalog registers every tool. Tools whose backend cannot be created
// are omitted with a warning.
func (m *Main) buildCatalog(cli *CLI, logger *slog.Logger) *webtools.Catalog {
	fetcher := wthttp.NewFetcher(wthttp.WithAllowPrivate(cli.AllowPrivate))
	m.closers = append(m.closers, fetcher.Close)
	loggingFetcher := wtslog.NewLoggingFetcher(fetcher, logger)
	sitemaps := wtslog.NewLoggingSitemapService(wthttp.NewSitemapService(fetcher.Client()), logger)

	textService := &text.Service{}
	if !cli.SkipTokenCounter {
		counter, err := gemini.NewTokenCounter(gemini.TokenizerModel)
		if err != nil {
			logger.Warn("token counter unavailable", "error", err)
		} else {
			textService.Counter = counter
			textService.CounterModel = gemini.TokenizerModel
		}
	}

	seoService := &seo.Service{
		Fetcher:   loggingFetcher,
		Analyzer:  goquery.NewPageAnalyzer(),
		Detector:  wtslog.NewLoggingDetector(goquery.NewDetector(), logger),
		Links:     goquery.NewLinkExtractor(),
		Converter: htmltomarkdown.NewConverter(),
		Extractors: map[string]webtools.Extractor{
			seo.EngineTrafilatura: trafilatura.NewExtractor(),
			seo.EngineReadability: readability.NewExtractor(),
		},
		Sitemaps: sitemaps,
		Auditor: &crawl.Auditor{
			Sitemaps: sitemaps,
			Fetcher:  loggingFetcher,
			Analyzer: goquery.NewPageAnalyzer(),
			Links:    goquery.NewLinkExtractor(),
			Limiter:  rate.NewDomainLimiter(auditDomainRPS),
			Logger:   logger,
		},
	}

	diagnoser := &network.Diagnoser{
		HTTPClient:   wthttp.NewClient(network.MaxTimeout*time.Second, cli.AllowPrivate),
		AllowPrivate: cli.AllowPrivate,
	}

	catalog := webtools.NewCatalog()
	for _, tools := range [][]webtools.Tool{
		units.NewService().Tools(),
		textService.Tools(),
		digest.Tools(),
		yaml.Tools(),
		etree.Tools(),
		csv.Tools(),
		jsonpath.Tools(),
		codec.Tools(),
		jwt.NewService().Tools(),
		generate.Tools(),
		seoService.Tools(),
		diagnoser.Tools(),
	} {
		for _, t := range tools {
			if err := catalog.Register(t); err != nil {
				panic(err)
			}
		}
	}
	return catalog
}

// buildAnalyzer returns the configured analysis backend decorated with the
// SQLite cache, metrics and logging. Returns nil when analysis is disabled.
func (m *Main) buildAnalyzer(ctx context.Context, cli *CLI, metrics *prometheus.Metrics, logger *slog.Logger) (webtools.Analyzer, error) {
	var analyzer webtools.Analyzer
	switch cli.Analysis {
	case "gemini":
		client, err := gemini.NewClient(ctx, cli.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Gemini API: %w. Get a key at https://aistudio.google.com/apikey", err)
		}
		analyzer = gemini.NewAnalyzer(client, cli.GeminiModel)
	case "azopenai":
		a, err := azopenai.NewAnalyzer(cli.AzureEndpoint, cli.AzureAPIKey, cli.AzureDeployment, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure OpenAI analyzer: %w", err)
		}
		analyzer = a
	default:
		return nil, nil
	}

	cached, err := sqlite.NewCachingAnalyzer(ctx, analyzer, sqlite.NewAnalysisCache(m.DB))
	if err != nil {
		return nil, err
	}
	return wtslog.NewLoggingAnalyzer(metrics.InstrumentAnalyzer(cached), logger), nil
}

// buildLimiter returns the per-client API limiter. Redis is used when
// configured so several instances share limits.
func (m *Main) buildLimiter(ctx context.Context, c *ServeCmd, logger *slog.Logger) (webtools.RateLimiter, error) {
	if c.RateLimit <= 0 {
		return nil, nil
	}
	if c.RedisURL == "" {
		return rate.NewLimiter(c.RateLimit, c.RateBurst), nil
	}

	client, err := redis.Open(ctx, c.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	m.closers = append(m.closers, client.Close)

	// A fixed one second window admits the burst on top of the steady rate.
	limit := int(math.Ceil(c.RateLimit)) + max(c.RateBurst-1, 0)
	return redis.NewLimiter(client, limit, time.Second, logger), nil
}

func newLogger(w io.Writer, format string, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "webtools.db"
	}
	dir := filepath.Join(home, ".webtools")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "webtools.db")
}
