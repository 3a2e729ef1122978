// Package network implements the network-diagnostic tool: DNS resolution,
// TCP connect, HTTP, TLS certificate, ping and traceroute checks run
// concurrently against a single target.
package network

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/webtools"
	"golang.org/x/sync/errgroup"
)

// Timeout limits in seconds.
const (
	DefaultTimeout = 5
	MaxTimeout     = 30
)

// Test names.
const (
	TestDNS        = "dns"
	TestTCP        = "tcp"
	TestHTTP       = "http"
	TestTLS        = "tls"
	TestPing       = "ping"
	TestTraceroute = "traceroute"
)

// DefaultTests run when a request names none.
var DefaultTests = []string{TestDNS, TestTCP, TestHTTP, TestTLS}

// Test statuses.
const (
	StatusPassed      = "passed"
	StatusFailed      = "failed"
	StatusUnavailable = "unavailable"
)

// Resolver resolves host names. *net.Resolver implements it.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
	LookupCNAME(ctx context.Context, host string) (string, error)
}

// Dialer opens network connections. *net.Dialer implements it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Diagnoser runs network diagnostics. Zero fields fall back to the
// system resolver, a plain dialer, http.DefaultClient and ExecCommander.
type Diagnoser struct {
	Resolver   Resolver
	Dialer     Dialer
	HTTPClient *http.Client
	Commander  Commander

	// TLSConfig is cloned for every TLS check. ServerName is set per target.
	TLSConfig *tls.Config

	// AllowPrivate permits targets that resolve to loopback or private addresses.
	AllowPrivate bool
}

// Tools returns the network tools.
func (d *Diagnoser) Tools() []webtools.Tool {
	return []webtools.Tool{
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "network-diagnostic",
			Category:    webtools.CategoryNetwork,
			Name:        "Network Diagnostic",
			Description: "Run DNS, TCP, HTTP, TLS, ping and traceroute checks against a host.",
		}, d.Diagnose),
	}
}

// Request is the request body of the network-diagnostic tool.
type Request struct {
	Target  string   `json:"target"`
	Tests   []string `json:"tests,omitempty"`
	Timeout int      `json:"timeout,omitempty"`
	Port    int      `json:"port,omitempty"`
}

// TestResult is the outcome of one check.
type TestResult struct {
	Name       string         `json:"name"`
	Status     string         `json:"status"`
	DurationMs float64        `json:"durationMs"`
	Metrics    map[string]any `json:"metrics"`
	Error      string         `json:"error,omitempty"`
}

// Summary counts results by status.
type Summary struct {
	Passed      int `json:"passed"`
	Failed      int `json:"failed"`
	Unavailable int `json:"unavailable"`
}

// Response is the result of the network-diagnostic tool.
type Response struct {
	Target            string       `json:"target"`
	Host              string       `json:"host"`
	Port              int          `json:"port"`
	ResolvedAddresses []string     `json:"resolvedAddresses"`
	Results           []TestResult `json:"results"`
	Summary           Summary      `json:"summary"`
}

// Diagnose runs the requested checks concurrently. Results keep the order
// of the requested tests. Individual check failures are reported in the
// results; only invalid requests return an error.
func (d *Diagnoser) Diagnose(ctx context.Context, req Request) (*Response, error) {
	tests, err := normalizeTests(req.Tests)
	if err != nil {
		return nil, err
	}

	timeout := req.Timeout
	switch {
	case timeout < 0:
		return nil, webtools.Errorf(webtools.EINVALID, "timeout must not be negative")
	case timeout == 0:
		timeout = DefaultTimeout
	case timeout > MaxTimeout:
		return nil, webtools.Errorf(webtools.EINVALID, "timeout must be at most %d seconds", MaxTimeout)
	}

	target, err := ParseTarget(req.Target, req.Port)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	// Resolution happens once up front so every check dials the same
	// addresses that passed the public address check.
	begin := time.Now()
	addrs, cname, resolveErr := d.resolve(ctx, target)
	resolveTime := time.Since(begin)
	if resolveErr == nil && !d.AllowPrivate {
		for _, addr := range addrs {
			if err := webtools.CheckPublicAddr(addr); err != nil {
				return nil, err
			}
		}
	}

	p := &probe{d: d, target: target, addrs: addrs}
	results := make([]TestResult, len(tests))

	var g errgroup.Group
	for i, name := range tests {
		g.Go(func() error {
			if name == TestDNS {
				results[i] = dnsResult(target, addrs, cname, resolveErr, resolveTime)
				return nil
			}
			results[i] = p.run(ctx, name, resolveErr)
			return nil
		})
	}
	_ = g.Wait()

	resp := &Response{
		Target:            req.Target,
		Host:              target.Host,
		Port:              target.Port,
		ResolvedAddresses: make([]string, 0, len(addrs)),
		Results:           results,
	}
	for _, addr := range addrs {
		resp.ResolvedAddresses = append(resp.ResolvedAddresses, addr.String())
	}
	for _, r := range results {
		switch r.Status {
		case StatusPassed:
			resp.Summary.Passed++
		case StatusFailed:
			resp.Summary.Failed++
		case StatusUnavailable:
			resp.Summary.Unavailable++
		}
	}
	return resp, nil
}

func normalizeTests(tests []string) ([]string, error) {
	if len(tests) == 0 {
		return DefaultTests, nil
	}
	seen := make(map[string]bool, len(tests))
	out := make([]string, 0, len(tests))
	for _, t := range tests {
		name := strings.ToLower(strings.TrimSpace(t))
		switch name {
		case TestDNS, TestTCP, TestHTTP, TestTLS, TestPing, TestTraceroute:
		default:
			return nil, webtools.Errorf(webtools.EINVALID, "unknown test %q, expected dns, tcp, http, tls, ping or traceroute", t)
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out, nil
}

func (d *Diagnoser) resolver() Resolver {
	if d.Resolver == nil {
		return net.DefaultResolver
	}
	return d.Resolver
}

func (d *Diagnoser) dialer() Dialer {
	if d.Dialer == nil {
		return &net.Dialer{}
	}
	return d.Dialer
}

func (d *Diagnoser) httpClient() *http.Client {
	if d.HTTPClient == nil {
		return http.DefaultClient
	}
	return d.HTTPClient
}

func (d *Diagnoser) commander() Commander {
	if d.Commander == nil {
		return ExecCommander{}
	}
	return d.Commander
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
