package network

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"time"

	"github.com/fwojciec/webtools"
)

// maxHTTPBodyBytes bounds how much of the response body the HTTP check reads.
const maxHTTPBodyBytes = 1 << 20

// probe runs the checks that need a resolved target.
type probe struct {
	d      *Diagnoser
	target Target
	addrs  []netip.Addr
}

func (p *probe) run(ctx context.Context, name string, resolveErr error) TestResult {
	if resolveErr != nil {
		return TestResult{
			Name:    name,
			Status:  StatusFailed,
			Metrics: map[string]any{},
			Error:   "host could not be resolved: " + errorText(resolveErr),
		}
	}

	begin := time.Now()
	var res TestResult
	switch name {
	case TestTCP:
		res = p.tcp(ctx)
	case TestHTTP:
		res = p.http(ctx)
	case TestTLS:
		res = p.tls(ctx)
	case TestPing:
		res = p.ping(ctx)
	case TestTraceroute:
		res = p.traceroute(ctx)
	}
	res.Name = name
	res.DurationMs = millis(time.Since(begin))
	if res.Metrics == nil {
		res.Metrics = map[string]any{}
	}
	return res
}

func dnsResult(t Target, addrs []netip.Addr, cname string, err error, took time.Duration) TestResult {
	res := TestResult{Name: TestDNS, DurationMs: millis(took), Metrics: map[string]any{}}
	if err != nil {
		res.Status = StatusFailed
		res.Error = errorText(err)
		return res
	}

	var v4, v6 int
	list := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		list = append(list, addr.String())
		if addr.Is4() {
			v4++
		} else {
			v6++
		}
	}
	res.Status = StatusPassed
	res.Metrics["addresses"] = list
	res.Metrics["ipv4"] = v4
	res.Metrics["ipv6"] = v6
	res.Metrics["literal"] = t.IsLiteral()
	if cname != "" {
		res.Metrics["cname"] = cname
	}
	return res
}

func (p *probe) address() string {
	return net.JoinHostPort(p.addrs[0].String(), strconv.Itoa(p.target.Port))
}

func (p *probe) tcp(ctx context.Context) TestResult {
	addr := p.address()
	begin := time.Now()
	conn, err := p.d.dialer().DialContext(ctx, "tcp", addr)
	if err != nil {
		return failed(ctx, err, map[string]any{"address": addr})
	}
	connect := time.Since(begin)
	_ = conn.Close()

	return TestResult{
		Status: StatusPassed,
		Metrics: map[string]any{
			"address":   addr,
			"connectMs": millis(connect),
		},
	}
}

func (p *probe) tls(ctx context.Context) TestResult {
	addr := p.address()
	raw, err := p.d.dialer().DialContext(ctx, "tcp", addr)
	if err != nil {
		return failed(ctx, err, map[string]any{"address": addr})
	}
	defer raw.Close()

	cfg := &tls.Config{}
	if p.d.TLSConfig != nil {
		cfg = p.d.TLSConfig.Clone()
	}
	cfg.ServerName = p.target.Host

	begin := time.Now()
	conn := tls.Client(raw, cfg)
	if err := conn.HandshakeContext(ctx); err != nil {
		return failed(ctx, err, map[string]any{"address": addr})
	}
	handshake := time.Since(begin)

	state := conn.ConnectionState()
	metrics := map[string]any{
		"address":     addr,
		"handshakeMs": millis(handshake),
		"version":     tls.VersionName(state.Version),
		"cipherSuite": tls.CipherSuiteName(state.CipherSuite),
	}
	if state.NegotiatedProtocol != "" {
		metrics["alpn"] = state.NegotiatedProtocol
	}
	if len(state.PeerCertificates) > 0 {
		cert := state.PeerCertificates[0]
		metrics["subject"] = cert.Subject.CommonName
		metrics["issuer"] = cert.Issuer.CommonName
		metrics["notBefore"] = cert.NotBefore.UTC().Format(time.RFC3339)
		metrics["notAfter"] = cert.NotAfter.UTC().Format(time.RFC3339)
		metrics["daysRemaining"] = int(math.Floor(time.Until(cert.NotAfter).Hours() / 24))
		metrics["dnsNames"] = cert.DNSNames
	}
	return TestResult{Status: StatusPassed, Metrics: metrics}
}

func (p *probe) http(ctx context.Context) TestResult {
	metrics := map[string]any{"url": p.target.URL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.target.URL, nil)
	if err != nil {
		return failed(ctx, err, metrics)
	}
	req.Close = true

	begin := time.Now()
	resp, err := p.d.httpClient().Do(req)
	if err != nil {
		return failed(ctx, err, metrics)
	}
	defer resp.Body.Close()
	firstByte := time.Since(begin)

	n, _ := io.Copy(io.Discard, io.LimitReader(resp.Body, maxHTTPBodyBytes))

	metrics["statusCode"] = resp.StatusCode
	metrics["protocol"] = resp.Proto
	metrics["firstByteMs"] = millis(firstByte)
	metrics["bytes"] = n
	metrics["finalUrl"] = resp.Request.URL.String()
	if server := resp.Header.Get("Server"); server != "" {
		metrics["server"] = server
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		metrics["contentType"] = ct
	}

	if resp.StatusCode >= 400 {
		return TestResult{Status: StatusFailed, Metrics: metrics, Error: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
	return TestResult{Status: StatusPassed, Metrics: metrics}
}

// failed builds a failed result, naming timeouts explicitly.
func failed(ctx context.Context, err error, metrics map[string]any) TestResult {
	msg := errorText(err)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		msg = "timed out"
	}
	return TestResult{Status: StatusFailed, Metrics: metrics, Error: msg}
}

// errorText returns the domain message of err, or its text for other errors.
func errorText(err error) string {
	var e *webtools.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
