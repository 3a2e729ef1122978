package network_test

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"

	"github.com/fwojciec/webtools"
	"github.com/fwojciec/webtools/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	LookupIPAddrFn func(ctx context.Context, host string) ([]net.IPAddr, error)
	LookupCNAMEFn  func(ctx context.Context, host string) (string, error)
}

func (r *fakeResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	return r.LookupIPAddrFn(ctx, host)
}

func (r *fakeResolver) LookupCNAME(ctx context.Context, host string) (string, error) {
	return r.LookupCNAMEFn(ctx, host)
}

func staticResolver(ips ...string) *fakeResolver {
	return &fakeResolver{
		LookupIPAddrFn: func(_ context.Context, _ string) ([]net.IPAddr, error) {
			var addrs []net.IPAddr
			for _, ip := range ips {
				addrs = append(addrs, net.IPAddr{IP: net.ParseIP(ip)})
			}
			return addrs, nil
		},
		LookupCNAMEFn: func(_ context.Context, host string) (string, error) {
			return host + ".", nil
		},
	}
}

type fakeCommander struct {
	RunFn func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func (c *fakeCommander) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return c.RunFn(ctx, name, args...)
}

func missingCommander() *fakeCommander {
	return &fakeCommander{RunFn: func(_ context.Context, name string, _ ...string) ([]byte, error) {
		return nil, &exec.Error{Name: name, Err: exec.ErrNotFound}
	}}
}

func findResult(t *testing.T, resp *network.Response, name string) network.TestResult {
	t.Helper()
	for _, r := range resp.Results {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no result for %s", name)
	return network.TestResult{}
}

func TestDiagnoser_Tools(t *testing.T) {
	t.Parallel()

	d := &network.Diagnoser{}
	tools := d.Tools()
	require.Len(t, tools, 1)
	assert.Equal(t, "network/network-diagnostic", tools[0].Info().Key())
}

func TestDiagnoser_Diagnose_validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  network.Request
	}{
		{"unknown test", network.Request{Target: "example.com", Tests: []string{"whois"}}},
		{"timeout above limit", network.Request{Target: "example.com", Timeout: network.MaxTimeout + 1}},
		{"negative timeout", network.Request{Target: "example.com", Timeout: -1}},
		{"missing target", network.Request{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := &network.Diagnoser{Resolver: staticResolver("93.184.215.14")}
			_, err := d.Diagnose(context.Background(), tt.req)
			assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
		})
	}
}

func TestDiagnoser_Diagnose_private(t *testing.T) {
	t.Parallel()

	t.Run("refuses loopback literals", func(t *testing.T) {
		t.Parallel()

		d := &network.Diagnoser{}
		_, err := d.Diagnose(context.Background(), network.Request{Target: "127.0.0.1", Tests: []string{"dns"}})
		assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
	})

	t.Run("refuses names resolving to private addresses", func(t *testing.T) {
		t.Parallel()

		d := &network.Diagnoser{Resolver: staticResolver("93.184.215.14", "10.0.0.5")}
		_, err := d.Diagnose(context.Background(), network.Request{Target: "intranet.example", Tests: []string{"dns"}})
		assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
		assert.Contains(t, webtools.ErrorMessage(err), "10.0.0.5")
	})

	t.Run("allows private addresses when configured", func(t *testing.T) {
		t.Parallel()

		d := &network.Diagnoser{AllowPrivate: true}
		resp, err := d.Diagnose(context.Background(), network.Request{Target: "127.0.0.1", Tests: []string{"dns"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"127.0.0.1"}, resp.ResolvedAddresses)
	})
}

func TestDiagnoser_Diagnose_dns(t *testing.T) {
	t.Parallel()

	t.Run("reports resolved addresses", func(t *testing.T) {
		t.Parallel()

		d := &network.Diagnoser{Resolver: staticResolver("93.184.215.14", "2606:2800:21f:cb07:6820:80da:af6b:8b2c")}
		resp, err := d.Diagnose(context.Background(), network.Request{Target: "https://example.com/path", Tests: []string{"dns"}})
		require.NoError(t, err)

		assert.Equal(t, "example.com", resp.Host)
		assert.Equal(t, 443, resp.Port)
		assert.Len(t, resp.ResolvedAddresses, 2)

		dns := findResult(t, resp, "dns")
		assert.Equal(t, network.StatusPassed, dns.Status)
		assert.Equal(t, 1, dns.Metrics["ipv4"])
		assert.Equal(t, 1, dns.Metrics["ipv6"])
		assert.NotContains(t, dns.Metrics, "cname")
		assert.Equal(t, network.Summary{Passed: 1}, resp.Summary)
	})

	t.Run("fails every check when resolution fails", func(t *testing.T) {
		t.Parallel()

		d := &network.Diagnoser{Resolver: &fakeResolver{
			LookupIPAddrFn: func(_ context.Context, host string) ([]net.IPAddr, error) {
				return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
			},
		}}
		resp, err := d.Diagnose(context.Background(), network.Request{Target: "missing.example", Tests: []string{"dns", "tcp"}})
		require.NoError(t, err)

		assert.Empty(t, resp.ResolvedAddresses)
		assert.NotNil(t, resp.ResolvedAddresses)
		assert.Equal(t, network.StatusFailed, findResult(t, resp, "dns").Status)
		assert.Contains(t, findResult(t, resp, "tcp").Error, "host could not be resolved")
		assert.Equal(t, network.Summary{Failed: 2}, resp.Summary)
	})
}

func TestDiagnoser_Diagnose_tcp(t *testing.T) {
	t.Parallel()

	t.Run("connects to an open port", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		t.Cleanup(func() { _ = ln.Close() })
		port := ln.Addr().(*net.TCPAddr).Port

		d := &network.Diagnoser{AllowPrivate: true}
		resp, err := d.Diagnose(context.Background(), network.Request{Target: "127.0.0.1", Port: port, Tests: []string{"tcp"}})
		require.NoError(t, err)

		tcp := findResult(t, resp, "tcp")
		assert.Equal(t, network.StatusPassed, tcp.Status, tcp.Error)
		assert.Contains(t, tcp.Metrics, "connectMs")
	})

	t.Run("fails on a closed port", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		port := ln.Addr().(*net.TCPAddr).Port
		require.NoError(t, ln.Close())

		d := &network.Diagnoser{AllowPrivate: true}
		resp, err := d.Diagnose(context.Background(), network.Request{Target: "127.0.0.1", Port: port, Tests: []string{"tcp"}})
		require.NoError(t, err)
		assert.Equal(t, network.StatusFailed, findResult(t, resp, "tcp").Status)
	})
}

func TestDiagnoser_Diagnose_httpAndTLS(t *testing.T) {
	t.Parallel()

	newServer := func(t *testing.T, status int) (*httptest.Server, *network.Diagnoser) {
		t.Helper()
		srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Server", "test-server")
			w.WriteHeader(status)
			_, _ = w.Write([]byte("ok"))
		}))
		t.Cleanup(srv.Close)

		pool := x509.NewCertPool()
		pool.AddCert(srv.Certificate())
		return srv, &network.Diagnoser{
			HTTPClient:   srv.Client(),
			TLSConfig:    &tls.Config{RootCAs: pool},
			AllowPrivate: true,
		}
	}

	t.Run("reports status and certificate details", func(t *testing.T) {
		t.Parallel()

		srv, d := newServer(t, http.StatusOK)
		resp, err := d.Diagnose(context.Background(), network.Request{Target: srv.URL, Tests: []string{"http", "tls"}})
		require.NoError(t, err)

		httpRes := findResult(t, resp, "http")
		assert.Equal(t, network.StatusPassed, httpRes.Status, httpRes.Error)
		assert.Equal(t, http.StatusOK, httpRes.Metrics["statusCode"])
		assert.Equal(t, "test-server", httpRes.Metrics["server"])

		tlsRes := findResult(t, resp, "tls")
		assert.Equal(t, network.StatusPassed, tlsRes.Status, tlsRes.Error)
		assert.True(t, strings.HasPrefix(tlsRes.Metrics["version"].(string), "TLS 1."))
		assert.Contains(t, tlsRes.Metrics, "notAfter")

		assert.Equal(t, "http", resp.Results[0].Name)
		assert.Equal(t, "tls", resp.Results[1].Name)
		assert.Equal(t, network.Summary{Passed: 2}, resp.Summary)
	})

	t.Run("fails on server errors", func(t *testing.T) {
		t.Parallel()

		srv, d := newServer(t, http.StatusInternalServerError)
		resp, err := d.Diagnose(context.Background(), network.Request{Target: srv.URL, Tests: []string{"http"}})
		require.NoError(t, err)

		httpRes := findResult(t, resp, "http")
		assert.Equal(t, network.StatusFailed, httpRes.Status)
		assert.Equal(t, "HTTP 500", httpRes.Error)
	})

	t.Run("fails TLS when the certificate is not trusted", func(t *testing.T) {
		t.Parallel()

		srv, d := newServer(t, http.StatusOK)
		d.TLSConfig = nil
		resp, err := d.Diagnose(context.Background(), network.Request{Target: srv.URL, Tests: []string{"tls"}})
		require.NoError(t, err)
		assert.Equal(t, network.StatusFailed, findResult(t, resp, "tls").Status)
	})
}

const linuxPing = `PING 93.184.215.14 (93.184.215.14) 56(84) bytes of data.
64 bytes from 93.184.215.14: icmp_seq=1 ttl=56 time=11.2 ms
64 bytes from 93.184.215.14: icmp_seq=2 ttl=56 time=11.5 ms
64 bytes from 93.184.215.14: icmp_seq=4 ttl=56 time=11.9 ms

--- 93.184.215.14 ping statistics ---
4 packets transmitted, 3 received, 25% packet loss, time 3004ms
rtt min/avg/max/mdev = 11.200/11.533/11.900/0.286 ms
`

const bsdPing = `--- 93.184.215.14 ping statistics ---
4 packets transmitted, 4 packets received, 0.0% packet loss
round-trip min/avg/max/stddev = 10.101/10.502/11.003/0.334 ms
`

const allLostPing = `--- 93.184.215.14 ping statistics ---
4 packets transmitted, 0 received, 100% packet loss, time 3062ms
`

func TestParsePing(t *testing.T) {
	t.Parallel()

	stats, ok := network.ParsePing(linuxPing)
	require.True(t, ok)
	assert.Equal(t, 4, stats.Transmitted)
	assert.Equal(t, 3, stats.Received)
	assert.InDelta(t, 11.533, stats.AvgMs, 0.0001)
	assert.InDelta(t, 0.286, stats.JitterMs, 0.0001)

	stats, ok = network.ParsePing(bsdPing)
	require.True(t, ok)
	assert.Equal(t, 4, stats.Received)
	assert.InDelta(t, 11.003, stats.MaxMs, 0.0001)

	stats, ok = network.ParsePing(allLostPing)
	require.True(t, ok)
	assert.False(t, stats.HasRTT)

	_, ok = network.ParsePing("ping: unknown host")
	assert.False(t, ok)
}

func TestDiagnoser_Diagnose_ping(t *testing.T) {
	t.Parallel()

	t.Run("parses ping output", func(t *testing.T) {
		t.Parallel()

		var gotName string
		var gotArgs []string
		d := &network.Diagnoser{Commander: &fakeCommander{RunFn: func(_ context.Context, name string, args ...string) ([]byte, error) {
			gotName, gotArgs = name, args
			return []byte(linuxPing), nil
		}}}

		resp, err := d.Diagnose(context.Background(), network.Request{Target: "93.184.215.14", Tests: []string{"ping"}})
		require.NoError(t, err)

		ping := findResult(t, resp, "ping")
		assert.Equal(t, network.StatusPassed, ping.Status)
		assert.Equal(t, 25.0, ping.Metrics["lossPercent"])
		assert.Equal(t, 11.533, ping.Metrics["avgMs"])
		assert.Equal(t, "ping", gotName)
		assert.Contains(t, gotArgs, "93.184.215.14")
	})

	t.Run("fails when nothing replies", func(t *testing.T) {
		t.Parallel()

		d := &network.Diagnoser{Commander: &fakeCommander{RunFn: func(_ context.Context, _ string, _ ...string) ([]byte, error) {
			return []byte(allLostPing), errors.New("exit status 1")
		}}}

		resp, err := d.Diagnose(context.Background(), network.Request{Target: "93.184.215.14", Tests: []string{"ping"}})
		require.NoError(t, err)

		ping := findResult(t, resp, "ping")
		assert.Equal(t, network.StatusFailed, ping.Status)
		assert.Equal(t, "no replies received", ping.Error)
		assert.Equal(t, 100.0, ping.Metrics["lossPercent"])
	})

	t.Run("reports unavailable binaries without inventing numbers", func(t *testing.T) {
		t.Parallel()

		d := &network.Diagnoser{Commander: missingCommander()}
		resp, err := d.Diagnose(context.Background(), network.Request{Target: "93.184.215.14", Tests: []string{"ping", "traceroute", "dns"}})
		require.NoError(t, err)

		ping := findResult(t, resp, "ping")
		assert.Equal(t, network.StatusUnavailable, ping.Status)
		assert.Contains(t, ping.Error, "not installed")
		assert.Empty(t, ping.Metrics)
		assert.Equal(t, network.StatusUnavailable, findResult(t, resp, "traceroute").Status)
		assert.Equal(t, network.Summary{Passed: 1, Unavailable: 2}, resp.Summary)
	})
}

const traceOutput = `traceroute to 93.184.215.14 (93.184.215.14), 20 hops max, 60 byte packets
 1  192.168.1.1  1.123 ms
 2  *
 3  93.184.215.14  12.345 ms
`

func TestParseTraceroute(t *testing.T) {
	t.Parallel()

	hops := network.ParseTraceroute(traceOutput)
	require.Len(t, hops, 3)
	assert.Equal(t, "192.168.1.1", hops[0].Address)
	require.NotNil(t, hops[0].RTTMs)
	assert.InDelta(t, 1.123, *hops[0].RTTMs, 0.0001)
	assert.Equal(t, "*", hops[1].Address)
	assert.Nil(t, hops[1].RTTMs)
	assert.Equal(t, 3, hops[2].Hop)
}

func TestDiagnoser_Diagnose_traceroute(t *testing.T) {
	t.Parallel()

	t.Run("passes when the destination is reached", func(t *testing.T) {
		t.Parallel()

		d := &network.Diagnoser{Commander: &fakeCommander{RunFn: func(_ context.Context, name string, _ ...string) ([]byte, error) {
			assert.Equal(t, "traceroute", name)
			return []byte(traceOutput), nil
		}}}

		resp, err := d.Diagnose(context.Background(), network.Request{Target: "93.184.215.14", Tests: []string{"traceroute"}})
		require.NoError(t, err)

		trace := findResult(t, resp, "traceroute")
		assert.Equal(t, network.StatusPassed, trace.Status)
		assert.Equal(t, 3, trace.Metrics["hopCount"])
		assert.Equal(t, true, trace.Metrics["reached"])
	})

	t.Run("fails when the destination is not reached", func(t *testing.T) {
		t.Parallel()

		d := &network.Diagnoser{Commander: &fakeCommander{RunFn: func(_ context.Context, _ string, _ ...string) ([]byte, error) {
			return []byte(" 1  192.168.1.1  1.1 ms\n 2  *\n"), nil
		}}}

		resp, err := d.Diagnose(context.Background(), network.Request{Target: "93.184.215.14", Tests: []string{"traceroute"}})
		require.NoError(t, err)

		trace := findResult(t, resp, "traceroute")
		assert.Equal(t, network.StatusFailed, trace.Status)
		assert.Equal(t, "destination not reached", trace.Error)
	})
}

func TestExecCommander_Run(t *testing.T) {
	t.Parallel()

	_, err := network.ExecCommander{}.Run(context.Background(), "webtools-no-such-binary")
	assert.ErrorIs(t, err, exec.ErrNotFound)
}
