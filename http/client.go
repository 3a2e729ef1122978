// Package http provides the outbound HTTP client used by the SEO tools and
// the JSON API server that exposes the tool catalog.
package http

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"

	"github.com/fwojciec/webtools"
)

// DefaultFetchTimeout is the default timeout for outbound requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent identifies outbound requests.
const DefaultUserAgent = "webtools/1.0 (+https://github.com/fwojciec/webtools)"

// maxRedirects matches the limit of http.Client's default policy.
const maxRedirects = 10

// NewClient returns an *http.Client for requests made on behalf of users.
// Unless allowPrivate is set the dialer refuses every address rejected by
// webtools.CheckPublicAddr, including addresses reached through redirects.
func NewClient(timeout time.Duration, allowPrivate bool) *http.Client {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	dialer := &net.Dialer{Timeout: timeout}
	if !allowPrivate {
		dialer.Control = guardAddr
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	// A proxy would dial on our behalf and bypass the address check.
	transport.Proxy = nil

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return webtools.Errorf(webtools.EINVALID, "redirect to unsupported scheme %q", req.URL.Scheme)
			}
			return nil
		},
	}
}

// guardAddr runs after name resolution, so it sees the address actually dialed.
func guardAddr(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return webtools.Errorf(webtools.EINVALID, "invalid address %q", address)
	}
	return webtools.CheckPublicAddr(ap.Addr())
}
