package network

import (
	"context"
	"net"
	"net/netip"
	"net/url"
	"strconv"
	"strings"

	"github.com/fwojciec/webtools"
	"golang.org/x/net/idna"
)

// Target is a parsed diagnostic target.
type Target struct {
	// Host is the ASCII host name or IP literal.
	Host string

	// Addr is set when Host is an IP literal.
	Addr netip.Addr

	Port int

	// URL is the address used by the HTTP check.
	URL string
}

// IsLiteral reports whether the target is an IP address.
func (t Target) IsLiteral() bool {
	return t.Addr.IsValid()
}

// ParseTarget parses a host name, IP address, host:port pair or http(s) URL.
// Internationalized host names are converted to their ASCII form. A
// non-zero port overrides the port of the target.
func ParseTarget(raw string, port int) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Target{}, webtools.Errorf(webtools.EINVALID, "target required")
	}
	if port < 0 || port > 65535 {
		return Target{}, webtools.Errorf(webtools.EINVALID, "port must be between 1 and 65535")
	}

	var t Target
	scheme := ""
	host := raw
	path := ""

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return Target{}, webtools.Errorf(webtools.EINVALID, "invalid target URL: %v", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return Target{}, webtools.Errorf(webtools.EINVALID, "unsupported URL scheme %q", u.Scheme)
		}
		scheme = u.Scheme
		host = u.Hostname()
		path = u.RequestURI()
		if p := u.Port(); p != "" {
			n, err := parsePort(p)
			if err != nil {
				return Target{}, err
			}
			t.Port = n
		}
	} else if h, p, err := net.SplitHostPort(raw); err == nil {
		n, err := parsePort(p)
		if err != nil {
			return Target{}, err
		}
		host, t.Port = h, n
	}
	host = strings.TrimSuffix(strings.Trim(host, "[]"), ".")
	if host == "" {
		return Target{}, webtools.Errorf(webtools.EINVALID, "target must include a host")
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		t.Addr = addr.Unmap()
		t.Host = t.Addr.String()
	} else {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return Target{}, webtools.Errorf(webtools.EINVALID, "invalid host name %q: %v", host, err)
		}
		t.Host = ascii
	}

	if port > 0 {
		t.Port = port
	}
	if t.Port == 0 {
		t.Port = 443
		if scheme == "http" {
			t.Port = 80
		}
	}
	if scheme == "" {
		scheme = "https"
		if t.Port != 443 {
			scheme = "http"
		}
	}
	if path == "" {
		path = "/"
	}
	hostPort := t.Host
	if t.Addr.Is6() {
		hostPort = "[" + t.Host + "]"
	}
	if !(scheme == "https" && t.Port == 443) && !(scheme == "http" && t.Port == 80) {
		hostPort = net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
	}
	t.URL = scheme + "://" + hostPort + path
	return t, nil
}

func parsePort(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return 0, webtools.Errorf(webtools.EINVALID, "invalid port %q", s)
	}
	return n, nil
}

// resolve returns the addresses of the target and its canonical name.
func (d *Diagnoser) resolve(ctx context.Context, t Target) ([]netip.Addr, string, error) {
	if t.IsLiteral() {
		return []netip.Addr{t.Addr}, "", nil
	}

	ipAddrs, err := d.resolver().LookupIPAddr(ctx, t.Host)
	if err != nil {
		return nil, "", err
	}
	addrs := make([]netip.Addr, 0, len(ipAddrs))
	for _, ip := range ipAddrs {
		if addr, ok := netip.AddrFromSlice(ip.IP); ok {
			addrs = append(addrs, addr.Unmap())
		}
	}
	if len(addrs) == 0 {
		return nil, "", webtools.Errorf(webtools.ENOTFOUND, "no addresses found for %s", t.Host)
	}

	cname, err := d.resolver().LookupCNAME(ctx, t.Host)
	if err != nil {
		cname = ""
	}
	cname = strings.TrimSuffix(cname, ".")
	if strings.EqualFold(cname, t.Host) {
		cname = ""
	}
	return addrs, cname, nil
}
