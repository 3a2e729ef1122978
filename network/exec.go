package network

import (
	"bufio"
	"context"
	"errors"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// Commander runs external programs.
type Commander interface {
	// Run executes name with args and returns its combined output. A
	// missing binary is reported with an error wrapping exec.ErrNotFound.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecCommander runs programs with os/exec.
type ExecCommander struct{}

// Run implements Commander.
func (ExecCommander) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Ping and traceroute settings.
const (
	pingCount     = 4
	traceMaxHops  = 20
	traceWaitSecs = 2
	pingWaitSecs  = 2
)

var (
	pingPacketsRe = regexp.MustCompile(`(\d+) packets transmitted, (\d+) (?:packets )?received`)
	pingRTTRe     = regexp.MustCompile(`= ([\d.]+)/([\d.]+)/([\d.]+)/([\d.]+) ms`)
	traceHopRe    = regexp.MustCompile(`^\s*(\d+)\s+(.*)$`)
	traceRTTRe    = regexp.MustCompile(`([\d.]+) ms`)
)

// PingStats is the parsed summary of ping output.
type PingStats struct {
	Transmitted int
	Received    int
	MinMs       float64
	AvgMs       float64
	MaxMs       float64
	JitterMs    float64
	HasRTT      bool
}

// ParsePing parses the summary lines of iputils or BSD ping output.
// The bool is false when no summary is present.
func ParsePing(out string) (PingStats, bool) {
	var s PingStats
	m := pingPacketsRe.FindStringSubmatch(out)
	if m == nil {
		return s, false
	}
	s.Transmitted, _ = strconv.Atoi(m[1])
	s.Received, _ = strconv.Atoi(m[2])
	if m := pingRTTRe.FindStringSubmatch(out); m != nil {
		s.MinMs, _ = strconv.ParseFloat(m[1], 64)
		s.AvgMs, _ = strconv.ParseFloat(m[2], 64)
		s.MaxMs, _ = strconv.ParseFloat(m[3], 64)
		s.JitterMs, _ = strconv.ParseFloat(m[4], 64)
		s.HasRTT = true
	}
	return s, true
}

// Hop is one line of traceroute output. RTTMs is nil for a timed out hop.
type Hop struct {
	Hop     int      `json:"hop"`
	Address string   `json:"address"`
	RTTMs   *float64 `json:"rttMs"`
}

// ParseTraceroute parses numeric traceroute output (-n -q 1).
func ParseTraceroute(out string) []Hop {
	hops := []Hop{}
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		m := traceHopRe.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		rest := strings.TrimSpace(m[2])
		hop := Hop{Hop: n, Address: "*"}
		if !strings.HasPrefix(rest, "*") {
			if fields := strings.Fields(rest); len(fields) > 0 {
				hop.Address = fields[0]
			}
			if rtt := traceRTTRe.FindStringSubmatch(rest); rtt != nil {
				if v, err := strconv.ParseFloat(rtt[1], 64); err == nil {
					hop.RTTMs = &v
				}
			}
		}
		hops = append(hops, hop)
	}
	return hops
}

func (p *probe) ping(ctx context.Context) TestResult {
	if runtime.GOOS == "windows" {
		return unavailable("ping output parsing is not supported on windows")
	}
	wait := strconv.Itoa(pingWaitSecs)
	if runtime.GOOS == "darwin" {
		wait = strconv.Itoa(pingWaitSecs * 1000)
	}
	addr := p.addrs[0].String()
	args := []string{"-n", "-c", strconv.Itoa(pingCount), "-W", wait, addr}
	if p.addrs[0].Is6() && runtime.GOOS == "darwin" {
		return p.pingWith(ctx, "ping6", args)
	}
	return p.pingWith(ctx, "ping", args)
}

func (p *probe) pingWith(ctx context.Context, name string, args []string) TestResult {
	out, err := p.d.commander().Run(ctx, name, args...)
	if errors.Is(err, exec.ErrNotFound) {
		return unavailable(name + " is not installed on the server")
	}

	stats, ok := ParsePing(string(out))
	if !ok {
		if err == nil {
			err = errors.New("unrecognized ping output")
		}
		return failed(ctx, err, nil)
	}

	metrics := map[string]any{
		"address":     args[len(args)-1],
		"transmitted": stats.Transmitted,
		"received":    stats.Received,
		"lossPercent": lossPercent(stats),
	}
	if stats.HasRTT {
		metrics["minMs"] = stats.MinMs
		metrics["avgMs"] = stats.AvgMs
		metrics["maxMs"] = stats.MaxMs
		metrics["jitterMs"] = stats.JitterMs
	}
	if stats.Received == 0 {
		return TestResult{Status: StatusFailed, Metrics: metrics, Error: "no replies received"}
	}
	return TestResult{Status: StatusPassed, Metrics: metrics}
}

func lossPercent(s PingStats) float64 {
	if s.Transmitted == 0 {
		return 100
	}
	loss := float64(s.Transmitted-s.Received) / float64(s.Transmitted) * 100
	return float64(int(loss*10+0.5)) / 10
}

func (p *probe) traceroute(ctx context.Context) TestResult {
	if runtime.GOOS == "windows" {
		return unavailable("traceroute output parsing is not supported on windows")
	}
	addr := p.addrs[0].String()
	args := []string{"-n", "-q", "1", "-w", strconv.Itoa(traceWaitSecs), "-m", strconv.Itoa(traceMaxHops), addr}
	out, err := p.d.commander().Run(ctx, "traceroute", args...)
	if errors.Is(err, exec.ErrNotFound) {
		return unavailable("traceroute is not installed on the server")
	}

	hops := ParseTraceroute(string(out))
	reached := false
	for _, h := range hops {
		if h.Address == addr {
			reached = true
			break
		}
	}
	metrics := map[string]any{
		"address":  addr,
		"hops":     hops,
		"hopCount": len(hops),
		"reached":  reached,
	}

	switch {
	case reached:
		return TestResult{Status: StatusPassed, Metrics: metrics}
	case len(hops) == 0 && err != nil:
		return failed(ctx, err, metrics)
	case ctx.Err() != nil:
		return TestResult{Status: StatusFailed, Metrics: metrics, Error: "timed out before reaching the destination"}
	default:
		return TestResult{Status: StatusFailed, Metrics: metrics, Error: "destination not reached"}
	}
}

func unavailable(reason string) TestResult {
	return TestResult{Status: StatusUnavailable, Metrics: map[string]any{}, Error: reason}
}
