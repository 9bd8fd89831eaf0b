package section

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"netdiag/internal/capability"
	"netdiag/internal/probe"
)

// fakeProbe records every command a handler asks for and replies with
// scripted results, keyed by the full command line.
type fakeProbe struct {
	calls   []string
	scripts map[string]probe.Result
}

func (f *fakeProbe) run(ctx context.Context, timeout time.Duration, tool string, args ...string) probe.Result {
	line := tool
	if len(args) > 0 {
		line += " " + strings.Join(args, " ")
	}
	f.calls = append(f.calls, line)

	if res, ok := f.scripts[line]; ok {
		res.Tool = tool
		res.Args = args
		return res
	}
	return probe.Result{Tool: tool, Args: args, Output: tool + " output"}
}

func allCaps() capability.Set {
	return capability.DetectWith(func(string) (string, error) { return "/usr/bin/x", nil })
}

func defaultOpts() Options {
	return Options{Ping: true, PublicIP: true}
}

// testEnv leaves Spin nil on purpose: handlers must run fine without one.
func testEnv(caps capability.Set, opts Options, fp *fakeProbe) Env {
	return Env{Caps: caps, Opts: opts, Probe: fp.run}
}

func handlerFor(t *testing.T, id ID) HandlerFunc {
	t.Helper()
	for _, sec := range All() {
		if sec.ID == id {
			return sec.Run
		}
	}
	t.Fatalf("no section with ID %s", id)
	return nil
}

func TestTieredToolSelection(t *testing.T) {
	tests := []struct {
		name     string
		section  ID
		caps     capability.Set
		expected string // command line of the single probe call, "" for none
	}{
		{"interfaces prefers ip", Interfaces, capability.Set{IP: true, Ifconfig: true}, "ip address show"},
		{"interfaces falls back to ifconfig", Interfaces, capability.Set{Ifconfig: true}, "ifconfig -a"},
		{"interfaces with nothing", Interfaces, capability.Set{}, ""},
		{"routes prefers ip", Routes, capability.Set{IP: true, Netstat: true}, "ip route show"},
		{"routes falls back to netstat", Routes, capability.Set{Netstat: true}, "netstat -rn"},
		{"dns prefers resolvectl", DNS, capability.Set{Resolvectl: true, Dig: true}, "resolvectl status"},
		{"dns falls back to dig", DNS, capability.Set{Dig: true}, "dig +short one.one.one.one"},
		{"sockets prefers ss", Sockets, capability.Set{SS: true, Netstat: true}, "ss -tuln"},
		{"sockets falls back to netstat", Sockets, capability.Set{Netstat: true}, "netstat -tuln"},
		{"wireless prefers nmcli", Wireless, capability.Set{Nmcli: true, IW: true}, "nmcli device wifi list"},
		{"wireless falls back to iw", Wireless, capability.Set{IW: true}, "iw dev"},
		{"wireless with nothing", Wireless, capability.Set{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := &fakeProbe{}
			var buf bytes.Buffer

			handlerFor(t, tt.section)(context.Background(), testEnv(tt.caps, defaultOpts(), fp), &buf)

			if tt.expected == "" {
				if len(fp.calls) != 0 {
					t.Fatalf("expected no probe calls, got %v", fp.calls)
				}
				if !strings.Contains(buf.String(), "unavailable") {
					t.Errorf("output %q should say the section is unavailable", buf.String())
				}
				return
			}
			if len(fp.calls) != 1 || fp.calls[0] != tt.expected {
				t.Errorf("probe calls = %v, want exactly [%s]", fp.calls, tt.expected)
			}
			if buf.Len() == 0 {
				t.Error("handler wrote nothing")
			}
		})
	}
}

func TestFallbackGetsNoted(t *testing.T) {
	fp := &fakeProbe{}
	var buf bytes.Buffer

	runInterfaces(context.Background(), testEnv(capability.Set{Ifconfig: true}, defaultOpts(), fp), &buf)

	if !strings.Contains(buf.String(), "ip not found, using ifconfig instead") {
		t.Errorf("output %q should note the fallback", buf.String())
	}
}

func TestHandlersAlwaysWriteSomething(t *testing.T) {
	capsets := map[string]capability.Set{
		"everything installed": allCaps(),
		"nothing installed":    {},
	}

	for capsName, caps := range capsets {
		for _, sec := range All() {
			t.Run(fmt.Sprintf("%s/%s", sec.ID, capsName), func(t *testing.T) {
				fp := &fakeProbe{}
				var buf bytes.Buffer

				sec.Run(context.Background(), testEnv(caps, defaultOpts(), fp), &buf)

				if buf.Len() == 0 {
					t.Errorf("section %s wrote nothing with %s", sec.ID, capsName)
				}
			})
		}
	}
}

func TestFailedProbeKeepsOutput(t *testing.T) {
	fp := &fakeProbe{scripts: map[string]probe.Result{
		"ip address show": {Output: "2: eth0: <BROADCAST> state DOWN", Err: errors.New("exit status 1")},
	}}
	var buf bytes.Buffer

	runInterfaces(context.Background(), testEnv(capability.Set{IP: true}, defaultOpts(), fp), &buf)

	out := buf.String()
	if !strings.Contains(out, "state DOWN") {
		t.Errorf("output %q should keep the degraded command output", out)
	}
	if !strings.Contains(out, "! ") {
		t.Errorf("output %q should flag the failure", out)
	}
}

func TestPingDisabledByFlag(t *testing.T) {
	fp := &fakeProbe{}
	var buf bytes.Buffer
	opts := defaultOpts()
	opts.Ping = false

	runPing(context.Background(), testEnv(allCaps(), opts, fp), &buf)

	if len(fp.calls) != 0 {
		t.Errorf("no tool may run with ping disabled, got %v", fp.calls)
	}
	if !strings.Contains(buf.String(), "--no-ping") {
		t.Errorf("output %q should name the disabling flag", buf.String())
	}
}

func TestPingWithoutBinary(t *testing.T) {
	fp := &fakeProbe{}
	var buf bytes.Buffer

	runPing(context.Background(), testEnv(capability.Set{}, defaultOpts(), fp), &buf)

	if len(fp.calls) != 0 {
		t.Errorf("no tool may run without ping installed, got %v", fp.calls)
	}
	if !strings.Contains(buf.String(), "ping not installed") {
		t.Errorf("output %q should say ping is missing", buf.String())
	}
}

func TestPingProbesEveryTarget(t *testing.T) {
	fp := &fakeProbe{}
	var buf bytes.Buffer

	runPing(context.Background(), testEnv(capability.Set{Ping: true}, defaultOpts(), fp), &buf)

	expected := []string{
		"ping -c 1 -W 2 1.1.1.1",
		"ping -c 1 -W 2 8.8.8.8",
		"ping -c 1 -W 2 one.one.one.one",
	}
	if len(fp.calls) != len(expected) {
		t.Fatalf("probe calls = %v, want %v", fp.calls, expected)
	}
	for i, want := range expected {
		if fp.calls[i] != want {
			t.Errorf("call %d = %q, want %q", i, fp.calls[i], want)
		}
	}
}

func TestPublicIPDisabledByFlag(t *testing.T) {
	fp := &fakeProbe{}
	var buf bytes.Buffer
	opts := defaultOpts()
	opts.PublicIP = false

	runPublicIP(context.Background(), testEnv(allCaps(), opts, fp), &buf)

	if len(fp.calls) != 0 {
		t.Errorf("no tool may run with the lookup disabled, got %v", fp.calls)
	}
	if !strings.Contains(buf.String(), "--no-public-ip") {
		t.Errorf("output %q should name the disabling flag", buf.String())
	}
}

func TestPublicIPUsesFallbackURL(t *testing.T) {
	fp := &fakeProbe{scripts: map[string]probe.Result{
		"curl -fsS --max-time 2 " + publicIPURL:         {Err: errors.New("exit status 22")},
		"curl -fsS --max-time 2 " + publicIPFallbackURL: {Output: "203.0.113.7"},
	}}
	var buf bytes.Buffer

	runPublicIP(context.Background(), testEnv(capability.Set{Curl: true}, defaultOpts(), fp), &buf)

	if len(fp.calls) != 2 {
		t.Fatalf("probe calls = %v, want primary then fallback", fp.calls)
	}
	out := buf.String()
	if !strings.Contains(out, "203.0.113.7") {
		t.Errorf("output %q should carry the fallback answer", out)
	}
	if !strings.Contains(out, publicIPFallbackURL) {
		t.Errorf("output %q should say which endpoint answered", out)
	}
}

func TestPublicIPBothEndpointsFail(t *testing.T) {
	fp := &fakeProbe{scripts: map[string]probe.Result{
		"curl -fsS --max-time 2 " + publicIPURL: {
			Output: "curl: (22) The requested URL returned error: 503",
			Err:    errors.New("exit status 22"),
		},
		"curl -fsS --max-time 2 " + publicIPFallbackURL: {
			Output: "curl: (28) Connection timed out after 2001 milliseconds",
			Err:    errors.New("exit status 28"),
		},
	}}
	var buf bytes.Buffer

	runPublicIP(context.Background(), testEnv(capability.Set{Curl: true}, defaultOpts(), fp), &buf)

	out := buf.String()
	if !strings.Contains(out, "public IP lookup failed") {
		t.Errorf("output %q should report the double failure", out)
	}
	if !strings.Contains(out, "curl: (22)") || !strings.Contains(out, "curl: (28)") {
		t.Errorf("output %q should keep the text both attempts captured", out)
	}
	if got := strings.Count(out, "! "); got != 2 {
		t.Errorf("output %q flags %d failures, want 2", out, got)
	}
}

func TestClipping(t *testing.T) {
	lines := make([]string, 60)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	long := strings.Join(lines, "\n")

	tests := []struct {
		name        string
		verbose     bool
		wantLine60  bool
		wantClipped bool
	}{
		{"clipped by default", false, false, true},
		{"verbose shows everything", true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := &fakeProbe{scripts: map[string]probe.Result{
				"ip address show": {Output: long},
			}}
			opts := defaultOpts()
			opts.Verbose = tt.verbose
			var buf bytes.Buffer

			runInterfaces(context.Background(), testEnv(capability.Set{IP: true}, opts, fp), &buf)

			out := buf.String()
			if got := strings.Contains(out, "line 60"); got != tt.wantLine60 {
				t.Errorf("contains last line = %v, want %v", got, tt.wantLine60)
			}
			if got := strings.Contains(out, "20 more lines"); got != tt.wantClipped {
				t.Errorf("contains clip note = %v, want %v", got, tt.wantClipped)
			}
			if tt.wantClipped && !strings.Contains(out, "line 40") {
				t.Error("clipped output should still include line 40")
			}
		})
	}
}

func TestClipNoteSingular(t *testing.T) {
	lines := make([]string, maxLines+1)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	var buf bytes.Buffer

	writeClipped(&buf, Options{}, strings.Join(lines, "\n"))

	if !strings.Contains(buf.String(), "1 more line,") {
		t.Errorf("output %q should count the one hidden line", buf.String())
	}
	if strings.Contains(buf.String(), "1 more lines") {
		t.Errorf("output %q miscounts a single hidden line", buf.String())
	}
}

// Every rung of a section's declared ladder must be the tool the handler
// actually reaches for when only that rung is installed.
func TestNeedsLadderMatchesHandlers(t *testing.T) {
	for _, sec := range All() {
		for _, rung := range sec.Needs {
			t.Run(fmt.Sprintf("%s/%s", sec.ID, rung), func(t *testing.T) {
				caps := capability.DetectWith(func(name string) (string, error) {
					if name == string(rung) {
						return "/usr/bin/" + name, nil
					}
					return "", errors.New("not installed")
				})

				fp := &fakeProbe{}
				var buf bytes.Buffer
				sec.Run(context.Background(), testEnv(caps, defaultOpts(), fp), &buf)

				if len(fp.calls) == 0 {
					t.Fatalf("handler probed nothing with %s installed", rung)
				}
				if !strings.HasPrefix(fp.calls[0], string(rung)) {
					t.Errorf("first probe = %q, want it to drive %s", fp.calls[0], rung)
				}
			})
		}
	}
}

func TestToolFor(t *testing.T) {
	var interfaces Section
	for _, sec := range All() {
		if sec.ID == Interfaces {
			interfaces = sec
		}
	}

	tests := []struct {
		name     string
		caps     capability.Set
		expected capability.Tool
		ok       bool
	}{
		{"prefers first rung", capability.Set{IP: true, Ifconfig: true}, capability.ToolIP, true},
		{"falls to second rung", capability.Set{Ifconfig: true}, capability.ToolIfconfig, true},
		{"exhausted ladder", capability.Set{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool, ok := interfaces.ToolFor(tt.caps)
			if tool != tt.expected || ok != tt.ok {
				t.Errorf("ToolFor() = (%s, %v), want (%s, %v)", tool, ok, tt.expected, tt.ok)
			}
		})
	}

	// Sections without external needs are always available.
	for _, sec := range All() {
		if sec.ID == System {
			if _, ok := sec.ToolFor(capability.Set{}); !ok {
				t.Error("the system section must not depend on external tools")
			}
		}
	}
}

func TestSystemSectionWrites(t *testing.T) {
	var buf bytes.Buffer

	runSystem(context.Background(), testEnv(capability.Set{}, defaultOpts(), &fakeProbe{}), &buf)

	if buf.Len() == 0 {
		t.Error("system section wrote nothing")
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		seconds  uint64
		expected string
	}{
		{59, "0m"},
		{150, "2m"},
		{3*3600 + 120, "3h 2m"},
		{2*86400 + 5*3600 + 60, "2d 5h 1m"},
	}

	for _, tt := range tests {
		if got := formatUptime(tt.seconds); got != tt.expected {
			t.Errorf("formatUptime(%d) = %q, want %q", tt.seconds, got, tt.expected)
		}
	}
}
