package section

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"netdiag/internal/probe"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// maxLines is the clip threshold for command output when not verbose.
const maxLines = 40

// pingTargets are probed in order; a mix of raw addresses and one hostname so
// a broken resolver shows up even when raw connectivity works.
var pingTargets = []string{"1.1.1.1", "8.8.8.8", "one.one.one.one"}

const (
	publicIPURL         = "https://ifconfig.me"
	publicIPFallbackURL = "https://api.ipify.org"
)

// tier is one rung of a fallback ladder: a tool invocation plus whether the
// capability snapshot says the tool exists.
type tier struct {
	have bool
	tool string
	args []string
}

// ============================================================================
// SECTION HANDLERS
// ============================================================================

func runSystem(ctx context.Context, env Env, w io.Writer) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		fmt.Fprintf(w, "host info unavailable: %v\n", err)
	} else {
		fmt.Fprintf(w, "Host:      %s\n", info.Hostname)
		fmt.Fprintf(w, "OS:        %s %s (kernel %s)\n", info.Platform, info.PlatformVersion, info.KernelVersion)
		fmt.Fprintf(w, "Uptime:    %s\n", formatUptime(info.Uptime))
		fmt.Fprintf(w, "Processes: %d\n", info.Procs)
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		fmt.Fprintf(w, "Memory:    %.1f GB used of %.1f GB (%.0f%%)\n",
			toGB(vm.Used), toGB(vm.Total), vm.UsedPercent)
	} else {
		fmt.Fprintf(w, "memory info unavailable: %v\n", err)
	}

	if avg, err := load.AvgWithContext(ctx); err == nil {
		fmt.Fprintf(w, "Load:      %.2f %.2f %.2f\n", avg.Load1, avg.Load5, avg.Load15)
	}
}

func runInterfaces(ctx context.Context, env Env, w io.Writer) {
	runTiered(ctx, env, w,
		tier{env.Caps.IP, "ip", []string{"address", "show"}},
		tier{env.Caps.Ifconfig, "ifconfig", []string{"-a"}},
	)
}

func runRoutes(ctx context.Context, env Env, w io.Writer) {
	runTiered(ctx, env, w,
		tier{env.Caps.IP, "ip", []string{"route", "show"}},
		tier{env.Caps.Netstat, "netstat", []string{"-rn"}},
	)
}

func runDNS(ctx context.Context, env Env, w io.Writer) {
	runTiered(ctx, env, w,
		tier{env.Caps.Resolvectl, "resolvectl", []string{"status"}},
		tier{env.Caps.Dig, "dig", []string{"+short", "one.one.one.one"}},
	)
}

func runSockets(ctx context.Context, env Env, w io.Writer) {
	runTiered(ctx, env, w,
		tier{env.Caps.SS, "ss", []string{"-tuln"}},
		tier{env.Caps.Netstat, "netstat", []string{"-tuln"}},
	)
}

func runWireless(ctx context.Context, env Env, w io.Writer) {
	runTiered(ctx, env, w,
		tier{env.Caps.Nmcli, "nmcli", []string{"device", "wifi", "list"}},
		tier{env.Caps.IW, "iw", []string{"dev"}},
	)
}

func runPing(ctx context.Context, env Env, w io.Writer) {
	if !env.Opts.Ping {
		fmt.Fprintln(w, "connectivity probes disabled (--no-ping)")
		return
	}
	if !env.Caps.Ping {
		fmt.Fprintln(w, "ping not installed, skipping connectivity probes")
		return
	}

	results := make([]probe.Result, len(pingTargets))
	env.spin("probing connectivity", func() {
		for i, target := range pingTargets {
			results[i] = env.Probe(ctx, 4*time.Second, "ping", "-c", "1", "-W", "2", target)
		}
	})

	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeResult(w, env.Opts, res)
	}
}

func runPublicIP(ctx context.Context, env Env, w io.Writer) {
	if !env.Opts.PublicIP {
		fmt.Fprintln(w, "public IP lookup disabled (--no-public-ip)")
		return
	}
	if !env.Caps.Curl {
		fmt.Fprintln(w, "curl not installed, skipping public IP lookup")
		return
	}

	var primary, fallback probe.Result
	tried := 1
	env.spin("looking up public IP", func() {
		primary = env.Probe(ctx, 4*time.Second, "curl", "-fsS", "--max-time", "2", publicIPURL)
		if !primary.OK() {
			fallback = env.Probe(ctx, 4*time.Second, "curl", "-fsS", "--max-time", "2", publicIPFallbackURL)
			tried = 2
		}
	})

	if primary.OK() {
		fmt.Fprintf(w, "Public IP: %s\n", primary.Output)
		return
	}
	if tried == 2 && fallback.OK() {
		fmt.Fprintf(w, "Public IP: %s (via %s)\n", fallback.Output, publicIPFallbackURL)
		return
	}
	fmt.Fprintln(w, "public IP lookup failed")
	writeResult(w, env.Opts, primary)
	if tried == 2 {
		writeResult(w, env.Opts, fallback)
	}
}

// ============================================================================
// SHARED HELPERS
// ============================================================================

// runTiered walks a fallback ladder and runs the first tool the capability
// snapshot says exists. Later rungs get a one-line note so the reader knows
// why the output looks different from the usual tool's.
func runTiered(ctx context.Context, env Env, w io.Writer, tiers ...tier) {
	for i, t := range tiers {
		if !t.have {
			continue
		}
		if i > 0 {
			fmt.Fprintf(w, "%s not found, using %s instead\n", tiers[0].tool, t.tool)
		}
		res := env.Probe(ctx, probe.DefaultTimeout, t.tool, t.args...)
		writeResult(w, env.Opts, res)
		return
	}

	names := make([]string, len(tiers))
	for i, t := range tiers {
		names[i] = t.tool
	}
	fmt.Fprintf(w, "unavailable: install %s\n", strings.Join(names, " or "))
}

// writeResult prints a probe outcome: the captured output first, clipped
// unless verbose, then the failure reason when there is one. Failed commands
// often still print useful text, so the output is never discarded.
func writeResult(w io.Writer, opts Options, res probe.Result) {
	if res.Output != "" {
		writeClipped(w, opts, res.Output)
	}
	if !res.OK() {
		fmt.Fprintf(w, "! %s\n", res.Reason())
	}
}

// writeClipped writes text whole when verbose, otherwise at most maxLines
// lines followed by a note saying how much was held back.
func writeClipped(w io.Writer, opts Options, text string) {
	lines := strings.Split(text, "\n")
	if opts.Verbose || len(lines) <= maxLines {
		fmt.Fprintln(w, text)
		return
	}
	fmt.Fprintln(w, strings.Join(lines[:maxLines], "\n"))
	hidden := len(lines) - maxLines
	noun := "lines"
	if hidden == 1 {
		noun = "line"
	}
	fmt.Fprintf(w, "... %d more %s, rerun with --verbose to see everything\n", hidden, noun)
}

func formatUptime(seconds uint64) string {
	d := time.Duration(seconds) * time.Second
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func toGB(b uint64) float64 {
	return float64(b) / (1024 * 1024 * 1024)
}
