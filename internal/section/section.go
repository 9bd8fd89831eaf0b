package section

import (
	"context"
	"io"

	"netdiag/internal/capability"
	"netdiag/internal/probe"
)

// ID is the stable identifier of one diagnostic category.
type ID string

// Section identifiers, also the values shown by the interactive picker.
const (
	System     ID = "system"
	Interfaces ID = "interfaces"
	Routes     ID = "routes"
	DNS        ID = "dns"
	Sockets    ID = "sockets"
	Wireless   ID = "wireless"
	Ping       ID = "ping"
	PublicIP   ID = "publicip"
)

// Options are the process-level switches handlers respect. They are set once
// during flag parsing and read-only afterwards.
type Options struct {
	Verbose     bool // show full command output instead of clipping it
	Interactive bool // pick sections from a menu instead of running all
	Ping        bool // false skips the connectivity probes
	PublicIP    bool // false skips the public address lookup
}

// Env bundles everything a handler may consult: the capability snapshot, the
// run options, and the probe and spinner collaborators. Probe and Spin are
// injected so tests can record which tools a handler reaches for.
type Env struct {
	Caps  capability.Set
	Opts  Options
	Probe probe.Func
	Spin  func(title string, action func())
}

// spin runs action behind the environment's spinner, or inline when no
// spinner was wired up.
func (e Env) spin(title string, action func()) {
	if e.Spin == nil {
		action()
		return
	}
	e.Spin(title, action)
}

// HandlerFunc renders one diagnostic category to w. Handlers absorb their own
// failures: they always write something and never abort the run.
type HandlerFunc func(ctx context.Context, env Env, w io.Writer)

// Section binds a stable identifier and a display title to its handler.
// Needs is the handler's fallback ladder, preferred tool first; it stays
// empty for sections that need no external tool.
type Section struct {
	ID    ID
	Title string
	Needs []capability.Tool
	Run   HandlerFunc
}

// ToolFor returns the tool the handler will drive under caps: the first rung
// of the ladder that is installed. ok is false when the section needs a tool
// and has none.
func (s Section) ToolFor(caps capability.Set) (capability.Tool, bool) {
	if len(s.Needs) == 0 {
		return "", true
	}
	for _, t := range s.Needs {
		if caps.Has(t) {
			return t, true
		}
	}
	return "", false
}

// All returns the full registry. Slice order is execution order; a run over
// any subset keeps this order no matter how the subset was picked.
func All() []Section {
	return []Section{
		{ID: System, Title: "System", Run: runSystem},
		{ID: Interfaces, Title: "Interfaces", Run: runInterfaces,
			Needs: []capability.Tool{capability.ToolIP, capability.ToolIfconfig}},
		{ID: Routes, Title: "Routing table", Run: runRoutes,
			Needs: []capability.Tool{capability.ToolIP, capability.ToolNetstat}},
		{ID: DNS, Title: "DNS configuration", Run: runDNS,
			Needs: []capability.Tool{capability.ToolResolvectl, capability.ToolDig}},
		{ID: Sockets, Title: "Listening sockets", Run: runSockets,
			Needs: []capability.Tool{capability.ToolSS, capability.ToolNetstat}},
		{ID: Wireless, Title: "Wireless networks", Run: runWireless,
			Needs: []capability.Tool{capability.ToolNmcli, capability.ToolIW}},
		{ID: Ping, Title: "Connectivity", Run: runPing,
			Needs: []capability.Tool{capability.ToolPing}},
		{ID: PublicIP, Title: "Public IP", Run: runPublicIP,
			Needs: []capability.Tool{capability.ToolCurl}},
	}
}
