package capability

import (
	"os/exec"
)

// Tool names one external utility netdiag knows how to drive.
type Tool string

const (
	ToolIP         Tool = "ip"
	ToolIfconfig   Tool = "ifconfig"
	ToolSS         Tool = "ss"
	ToolNetstat    Tool = "netstat"
	ToolNmcli      Tool = "nmcli"
	ToolResolvectl Tool = "resolvectl"
	ToolDig        Tool = "dig"
	ToolPing       Tool = "ping"
	ToolCurl       Tool = "curl"
	ToolIW         Tool = "iw"
	ToolBat        Tool = "bat"
)

// Known lists every tool the detector probes, in a stable order.
func Known() []Tool {
	return []Tool{
		ToolIP,
		ToolIfconfig,
		ToolSS,
		ToolNetstat,
		ToolNmcli,
		ToolResolvectl,
		ToolDig,
		ToolPing,
		ToolCurl,
		ToolIW,
		ToolBat,
	}
}

// LookupFunc resolves a command name the way exec.LookPath does.
type LookupFunc func(name string) (string, error)

// Set is a snapshot of which external tools were found on PATH.
// It is taken once at startup and handlers read the same snapshot for the
// whole run; nothing mutates it afterwards.
type Set struct {
	IP         bool
	Ifconfig   bool
	SS         bool
	Netstat    bool
	Nmcli      bool
	Resolvectl bool
	Dig        bool
	Ping       bool
	Curl       bool
	IW         bool
	Bat        bool
}

// Detect probes PATH once for every known tool.
func Detect() Set {
	return DetectWith(exec.LookPath)
}

// DetectWith runs the probe with a caller-supplied lookup so tests can
// simulate arbitrary machines without touching PATH.
func DetectWith(look LookupFunc) Set {
	has := func(t Tool) bool {
		_, err := look(string(t))
		return err == nil
	}
	return Set{
		IP:         has(ToolIP),
		Ifconfig:   has(ToolIfconfig),
		SS:         has(ToolSS),
		Netstat:    has(ToolNetstat),
		Nmcli:      has(ToolNmcli),
		Resolvectl: has(ToolResolvectl),
		Dig:        has(ToolDig),
		Ping:       has(ToolPing),
		Curl:       has(ToolCurl),
		IW:         has(ToolIW),
		Bat:        has(ToolBat),
	}
}

// Has reports whether t was found on PATH.
func (s Set) Has(t Tool) bool {
	switch t {
	case ToolIP:
		return s.IP
	case ToolIfconfig:
		return s.Ifconfig
	case ToolSS:
		return s.SS
	case ToolNetstat:
		return s.Netstat
	case ToolNmcli:
		return s.Nmcli
	case ToolResolvectl:
		return s.Resolvectl
	case ToolDig:
		return s.Dig
	case ToolPing:
		return s.Ping
	case ToolCurl:
		return s.Curl
	case ToolIW:
		return s.IW
	case ToolBat:
		return s.Bat
	}
	return false
}

// Found returns the names of the detected tools, for debug logging.
func (s Set) Found() []string {
	return s.names(true)
}

// Missing returns the names of the tools that were not detected.
func (s Set) Missing() []string {
	return s.names(false)
}

func (s Set) names(present bool) []string {
	var out []string
	for _, t := range Known() {
		if s.Has(t) == present {
			out = append(out, string(t))
		}
	}
	return out
}
