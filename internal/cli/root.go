package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netdiag/internal/capability"
	"netdiag/internal/probe"
	"netdiag/internal/runner"
	"netdiag/internal/section"
	"netdiag/internal/sink"
	"netdiag/ui/prompt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// RunFunc executes the diagnostic pipeline once flags are parsed. It is a
// parameter of NewRootCmd so tests can watch the flag wiring without running
// external tools.
type RunFunc func(ctx context.Context, opts section.Options) error

// NewRootCmd builds the one and only command. netdiag has no subcommands: it
// runs the report, and flags shape which parts.
func NewRootCmd(run RunFunc) *cobra.Command {
	var (
		opts       section.Options
		noPing     bool
		noPublicIP bool
	)

	cmd := &cobra.Command{
		Use:     "netdiag",
		Short:   "Network diagnostics with whatever tools this machine has",
		Version: version,
		Long: `netdiag inspects the local network setup by driving the usual command line
tools (ip, ss, resolvectl, ping, curl and friends), falling back to older
ones when the preferred tool is missing. Sections whose tools are absent
say so instead of failing the run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(opts.Verbose)
			log.Debug().Str("version", version).Msg("starting")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Ping = !noPing
			opts.PublicIP = !noPublicIP
			return run(cmd.Context(), opts)
		},
	}

	fl := cmd.Flags()
	fl.BoolVarP(&opts.Verbose, "verbose", "v", false, "show full command output instead of clipping long sections")
	fl.BoolVarP(&opts.Interactive, "interactive", "i", false, "pick the sections to run from a menu")
	fl.BoolVar(&noPing, "no-ping", false, "skip the connectivity probes")
	fl.BoolVar(&noPublicIP, "no-public-ip", false, "skip the public IP lookup")

	return cmd
}

// Execute runs the command under an interrupt-aware context and maps the
// outcome to a process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd(realPipeline().run)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "netdiag: %v\n", err)
		return 1
	}
	return 0
}

// pipeline carries the collaborators one diagnostic run touches. Execute
// wires the real ones; tests swap fields to drive the run without a
// terminal or external tools.
type pipeline struct {
	detect        func() capability.Set
	interactiveOK func() bool
	choose        section.Chooser
	probe         probe.Func
	spin          func(title string, action func())
	stdout        io.Writer
	stderr        io.Writer
}

func realPipeline() pipeline {
	return pipeline{
		detect:        capability.Detect,
		interactiveOK: prompt.InteractiveAvailable,
		choose:        prompt.ChooseSections,
		probe:         probe.Run,
		spin:          prompt.Spin,
		stdout:        os.Stdout,
		stderr:        os.Stderr,
	}
}

// run executes the pipeline: detect capabilities, open the sink, resolve the
// selection, run it. The sink closes on every path so the pager handoff and
// temp file cleanup survive interrupts and early returns.
func (p pipeline) run(ctx context.Context, opts section.Options) error {
	caps := p.detect()
	log.Debug().
		Strs("found", caps.Found()).
		Strs("missing", caps.Missing()).
		Msg("tool detection complete")

	if opts.Interactive && !p.interactiveOK() {
		return errors.New("--interactive needs a terminal")
	}

	pager := ""
	if caps.Bat {
		pager = string(capability.ToolBat)
	}
	out := sink.Open(pager, p.stdout, p.stderr)
	defer func() {
		if err := out.Close(); err != nil {
			log.Warn().Err(err).Msg("pager handoff failed, report dumped to stdout")
		}
	}()

	selected, err := section.Resolve(section.All(), opts, p.choose)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		fmt.Fprintln(p.stdout, "no sections selected")
		return nil
	}

	env := section.Env{
		Caps:  caps,
		Opts:  opts,
		Probe: p.probe,
		Spin:  p.spin,
	}
	runner.Run(ctx, selected, env, out)
	return nil
}

func setupLogger(verbose bool) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}
	log.Logger = zerolog.New(console).With().Timestamp().Logger()
}
