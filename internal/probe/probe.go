package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single external command so one stuck tool cannot
// stall the whole run.
const DefaultTimeout = 5 * time.Second

// Func is the call shape handlers use to shell out. It is a field on the
// handler environment so tests can substitute a recorder.
type Func func(ctx context.Context, timeout time.Duration, tool string, args ...string) Result

// Result is the outcome of one external command: either text to pass through
// verbatim, or a reason the command produced none. Output is never parsed.
type Result struct {
	Tool   string
	Args   []string
	Output string
	Err    error
}

// OK reports whether the command ran to completion with exit status zero.
func (r Result) OK() bool {
	return r.Err == nil
}

// CommandLine renders "tool arg arg" for logs and messages.
func (r Result) CommandLine() string {
	if len(r.Args) == 0 {
		return r.Tool
	}
	return r.Tool + " " + strings.Join(r.Args, " ")
}

// Reason describes the failure in one line, suitable for inline display
// inside a section. Empty when the command succeeded.
func (r Result) Reason() string {
	var exitErr *exec.ExitError
	switch {
	case r.Err == nil:
		return ""
	case errors.Is(r.Err, exec.ErrNotFound):
		return r.Tool + " not found"
	case errors.Is(r.Err, context.DeadlineExceeded):
		return fmt.Sprintf("%s timed out", r.CommandLine())
	case errors.Is(r.Err, context.Canceled):
		return fmt.Sprintf("%s interrupted", r.CommandLine())
	case errors.As(r.Err, &exitErr):
		return fmt.Sprintf("%s exited with status %d", r.Tool, exitErr.ExitCode())
	}
	return fmt.Sprintf("%s failed: %v", r.Tool, r.Err)
}

// Run executes one external tool with a bounded timeout and captures its
// combined stdout and stderr. A timeout or a cancelled parent context wins
// over the kill-induced exit error so the reason stays accurate.
func Run(ctx context.Context, timeout time.Duration, tool string, args ...string) Result {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(runCtx, tool, args...)
	out, err := cmd.CombinedOutput()

	res := Result{
		Tool:   tool,
		Args:   args,
		Output: strings.TrimRight(string(out), "\n"),
	}
	if err != nil {
		if ctxErr := runCtx.Err(); ctxErr != nil {
			res.Err = ctxErr
		} else {
			res.Err = err
		}
	}

	log.Debug().
		Str("cmd", res.CommandLine()).
		Bool("ok", res.OK()).
		Dur("took", time.Since(start)).
		Msg("probe finished")

	return res
}
