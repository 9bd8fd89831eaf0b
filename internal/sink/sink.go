package sink

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"netdiag/ui/render"

	"github.com/rs/zerolog/log"
)

// pagerArgs keep bat quiet about anything but the report itself.
var pagerArgs = []string{"--paging=always", "--style=plain"}

// Sink owns where report output goes for one run: straight to stdout when no
// pager exists, or into a temporary file that Close hands to the pager. The
// file never outlives the run.
type Sink struct {
	out    io.Writer
	stdout io.Writer
	stderr io.Writer
	pager  string
	file   *os.File
	wrote  int
	closed bool
}

// Open prepares the sink before any section runs. pager is the pager command
// to buffer for, or "" when none was detected; in that case output streams
// directly and a one-line advisory lands on stderr.
func Open(pager string, stdout, stderr io.Writer) *Sink {
	s := &Sink{out: stdout, stdout: stdout, stderr: stderr}
	if pager == "" {
		fmt.Fprintln(stderr, render.Advisory("bat not found, output will not be paged"))
		return s
	}

	f, err := os.CreateTemp("", "netdiag-*.txt")
	if err != nil {
		// No buffer means no paging, not no report.
		log.Warn().Err(err).Msg("could not create report buffer, streaming instead")
		fmt.Fprintln(stderr, render.Advisory("could not buffer output, paging disabled"))
		return s
	}

	log.Debug().Str("file", f.Name()).Str("pager", pager).Msg("buffering report for pager")
	s.out = f
	s.file = f
	s.pager = pager
	return s
}

// Write sends report text wherever this run's output belongs.
func (s *Sink) Write(p []byte) (int, error) {
	s.wrote += len(p)
	return s.out.Write(p)
}

// Buffered reports whether output is being held back for a pager.
func (s *Sink) Buffered() bool {
	return s.file != nil
}

// Close releases the sink. In buffered mode it shows the report through the
// pager, falling back to a plain dump when the pager refuses, and removes the
// temporary file on every path. Extra calls are no-ops.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.file == nil {
		return nil
	}

	name := s.file.Name()
	defer os.Remove(name)

	if err := s.file.Close(); err != nil {
		log.Warn().Err(err).Str("file", name).Msg("closing report buffer")
	}
	if s.wrote == 0 {
		return nil
	}

	args := append(append([]string{}, pagerArgs...), name)
	cmd := exec.Command(s.pager, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = s.stdout
	cmd.Stderr = s.stderr
	if err := cmd.Run(); err != nil {
		// The report must survive a broken pager.
		if data, readErr := os.ReadFile(name); readErr == nil {
			s.stdout.Write(data)
		}
		return fmt.Errorf("pager %s: %w", s.pager, err)
	}
	return nil
}
