package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"netdiag/internal/section"
	"netdiag/ui/render"

	"github.com/rs/zerolog/log"
)

// Run executes the selected sections in the order given, each under a styled
// header, and closes the report with a completion banner. Handlers absorb
// their own failures, so nothing a section does can abort the run; only a
// cancelled context cuts it short.
func Run(ctx context.Context, selected []section.Section, env section.Env, w io.Writer) {
	total := len(selected)
	for i, sec := range selected {
		if ctx.Err() != nil {
			fmt.Fprintln(w, "interrupted, skipping the remaining sections")
			log.Debug().Int("remaining", total-i).Msg("run interrupted")
			return
		}

		start := time.Now()
		fmt.Fprintln(w, render.Header(i+1, total, sec.Title))
		sec.Run(ctx, env, w)
		fmt.Fprintln(w)

		log.Debug().
			Str("section", string(sec.ID)).
			Dur("took", time.Since(start)).
			Msg("section done")
	}

	fmt.Fprintln(w, render.Banner("diagnostics complete"))
}
