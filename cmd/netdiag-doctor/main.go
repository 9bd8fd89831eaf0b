// netdiag-doctor prints what netdiag would find on this machine: which tools
// are on PATH and which report sections that leaves available, degraded or
// unavailable. Handy when a section keeps coming up empty and you want to
// know which package to install.
package main

import (
	"fmt"
	"os"

	"netdiag/internal/capability"
	"netdiag/internal/section"
)

func main() {
	caps := capability.Detect()

	fmt.Println("Tool availability")
	fmt.Println("-----------------")
	for _, tool := range capability.Known() {
		mark := "✗"
		if caps.Has(tool) {
			mark = "✓"
		}
		fmt.Printf("  %s %s\n", mark, tool)
	}

	fmt.Println()
	fmt.Println("Section readiness")
	fmt.Println("-----------------")
	degraded, unavailable := 0, 0
	for _, sec := range section.All() {
		tool, ok := sec.ToolFor(caps)
		switch {
		case !ok:
			unavailable++
			fmt.Printf("  ✗ %-18s nothing installed, want %s\n", sec.Title, sec.Needs[0])
		case tool == "":
			fmt.Printf("  ✓ %-18s built in\n", sec.Title)
		case tool != sec.Needs[0]:
			degraded++
			fmt.Printf("  ! %-18s degraded to %s, %s missing\n", sec.Title, tool, sec.Needs[0])
		default:
			fmt.Printf("  ✓ %-18s via %s\n", sec.Title, tool)
		}
	}

	fmt.Println()
	switch {
	case unavailable > 0:
		fmt.Printf("%d section(s) unavailable, %d degraded\n", unavailable, degraded)
		os.Exit(1)
	case degraded > 0:
		fmt.Printf("all sections available, %d degraded\n", degraded)
	default:
		fmt.Println("all sections fully available")
	}
}
