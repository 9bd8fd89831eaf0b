package main

import (
	"os"

	"netdiag/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
