package main

import (
	"os"

	"github.com/dalemusser/stratawell/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
