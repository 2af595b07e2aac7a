// Package main is the entry point for the lmstray tray monitor.
package main

import (
	"fmt"
	"os"

	"github.com/lmstudio-tray/lmstray/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
