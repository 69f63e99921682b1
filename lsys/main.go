// Package main provides the lsys command.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/hunterpope03/c-l-system-studio/lsys/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
