package main

import (
	"fmt"
	"os"

	"github.com/ft-tools/forest-atlas/pkg/models/domain"
	"github.com/ft-tools/forest-atlas/pkg/runtime/terminal"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Equation: domain.DefaultVolumeEquation(),
		Output:   os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
