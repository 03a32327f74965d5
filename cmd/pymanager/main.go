package main

import (
	"fmt"
	"os"

	"github.com/Coffigny94/pymanager/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pymanager: %v\n", err)
		return 1
	}
	return 0
}
