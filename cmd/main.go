// Main entry point for the go-swapi service
package main

import (
	"context"
	"fmt"
	"os"

	"go-swapi/internal/cli"
)

var version = "dev"

func main() {
	root := cli.NewRootCmd(version)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
