package main

import (
	"context"
	"fmt"
	"os"

	"fintrack/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.LoadEnvFile()

	if err := cli.Run(context.Background(), os.Args[1:], cli.WithVersion(version)); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
