// Package main is the single-binary entrypoint for HealthQuest.
package main

import "github.com/healthquest/healthquest/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
