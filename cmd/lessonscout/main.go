// Command lessonscout searches educational sources for lesson material.
package main

import (
	"os"

	"github.com/custodia-labs/lessonscout/internal/adapters/driving/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
