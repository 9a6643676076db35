package main

import (
	"os"

	"github.com/montra-dev/montra/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
