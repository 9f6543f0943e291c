package main

import (
	"os"

	"github.com/BuzzLyutic/taskpad/internal/cli"
	"github.com/BuzzLyutic/taskpad/internal/config"
)

func main() {
	if err := cli.NewRootCommand(config.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}
