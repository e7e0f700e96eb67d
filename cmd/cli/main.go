package main

import (
	"os"

	"github.com/bankd-dev/bankd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
