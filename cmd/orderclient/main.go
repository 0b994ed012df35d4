package main

import (
	"os"

	"github.com/nikolayk812/orderpipe/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
