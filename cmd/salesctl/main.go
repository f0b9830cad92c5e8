package main

import (
	"os"

	"github.com/aibeh/order-management/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
