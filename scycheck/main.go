package main

import (
	"os"

	"github.com/WJQSERVER/scy/scycheck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
