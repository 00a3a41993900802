package main

import (
	"os"

	"github.com/zhmesh/zhmesh/cmd"
)

func main() {
	if err := cmd.CmdZhmesh.Execute(); err != nil {
		os.Exit(1)
	}
}
