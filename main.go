package main

import (
	"os"

	"github.com/sadopc/timeline/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
