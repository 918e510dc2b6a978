package main

import (
	"os"

	"github.com/skrblv/bilimGO/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
