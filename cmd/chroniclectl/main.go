package main

import (
	"os"

	"github.com/blockhistory/chronicle/cmd/chroniclectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
