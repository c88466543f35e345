package main

import (
	"os"

	"github.com/bnema/gmail-checker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
