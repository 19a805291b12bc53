package main

import (
	"os"

	"github.com/conneroisu/unidom/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
