package main

import (
	"os"

	"github.com/getlawrence/prdgate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
