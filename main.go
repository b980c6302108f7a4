package main

import (
	"os"

	"github.com/rkal/geostreak/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
