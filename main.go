package main

import (
	"os"

	"github.com/sidenote-app/sidenote/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
