package main

import (
	"os"

	"framewright/cmd/framewright/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
