package main

import (
	"os"

	"crateview/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
