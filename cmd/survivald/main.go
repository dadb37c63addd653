package main

import (
	"os"

	"survivald/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
