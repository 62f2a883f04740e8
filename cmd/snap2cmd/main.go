package main

import (
	"os"

	"snap2cmd/internal/cli"
)

func main() {
	code := cli.Execute(os.Args[1:])
	os.Exit(code)
}
