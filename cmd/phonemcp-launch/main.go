package main

import (
	"os"

	"github.com/phonemcp/phonemcp/internal/launch"
)

func main() {
	os.Exit(launch.Run(os.Stdin, os.Stdout, os.Stderr))
}
