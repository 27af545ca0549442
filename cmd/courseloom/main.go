// cmd/courseloom/main.go
package main

import (
	"os"

	"github.com/courseloom/courseloom/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
