package main

import (
	"os"

	"github.com/zjrosen/flowdraft/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
