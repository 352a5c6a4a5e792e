package main

import (
	"os"

	"github.com/PratikChakraborty015/ai-interview-simulator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
