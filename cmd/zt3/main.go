package main

import (
	"os"

	"github.com/JittoJoseph/ZT3-Stock-Screener/cmd/zt3/commands"
)

// main is the entry point for the ZT-3 CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
