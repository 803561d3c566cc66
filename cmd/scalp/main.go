package main

import (
	"os"

	"github.com/kcpatrick93/earning-scalp-bot/cmd/scalp/commands"
)

// main is the entry point for the scalp CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/scalp [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
