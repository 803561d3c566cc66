package config_test

import (
	"fmt"

	"github.com/kcpatrick93/earning-scalp-bot/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Server running on port: %s\n", cfg.Port)
	fmt.Printf("Scan schedule: %s (%s)\n", cfg.Scan.Schedule, cfg.Location())
	fmt.Printf("Storage enabled: %v\n", cfg.Database.Enabled())
	fmt.Printf("Telegram enabled: %v\n", cfg.Telegram.Enabled())
}
