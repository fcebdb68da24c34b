package main

import (
	"fmt"
	"os"

	"github.com/gilby125/airport-network/config"
	"github.com/gilby125/airport-network/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}
	logger.Init(logger.Config{Level: "warn", Format: "text", Output: os.Stderr})

	if err := newRootCmd(cfg.DatasetConfig).Execute(); err != nil {
		os.Exit(1)
	}
}
