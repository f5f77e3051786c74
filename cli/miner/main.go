package main

import (
	"os"

	"github.com/joho/godotenv"

	minercmder "github.com/contractminer/contractminer/cmd/miner"
)

func main() {
	// Provider API keys may live in a local .env during development.
	_ = godotenv.Load()

	cmd := minercmder.NewMinerCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
