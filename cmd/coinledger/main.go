package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
