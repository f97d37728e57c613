package main

import (
	"github.com/joho/godotenv"

	"github.com/enn-tee/agentic-job-search/cmd/tailor/cli"
)

func main() {
	// A missing .env is fine; environment variables still apply.
	_ = godotenv.Load()
	cli.Execute()
}
