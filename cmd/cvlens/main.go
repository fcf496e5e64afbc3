// Package main provides the entry point for the cvlens CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cvlens",
	Short: "CV analysis service",
	Long:  "cvlens ingests plain-text CVs, segments them into typed sections, and surfaces ranked observations about density, recency and structure, with optional LLM-phrased feedback.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
