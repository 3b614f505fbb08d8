// Package main provides the entry point for the interview coach CLI and server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "interview_agent",
	Short: "AI mock-interview coach",
	Long:  "Interview Agent runs adaptive mock interviews tailored to a resume and job posting, scores the answers, and recommends what to study next.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
