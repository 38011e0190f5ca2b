// Package main provides the entry point for the certificate automation CLI
// and HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "certgen",
	Short: "Certificate issuance automation",
	Long:  "certgen generates personalized PDF certificates from a Google Slides template, tracks every submission in a control spreadsheet, and emails recipients a download and LinkedIn credential link.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
