package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rafael/certificate-automator/internal/config"
	"github.com/rafael/certificate-automator/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start an HTTP server exposing the submission webhook, batch re-generation, configuration and health endpoints.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}

	clients, err := buildClients(cmd.Context())
	if err != nil {
		return fmt.Errorf("building workspace clients: %w", err)
	}

	srv := server.New(server.Config{
		Port:  servePort,
		Store: store,
		NewRunner: func(settings config.Settings) (server.Runner, error) {
			return buildPipeline(context.Background(), clients, settings)
		},
	})

	return srv.Start()
}
