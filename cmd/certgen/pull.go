package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rafael/certificate-automator/internal/ingestion"
	"github.com/rafael/certificate-automator/internal/types"
	"github.com/rafael/certificate-automator/internal/workspace"
)

var pullSince time.Duration

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull form responses and process each",
	Long:  "Poll the Forms API for responses submitted within the lookback window and run each through the certificate pipeline.",
	RunE:  runPull,
}

func init() {
	pullCmd.Flags().DurationVar(&pullSince, "since", 24*time.Hour, "Lookback window for responses (0 fetches everything)")
	rootCmd.AddCommand(pullCmd)
}

func runPull(cmd *cobra.Command, _ []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	settings := store.Snapshot()

	formID, err := workspace.ExtractResourceID(settings.FormURL, "form")
	if err != nil {
		return fmt.Errorf("form url in configuration: %w", err)
	}

	clients, err := buildClients(cmd.Context())
	if err != nil {
		return fmt.Errorf("building workspace clients: %w", err)
	}
	p, err := buildPipeline(cmd.Context(), clients, settings)
	if err != nil {
		return err
	}

	var since time.Time
	if pullSince > 0 {
		since = time.Now().Add(-pullSince)
	}

	events, err := ingestion.NewPuller(clients.Forms, formID).Pull(cmd.Context(), since)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No new responses.")
		return nil
	}

	generated, failed := 0, 0
	for _, event := range events {
		sub := ingestion.Normalize(event, time.Now())
		outcome := p.ProcessSubmission(cmd.Context(), sub)
		if outcome.Status == types.StatusGenerated {
			generated++
		} else {
			failed++
		}
		fmt.Printf("%s: %s\n", sub.Email, outcome.Status)
	}

	fmt.Printf("Processed %d responses: %d generated, %d failed\n", len(events), generated, failed)
	if failed > 0 {
		return fmt.Errorf("%d responses failed", failed)
	}
	return nil
}
