package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rafael/certificate-automator/internal/ingestion"
	"github.com/rafael/certificate-automator/internal/schemas"
)

var processPayloadPath string

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a single submission from a JSON payload",
	Long:  "Read a form-event payload from a JSON file, validate it, and run it through the full certificate pipeline.",
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processPayloadPath, "payload", "", "Path to the JSON payload file (required)")
	_ = processCmd.MarkFlagRequired("payload")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, _ []string) error {
	payload, err := os.ReadFile(processPayloadPath)
	if err != nil {
		return fmt.Errorf("reading payload file: %w", err)
	}

	if err := schemas.ValidateSubmission(payload); err != nil {
		return fmt.Errorf("payload rejected: %w", err)
	}

	var event ingestion.FormEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}

	store, err := loadStore()
	if err != nil {
		return err
	}
	clients, err := buildClients(cmd.Context())
	if err != nil {
		return fmt.Errorf("building workspace clients: %w", err)
	}
	p, err := buildPipeline(cmd.Context(), clients, store.Snapshot())
	if err != nil {
		return err
	}

	sub := ingestion.Normalize(event, time.Now())
	outcome := p.ProcessSubmission(cmd.Context(), sub)

	out, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
