package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configSetFile string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update the stored configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Validate and save a configuration from a JSON file",
	RunE:  runConfigSet,
}

func init() {
	configSetCmd.Flags().StringVar(&configSetFile, "file", "", "Path to the candidate configuration JSON (required)")
	_ = configSetCmd.MarkFlagRequired("file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(store.Snapshot().Map(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runConfigSet(_ *cobra.Command, _ []string) error {
	data, err := os.ReadFile(configSetFile)
	if err != nil {
		return fmt.Errorf("reading configuration file: %w", err)
	}

	var candidate map[string]string
	if err := json.Unmarshal(data, &candidate); err != nil {
		return fmt.Errorf("decoding configuration file: %w", err)
	}

	store, err := loadStore()
	if err != nil {
		return err
	}

	result := store.Save(candidate)
	fmt.Println(result.Message)
	if !result.Success {
		os.Exit(1)
	}
	return nil
}
