package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rafael/certificate-automator/internal/pipeline"
)

var (
	batchRowSpec    string
	batchSendEmails bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Re-generate certificates for tracked rows",
	Long:  "Re-generate certificates for already-logged tracking rows. Rows are selected by 1-based sheet index, e.g. --rows 2-5,8.",
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchRowSpec, "rows", "", "Row selection, e.g. 2-5,8 (required)")
	batchCmd.Flags().BoolVar(&batchSendEmails, "send-emails", false, "Email recipients their re-generated certificates")
	_ = batchCmd.MarkFlagRequired("rows")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	rows, err := parseRowSpec(batchRowSpec)
	if err != nil {
		return err
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

	result := p.RunBatch(cmd.Context(), pipeline.BatchOptions{
		Rows:       rows,
		SendEmails: batchSendEmails,
	})

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d rows failed", result.Failed, result.Total)
	}
	return nil
}

// parseRowSpec expands a selection like "2-5,8" into sorted unique row
// numbers.
func parseRowSpec(spec string) ([]int64, error) {
	seen := map[int64]bool{}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.ParseInt(strings.TrimSpace(lo), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid row range %q", part)
			}
			end, err := strconv.ParseInt(strings.TrimSpace(hi), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid row range %q", part)
			}
			if start > end {
				return nil, fmt.Errorf("invalid row range %q: start exceeds end", part)
			}
			for row := start; row <= end; row++ {
				seen[row] = true
			}
		} else {
			row, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid row %q", part)
			}
			seen[row] = true
		}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("no rows selected in %q", spec)
	}

	rows := make([]int64, 0, len(seen))
	for row := range seen {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i] < rows[j] })
	return rows, nil
}
