// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/zld-agent/internal/render"
	"github.com/pdiddy/zld-agent/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the executive report for a saved scenario",
	Long: `Report reads a scenario file written by "scenarios --save", asks
Gemini for a formal Persian executive summary of the chosen scenario and
prints it as Markdown, or writes an HTML page with --html.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("scenario", "", "scenario file written by \"scenarios --save\" (required)")
	reportCmd.Flags().Int("index", 1, "which scenario of the file to report on (1-based)")
	reportCmd.Flags().String("html", "", "write the report as an HTML page to this file")
	reportCmd.MarkFlagRequired("scenario")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("scenario")
	index, _ := cmd.Flags().GetInt("index")
	htmlOut, _ := cmd.Flags().GetString("html")

	var set types.ScenarioSet
	if err := readStructured(path, &set); err != nil {
		return err
	}
	if index < 1 || index > len(set.Scenarios) {
		return fmt.Errorf("index %d out of range: %s holds %d scenario(s)", index, path, len(set.Scenarios))
	}
	scenario := set.Scenarios[index-1]

	cfg := loadConfig()
	ctx := context.Background()
	gw, err := newGateway(ctx, cfg.Gateway)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Writing report for %q...\n", scenario.Name)
	markdown := gw.GenerateReport(ctx, scenario, set.Analysis)

	if htmlOut == "" {
		fmt.Fprintln(os.Stdout, markdown)
		return nil
	}

	page, err := render.Page(scenario.Name, "", markdown)
	if err != nil {
		return err
	}
	if err := os.WriteFile(htmlOut, []byte(page), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", htmlOut, err)
	}
	fmt.Fprintf(os.Stdout, "Report written to %s\n", htmlOut)
	return nil
}
