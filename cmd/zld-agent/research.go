// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/zld-agent/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Run one research cycle and print the report",
	Long: `Research runs a single cycle: it asks Gemini for the latest ZLD
developments, prints the report and relays it to the configured Telegram
chat. It is equivalent to "monitor --once". The command fails when the
cycle produced a failed report, so scripts can check the exit status.`,
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().String("export-dir", "", "write the report to this directory")
	researchCmd.Flags().Bool("html", false, "also export the report as HTML")

	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	exportDir, _ := cmd.Flags().GetString("export-dir")
	html, _ := cmd.Flags().GetBool("html")

	cfg := loadConfig()
	if exportDir == "" {
		exportDir = cfg.Engine.ExportDir
	}

	ctx := context.Background()
	eng, cleanup, err := buildEngine(ctx, cfg, monitorOptions{exportDir: exportDir, html: html}, os.Stdout)
	if err != nil {
		return err
	}
	defer cleanup()

	out, _ := eng.Trigger(ctx)
	if out.Report.Status == types.StatusFailed {
		return fmt.Errorf("research cycle failed: %w", out.Err)
	}
	return nil
}
