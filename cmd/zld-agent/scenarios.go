// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/zld-agent/pkg/types"
)

// scenarioContextArticles is how many of the newest knowledge base
// articles ground scenario design.
const scenarioContextArticles = 3

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Design ZLD process scenarios for a feed water analysis",
	Long: `Scenarios sends the water analysis given by the flags, together with
the three newest knowledge base articles, to Gemini and prints the two
process trains it proposes. Save them with --save to write an executive
report later with "zld-agent report".`,
	RunE: runScenarios,
}

func init() {
	d := types.DefaultWaterAnalysis()
	f := scenariosCmd.Flags()
	f.Float64("flow-rate", d.FlowRate, "feed flow rate (m3/hr)")
	f.Float64("tds", d.TDS, "total dissolved solids (mg/L)")
	f.Float64("ph", d.PH, "pH")
	f.Float64("cod", d.COD, "chemical oxygen demand (mg/L)")
	f.Float64("chlorides", d.Chlorides, "chlorides (mg/L)")
	f.Float64("sulfates", d.Sulfates, "sulfates (mg/L)")
	f.Float64("hardness", d.Hardness, "total hardness (mg/L as CaCO3)")
	f.Float64("temp", d.Temp, "temperature (C)")
	f.String("analysis", "", "read the water analysis from a YAML or JSON file instead")
	f.Bool("json", false, "output scenarios as JSON")
	f.String("save", "", "write analysis and scenarios to this .yaml or .json file")

	rootCmd.AddCommand(scenariosCmd)
}

func runScenarios(cmd *cobra.Command, args []string) error {
	analysis, err := analysisFromFlags(cmd)
	if err != nil {
		return err
	}
	if err := analysis.Validate(); err != nil {
		return err
	}

	cfg := loadConfig()
	ctx := context.Background()

	store, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	articles, err := store.Recent(ctx, scenarioContextArticles)
	if err != nil {
		return err
	}

	gw, err := newGateway(ctx, cfg.Gateway)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Designing scenarios with %d knowledge base article(s)...\n", len(articles))
	scenarios, err := gw.GenerateScenarios(ctx, analysis, articles)
	if err != nil {
		return fmt.Errorf("generating scenarios: %w", err)
	}

	set := types.ScenarioSet{Analysis: analysis, Scenarios: scenarios}

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := saveScenarioSet(path, set); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved to %s\n", path)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(set)
	}
	printScenarios(os.Stdout, scenarios)
	return nil
}

func analysisFromFlags(cmd *cobra.Command) (types.WaterAnalysis, error) {
	if path, _ := cmd.Flags().GetString("analysis"); path != "" {
		var a types.WaterAnalysis
		if err := readStructured(path, &a); err != nil {
			return types.WaterAnalysis{}, err
		}
		return a, nil
	}

	get := func(name string) float64 {
		v, _ := cmd.Flags().GetFloat64(name)
		return v
	}
	return types.WaterAnalysis{
		FlowRate:  get("flow-rate"),
		TDS:       get("tds"),
		PH:        get("ph"),
		COD:       get("cod"),
		Chlorides: get("chlorides"),
		Sulfates:  get("sulfates"),
		Hardness:  get("hardness"),
		Temp:      get("temp"),
	}, nil
}

func printScenarios(w io.Writer, scenarios []types.Scenario) {
	for i, s := range scenarios {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "[%d] %s\n", i+1, s.Name)
		fmt.Fprintf(w, "    %s\n", s.Description)
		fmt.Fprintf(w, "    recovery: %.1f%%  energy: %.1f kWh/m3\n", s.RecoveryRate, s.EnergyConsumption)
		fmt.Fprintf(w, "    capex: %s  opex: %s\n", s.CapexEstimate, s.OpexEstimate)

		names := make([]string, len(s.Steps))
		for j, st := range s.Steps {
			names[j] = fmt.Sprintf("%s (%s)", st.Name, st.Type)
		}
		fmt.Fprintf(w, "    train: %s\n", strings.Join(names, " -> "))
		for _, r := range s.Risks {
			fmt.Fprintf(w, "    risk: %s\n", r)
		}
	}
}

func saveScenarioSet(path string, set types.ScenarioSet) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(set, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(set)
	default:
		return fmt.Errorf("unsupported format %q: use .yaml or .json", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("marshaling scenarios: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// readStructured decodes a YAML or JSON file into v by extension.
func readStructured(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, v)
	default:
		err = yaml.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
