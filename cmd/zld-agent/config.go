// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/zld-agent/internal/engine"
	"github.com/pdiddy/zld-agent/internal/gateway"
	"github.com/pdiddy/zld-agent/internal/knowledge"
	"github.com/pdiddy/zld-agent/internal/locale"
	"github.com/pdiddy/zld-agent/internal/relay"
	"github.com/pdiddy/zld-agent/internal/secrets"
	"github.com/pdiddy/zld-agent/pkg/types"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultUserAgent  = "zld-agent/0.1"
	defaultMaxRetries = 5
)

func setDefaults() {
	viper.SetDefault("gateway.research_model", gateway.DefaultResearchModel)
	viper.SetDefault("gateway.scenario_model", gateway.DefaultScenarioModel)
	viper.SetDefault("gateway.analysis_model", gateway.DefaultAnalysisModel)
	viper.SetDefault("relay.api_base", relay.DefaultAPIBase)
	viper.SetDefault("relay.timeout", defaultTimeout)
	viper.SetDefault("relay.max_retries", defaultMaxRetries)
	viper.SetDefault("engine.interval", engine.DefaultInterval)
	viper.SetDefault("store.max_results", 20)
}

// loadConfig assembles the effective configuration. Explicit values from
// flags, environment or the config file win over .secrets/ files.
func loadConfig() types.AgentConfig {
	return types.AgentConfig{
		Gateway: types.GatewayConfig{
			APIKey:        loadedSecrets.Or(secrets.GeminiAPIKey, viper.GetString("gateway.api_key")),
			ResearchModel: viper.GetString("gateway.research_model"),
			ScenarioModel: viper.GetString("gateway.scenario_model"),
			AnalysisModel: viper.GetString("gateway.analysis_model"),
			BaseURL:       viper.GetString("gateway.base_url"),
		},
		Relay: types.RelayConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("relay.timeout"),
				UserAgent: defaultUserAgent,
			},
			BotToken:   loadedSecrets.Or(secrets.TelegramBotToken, viper.GetString("relay.bot_token")),
			APIBase:    viper.GetString("relay.api_base"),
			MaxRetries: viper.GetInt("relay.max_retries"),
		},
		Engine: types.EngineConfig{
			Interval:     viper.GetDuration("engine.interval"),
			CycleTimeout: viper.GetDuration("engine.cycle_timeout"),
			MaxReports:   viper.GetInt("engine.max_reports"),
			ExportDir:    viper.GetString("engine.export_dir"),
		},
		Store: types.StoreConfig{
			DataDir:    viper.GetString("store.data_dir"),
			MaxResults: viper.GetInt("store.max_results"),
		},
	}
}

func newClock() (*locale.Clock, error) {
	return locale.NewClock(viper.GetString("locale"))
}

func openStore(cfg types.StoreConfig) (*knowledge.Store, error) {
	return knowledge.NewStore(cfg)
}

func newGateway(ctx context.Context, cfg types.GatewayConfig) (*gateway.Client, error) {
	return gateway.New(ctx, cfg, nil, logger)
}

// mask hides all but the last four characters of a credential.
func mask(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) <= 4 {
		return "****"
	}
	return "****" + string(r[len(r)-4:])
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config prints the configuration assembled from flags, ZLD_AGENT_*
environment variables, zld-agent.yaml and .secrets/. Credentials are
masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		cfg.Gateway.APIKey = mask(cfg.Gateway.APIKey)
		cfg.Relay.BotToken = mask(cfg.Relay.BotToken)

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
