// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no client-side timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// GatewayConfig holds settings for the generative AI gateway.
type GatewayConfig struct {
	// APIKey is the Gemini API key. An empty key fails every call with
	// a configuration error before any request is made.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// ResearchModel answers the periodic research prompt and writes reports.
	ResearchModel string `json:"research_model" yaml:"research_model"`

	// ScenarioModel designs process scenarios.
	ScenarioModel string `json:"scenario_model" yaml:"scenario_model"`

	// AnalysisModel summarizes knowledge base articles.
	AnalysisModel string `json:"analysis_model" yaml:"analysis_model"`

	// BaseURL overrides the Gemini endpoint (tests, proxies).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// RelayConfig holds settings for the Telegram messaging relay.
type RelayConfig struct {
	HTTPConfig `yaml:",inline"`

	// BotToken authenticates against the Telegram Bot API.
	BotToken string `json:"bot_token,omitempty" yaml:"bot_token,omitempty"`

	// APIBase is the Bot API root (default https://api.telegram.org).
	APIBase string `json:"api_base" yaml:"api_base"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// EngineConfig holds settings for the research cycle engine.
type EngineConfig struct {
	// Interval is the countdown period between automatic cycles (default 300s).
	Interval time.Duration `json:"interval" yaml:"interval"`

	// CycleTimeout bounds one cycle. Zero leaves the gateway call unbounded.
	CycleTimeout time.Duration `json:"cycle_timeout" yaml:"cycle_timeout"`

	// MaxReports caps the in-memory history. Zero keeps every report.
	MaxReports int `json:"max_reports" yaml:"max_reports"`

	// ExportDir, when set, receives a plain-text copy of every report.
	ExportDir string `json:"export_dir,omitempty" yaml:"export_dir,omitempty"`
}

// StoreConfig locates the SQLite database holding settings and the
// knowledge base.
type StoreConfig struct {
	// DataDir is the directory containing zld-agent.db.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default limit for knowledge base queries (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// AgentConfig groups every component configuration.
type AgentConfig struct {
	Gateway GatewayConfig `json:"gateway" yaml:"gateway"`
	Relay   RelayConfig   `json:"relay" yaml:"relay"`
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Store   StoreConfig   `json:"store" yaml:"store"`
}
