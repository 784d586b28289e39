// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gateway wraps the Gemini generative AI API. It runs the periodic
// web-grounded research prompt, summarizes knowledge base articles, designs
// ZLD process scenarios and writes engineering reports.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/pdiddy/zld-agent/pkg/types"
)

// Default model identifiers.
const (
	DefaultResearchModel = "gemini-3-pro-preview"
	DefaultScenarioModel = "gemini-3-pro-preview"
	DefaultAnalysisModel = "gemini-3-flash-preview"
)

// defaultSourceTitle labels a grounding chunk that came without a title.
const defaultSourceTitle = "Web Source"

// ErrMissingAPIKey is returned by every call when no API key is configured.
// Its text contains "API Key" so callers matching on the message see it too.
var ErrMissingAPIKey = errors.New("API Key configuration missing")

// Findings is the reply to the research prompt.
type Findings struct {
	Text    string
	Sources []types.Source
}

// Client talks to Gemini. The zero value is not usable; call New.
type Client struct {
	cfg    types.GatewayConfig
	genai  *genai.Client
	logger *zap.Logger
}

// New builds a Client. A missing API key is not an error here: the client
// is still returned and each call fails with ErrMissingAPIKey, so a
// misconfigured monitor keeps running and reports the problem per cycle.
func New(ctx context.Context, cfg types.GatewayConfig, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResearchModel == "" {
		cfg.ResearchModel = DefaultResearchModel
	}
	if cfg.ScenarioModel == "" {
		cfg.ScenarioModel = DefaultScenarioModel
	}
	if cfg.AnalysisModel == "" {
		cfg.AnalysisModel = DefaultAnalysisModel
	}

	c := &Client{cfg: cfg, logger: logger}
	if cfg.APIKey == "" {
		logger.Warn("gemini API key is missing; set it in .secrets/gemini-api-key or ZLD_AGENT_GATEWAY_API_KEY")
		return c, nil
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	c.genai = gc
	return c, nil
}

// generate runs one GenerateContent call.
func (c *Client) generate(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if c.genai == nil {
		return nil, ErrMissingAPIKey
	}
	resp, err := c.genai.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("calling Gemini %s: %w", model, err)
	}
	return resp, nil
}

// Research asks the research model, with Google Search grounding, for a
// Markdown digest of recent ZLD developments. Empty text is returned as is.
func (c *Client) Research(ctx context.Context) (Findings, error) {
	resp, err := c.generate(ctx, c.cfg.ResearchModel, researchPrompt, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(engineerPersona, genai.RoleUser),
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		c.logger.Error("research call failed", zap.Error(err))
		return Findings{}, err
	}

	f := findingsFrom(resp)
	c.logger.Debug("research call completed",
		zap.Int("text_len", len(f.Text)),
		zap.Int("sources", len(f.Sources)))
	return f, nil
}

// findingsFrom extracts the text and the web grounding chunks of the first
// candidate, keeping the order the API returned them in.
func findingsFrom(resp *genai.GenerateContentResponse) Findings {
	f := Findings{Text: resp.Text()}
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return f
	}
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = defaultSourceTitle
		}
		f.Sources = append(f.Sources, types.Source{URI: chunk.Web.URI, Title: title})
	}
	return f
}
