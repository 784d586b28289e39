// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/pdiddy/zld-agent/pkg/types"
)

// ReportFallback is returned in place of a report the model failed to write.
const ReportFallback = "خطا در تولید گزارش به دلیل مشکل در اتصال به هوش مصنوعی."

// emptyReport is returned when the model answered with no text.
const emptyReport = "Error generating report."

// ArticleAnalysis is the structured summary of a knowledge base article.
type ArticleAnalysis struct {
	Title           string   `json:"title"`
	Summary         string   `json:"summary"`
	KeyTechnologies []string `json:"keyTechnologies"`
}

const (
	untitledArticle = "Untitled Article"
	noSummary       = "No summary available"
)

// Article turns the analysis of raw into a knowledge base article. Fields
// the model left empty get placeholders.
func (a ArticleAnalysis) Article(raw string) types.Article {
	art := types.Article{
		Title:           a.Title,
		Summary:         a.Summary,
		KeyTechnologies: a.KeyTechnologies,
		RawContent:      raw,
	}
	if art.Title == "" {
		art.Title = untitledArticle
	}
	if art.Summary == "" {
		art.Summary = noSummary
	}
	if art.KeyTechnologies == nil {
		art.KeyTechnologies = []string{}
	}
	return art
}

var articleSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":           {Type: genai.TypeString},
		"summary":         {Type: genai.TypeString},
		"keyTechnologies": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"title", "summary", "keyTechnologies"},
}

var scenarioListSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":           {Type: genai.TypeString},
			"name":         {Type: genai.TypeString},
			"description":  {Type: genai.TypeString},
			"recoveryRate": {Type: genai.TypeNumber},
			"steps": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name": {Type: genai.TypeString},
						"type": {
							Type: genai.TypeString,
							Enum: []string{
								string(types.StepPretreatment),
								string(types.StepMembrane),
								string(types.StepThermal),
								string(types.StepSolidHandling),
							},
						},
						"description": {Type: genai.TypeString},
					},
				},
			},
			"capexEstimate":     {Type: genai.TypeString},
			"opexEstimate":      {Type: genai.TypeString},
			"energyConsumption": {Type: genai.TypeNumber},
			"risks":             {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		},
	},
}

// AnalyzeArticle summarizes an article for the knowledge base. The text is
// cut to its first 30000 characters.
func (c *Client) AnalyzeArticle(ctx context.Context, text string) (ArticleAnalysis, error) {
	prompt, err := renderAnalysisPrompt(text)
	if err != nil {
		return ArticleAnalysis{}, err
	}

	resp, err := c.generate(ctx, c.cfg.AnalysisModel, prompt, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(engineerPersona, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    articleSchema,
	})
	if err != nil {
		return ArticleAnalysis{}, err
	}

	out := resp.Text()
	if out == "" {
		return ArticleAnalysis{}, errors.New("no response from AI")
	}

	var a ArticleAnalysis
	if err := json.Unmarshal([]byte(out), &a); err != nil {
		return ArticleAnalysis{}, fmt.Errorf("parsing article analysis: %w", err)
	}
	return a, nil
}

// GenerateScenarios designs two scenarios for analysis, grounded in the
// newest knowledge base articles. The reply is checked against
// scenarioJSONSchema before decoding; scenarios without an id get one.
func (c *Client) GenerateScenarios(ctx context.Context, analysis types.WaterAnalysis, articles []types.Article) ([]types.Scenario, error) {
	if err := analysis.Validate(); err != nil {
		return nil, fmt.Errorf("invalid water analysis: %w", err)
	}

	prompt, err := renderScenarioPrompt(analysis, articles)
	if err != nil {
		return nil, err
	}

	resp, err := c.generate(ctx, c.cfg.ScenarioModel, prompt, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(engineerPersona, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    scenarioListSchema,
	})
	if err != nil {
		return nil, err
	}

	out := resp.Text()
	if out == "" {
		return nil, errors.New("failed to generate scenarios")
	}

	scenarios, err := DecodeScenarios([]byte(out))
	if err != nil {
		return nil, err
	}

	c.logger.Info("scenarios generated",
		zap.Int("count", len(scenarios)),
		zap.Int("context_articles", min(len(articles), contextArticles)))
	return scenarios, nil
}

// DecodeScenarios validates a JSON scenario list and decodes it.
func DecodeScenarios(data []byte) ([]types.Scenario, error) {
	if err := validateScenarios(data); err != nil {
		return nil, err
	}

	var scenarios []types.Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("parsing scenarios: %w", err)
	}
	for i := range scenarios {
		if scenarios[i].ID == "" {
			scenarios[i].ID = uuid.NewString()
		}
	}
	return scenarios, nil
}

// GenerateReport writes the Persian executive summary for scenario. Model
// failures are logged and answered with ReportFallback so the caller always
// has text to show.
func (c *Client) GenerateReport(ctx context.Context, scenario types.Scenario, analysis types.WaterAnalysis) string {
	prompt, err := renderReportPrompt(scenario, analysis)
	if err != nil {
		c.logger.Error("report prompt failed", zap.Error(err))
		return ReportFallback
	}

	resp, err := c.generate(ctx, c.cfg.ResearchModel, prompt, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(consultantPersona, genai.RoleUser),
	})
	if err != nil {
		c.logger.Error("report generation failed", zap.String("scenario", scenario.Name), zap.Error(err))
		return ReportFallback
	}

	if out := resp.Text(); out != "" {
		return out
	}
	return emptyReport
}
