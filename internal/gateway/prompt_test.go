// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/zld-agent/pkg/types"
)

func TestRenderAnalysisPromptTruncates(t *testing.T) {
	long := strings.Repeat("ب", maxArticleChars+500)

	prompt, err := renderAnalysisPrompt(long)
	require.NoError(t, err)

	assert.Equal(t, maxArticleChars, strings.Count(prompt, "ب"))
	assert.Contains(t, prompt, "concise engineering summary")
}

func TestKnowledgeContextUsesNewestThree(t *testing.T) {
	var articles []types.Article
	for i := 0; i < 5; i++ {
		articles = append(articles, types.Article{
			Title:           fmt.Sprintf("Article %d", i),
			Summary:         "summary",
			KeyTechnologies: []string{"MVR", "RO"},
		})
	}

	got := knowledgeContext(articles)

	assert.Contains(t, got, "Article 0")
	assert.Contains(t, got, "Article 2")
	assert.NotContains(t, got, "Article 3")
	assert.Contains(t, got, "Key Tech: MVR, RO")
	assert.Equal(t, 2, strings.Count(got, "\n---\n"))
	assert.Empty(t, knowledgeContext(nil))
}

func TestRenderScenarioPrompt(t *testing.T) {
	prompt, err := renderScenarioPrompt(types.DefaultWaterAnalysis(), nil)
	require.NoError(t, err)

	for _, want := range []string{
		"Flow Rate: 10 m3/hr",
		"TDS: 35000 mg/L",
		"pH: 7.5",
		"Hardness: 500 mg/L",
		"OPEX optimization",
	} {
		assert.Contains(t, prompt, want)
	}
}

func TestRenderReportPrompt(t *testing.T) {
	s := types.Scenario{
		Name: "Low-energy train",
		Steps: []types.ProcessStep{
			{Name: "Softening", Type: types.StepPretreatment},
			{Name: "HERO", Type: types.StepMembrane},
			{Name: "MVR", Type: types.StepThermal},
		},
	}

	prompt, err := renderReportPrompt(s, types.DefaultWaterAnalysis())
	require.NoError(t, err)

	assert.Contains(t, prompt, "Selected Scenario: Low-energy train")
	assert.Contains(t, prompt, "Process Steps: Softening -> HERO -> MVR")
	assert.Contains(t, prompt, "Language: Persian (Farsi).")
}
