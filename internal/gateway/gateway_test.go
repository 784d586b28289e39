// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/pdiddy/zld-agent/pkg/types"
)

// --- response parsing ---

func TestFindingsFromGroundedResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: "X"}}},
			GroundingMetadata: &genai.GroundingMetadata{
				GroundingChunks: []*genai.GroundingChunk{
					{Web: &genai.GroundingChunkWeb{URI: "http://a", Title: "A"}},
					{Web: &genai.GroundingChunkWeb{URI: "http://b"}},
					{},
					{Web: &genai.GroundingChunkWeb{Title: "No link"}},
				},
			},
		}},
	}

	f := findingsFrom(resp)

	assert.Equal(t, "X", f.Text)
	assert.Equal(t, []types.Source{
		{URI: "http://a", Title: "A"},
		{URI: "http://b", Title: defaultSourceTitle},
		{URI: "", Title: "No link"},
	}, f.Sources)
}

func TestFindingsFromUngroundedResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "only text"}}},
		}},
	}
	f := findingsFrom(resp)
	assert.Equal(t, "only text", f.Text)
	assert.Empty(t, f.Sources)

	assert.Empty(t, findingsFrom(&genai.GenerateContentResponse{}).Text)
}

// --- missing credentials ---

func TestMissingAPIKey(t *testing.T) {
	c, err := New(context.Background(), types.GatewayConfig{}, nil, nil)
	require.NoError(t, err)

	_, err = c.Research(context.Background())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Contains(t, err.Error(), "API Key")

	_, err = c.AnalyzeArticle(context.Background(), "text")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = c.GenerateScenarios(context.Background(), types.DefaultWaterAnalysis(), nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	assert.Equal(t, ReportFallback, c.GenerateReport(context.Background(), types.Scenario{Name: "S"}, types.DefaultWaterAnalysis()))
}

func TestGenerateScenariosRejectsInvalidAnalysis(t *testing.T) {
	c, err := New(context.Background(), types.GatewayConfig{}, nil, nil)
	require.NoError(t, err)

	bad := types.DefaultWaterAnalysis()
	bad.PH = 15
	_, err = c.GenerateScenarios(context.Background(), bad, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingAPIKey)
}

// --- end to end against a fake endpoint ---

func TestResearchAgainstFakeEndpoint(t *testing.T) {
	var gotPath, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "## یافته‌ها"}]},
				"groundingMetadata": {"groundingChunks": [{"web": {"uri": "http://a", "title": "A"}}]}
			}]
		}`)
	}))
	defer ts.Close()

	c, err := New(context.Background(), types.GatewayConfig{
		APIKey:  "test-key",
		BaseURL: ts.URL + "/",
	}, ts.Client(), nil)
	require.NoError(t, err)

	f, err := c.Research(context.Background())
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(gotPath, DefaultResearchModel+":generateContent"), "path %q", gotPath)
	assert.Contains(t, gotBody, "googleSearch")
	assert.Equal(t, "## یافته‌ها", f.Text)
	assert.Equal(t, []types.Source{{URI: "http://a", Title: "A"}}, f.Sources)
}

func TestResearchSurfacesAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error": {"code": 500, "message": "backend unavailable", "status": "INTERNAL"}}`)
	}))
	defer ts.Close()

	c, err := New(context.Background(), types.GatewayConfig{APIKey: "k", BaseURL: ts.URL + "/"}, ts.Client(), nil)
	require.NoError(t, err)

	_, err = c.Research(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingAPIKey)
}

func TestArticleAnalysisDefaults(t *testing.T) {
	art := ArticleAnalysis{}.Article("raw text")

	assert.Equal(t, untitledArticle, art.Title)
	assert.Equal(t, noSummary, art.Summary)
	assert.Equal(t, []string{}, art.KeyTechnologies)
	assert.Equal(t, "raw text", art.RawContent)

	art = ArticleAnalysis{Title: "MVR", Summary: "s", KeyTechnologies: []string{"MVR"}}.Article("")
	assert.Equal(t, "MVR", art.Title)
	assert.Equal(t, []string{"MVR"}, art.KeyTechnologies)
}
