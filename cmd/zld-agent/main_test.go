// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/zld-agent/internal/engine"
	"github.com/pdiddy/zld-agent/internal/history"
	"github.com/pdiddy/zld-agent/internal/locale"
	"github.com/pdiddy/zld-agent/internal/render"
	"github.com/pdiddy/zld-agent/pkg/types"
)

func sampleReport() types.Report {
	return types.Report{
		ID:          "1700000000000",
		Timestamp:   "12:00:00",
		CreatedAt:   time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC),
		Status:      types.StatusSuccess,
		SearchQuery: "Latest ZLD Technologies & Innovations",
		Findings:    "## MVR\n\nSee [pilot](https://example.com/pilot).",
	}
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", mask(""))
	assert.Equal(t, "****", mask("abc"))
	assert.Equal(t, "****6789", mask("123456789"))
}

func TestPrintOutcome(t *testing.T) {
	hist := history.New(0)
	r := sampleReport()
	hist.Prepend(r)

	var b strings.Builder
	printOutcome(&b, hist, engine.Outcome{
		Report:      r,
		Delivery:    types.DeliveryError,
		DeliveryErr: errors.New("chat not found"),
	})
	out := b.String()

	assert.Contains(t, out, "Scan #1  [success]")
	assert.Contains(t, out, "REPORT ID: 1700000000000")
	assert.Contains(t, out, "- cited: https://example.com/pilot")
	assert.Contains(t, out, "Telegram: failed: chat not found")
}

func TestPrintOutcomeSkipsCitedLinksWithSources(t *testing.T) {
	hist := history.New(0)
	r := sampleReport()
	r.Sources = []types.Source{{URI: "http://a", Title: "A"}}
	hist.Prepend(r)

	var b strings.Builder
	printOutcome(&b, hist, engine.Outcome{Report: r, Delivery: types.DeliverySent})

	assert.Contains(t, b.String(), "- A: http://a")
	assert.NotContains(t, b.String(), "cited:")
	assert.Contains(t, b.String(), "Telegram: sent")
}

func TestExportReport(t *testing.T) {
	dir := t.TempDir()
	r := sampleReport()
	r.Sources = []types.Source{{URI: "http://a", Title: "A"}}

	require.NoError(t, exportReport(dir, r, locale.MustClock("en-US"), true))

	txt, err := os.ReadFile(filepath.Join(dir, "ZLD_Report_1700000000000.txt"))
	require.NoError(t, err)
	assert.Equal(t, history.FormatText(r), string(txt))

	page, err := os.ReadFile(filepath.Join(dir, "ZLD_Report_1700000000000.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "<h2>MVR</h2>")
	assert.Contains(t, string(page), `<a href="http://a">A</a>`)
	assert.Contains(t, string(page), "2025/01/02 12:00:00")
}

func TestSourcesMarkdownEscapesLinks(t *testing.T) {
	src := sourcesMarkdown([]types.Source{
		{URI: "https://en.wikipedia.org/wiki/Brine_(disambiguation)", Title: "Brine [2024] review"},
		{URI: "https://b.example/x", Title: "  "},
	})

	assert.Equal(t, []string{
		"https://en.wikipedia.org/wiki/Brine_(disambiguation)",
		"https://b.example/x",
	}, render.Links(src))

	html, err := render.HTML(src)
	require.NoError(t, err)
	assert.Contains(t, html, ">Brine [2024] review</a>")
	assert.Contains(t, html, ">source</a>")
	assert.Empty(t, sourcesMarkdown(nil))
}

func TestWriteHistory(t *testing.T) {
	hist := history.New(0)
	hist.Prepend(sampleReport())
	dir := t.TempDir()

	require.NoError(t, writeHistory(hist, ""))
	require.NoError(t, writeHistory(hist, filepath.Join(dir, "h.json")))
	require.NoError(t, writeHistory(hist, filepath.Join(dir, "h.yaml")))
	assert.Error(t, writeHistory(hist, filepath.Join(dir, "h.txt")))

	data, err := os.ReadFile(filepath.Join(dir, "h.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "1700000000000")
}

func TestScenarioSetRoundTrip(t *testing.T) {
	set := types.ScenarioSet{
		Analysis: types.DefaultWaterAnalysis(),
		Scenarios: []types.Scenario{{
			ID:           "s1",
			Name:         "RO + MVR + Crystallizer",
			RecoveryRate: 98,
			Steps:        []types.ProcessStep{{Name: "UF", Type: types.StepPretreatment}},
			Risks:        []string{"fouling"},
		}},
	}

	for _, ext := range []string{".yaml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "set"+ext)
			require.NoError(t, saveScenarioSet(path, set))

			var got types.ScenarioSet
			require.NoError(t, readStructured(path, &got))
			assert.Equal(t, set, got)
		})
	}

	assert.Error(t, saveScenarioSet(filepath.Join(t.TempDir(), "set.csv"), set))
}

func TestPrintScenarios(t *testing.T) {
	var b strings.Builder
	printScenarios(&b, []types.Scenario{{
		Name:         "Thermal ZLD",
		RecoveryRate: 97.5,
		Steps: []types.ProcessStep{
			{Name: "Softening", Type: types.StepPretreatment},
			{Name: "MVR", Type: types.StepThermal},
		},
		Risks: []string{"scaling"},
	}})

	assert.Contains(t, b.String(), "[1] Thermal ZLD")
	assert.Contains(t, b.String(), "recovery: 97.5%")
	assert.Contains(t, b.String(), "train: Softening (Pretreatment) -> MVR (Thermal)")
	assert.Contains(t, b.String(), "risk: scaling")
}

func TestFormatArticles(t *testing.T) {
	var b strings.Builder
	require.NoError(t, formatArticles(&b, nil, false))
	assert.Equal(t, "No articles found.\n", b.String())

	b.Reset()
	arts := []types.Article{{
		Title:           strings.Repeat("تصفیه پساب ", 10),
		KeyTechnologies: []string{"RO", "MVR"},
		DateAdded:       time.Date(2025, 1, 2, 12, 0, 0, 0, time.Local),
	}}
	require.NoError(t, formatArticles(&b, arts, false))
	out := b.String()
	assert.Contains(t, out, "2025-01-02 12:00")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "RO, MVR")
	assert.Contains(t, out, "1 articles")

	b.Reset()
	require.NoError(t, formatArticles(&b, arts, true))
	assert.Contains(t, b.String(), `"keyTechnologies"`)
}
