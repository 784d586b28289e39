// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/zld-agent/pkg/types"
)

func report(id string) types.Report {
	return types.Report{ID: id, Status: types.StatusSuccess, Findings: "findings " + id}
}

func TestPrependNewestFirst(t *testing.T) {
	h := New(0)
	for i := 1; i <= 3; i++ {
		h.Prepend(report(fmt.Sprint(i)))
	}

	require.Equal(t, 3, h.Len())
	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, "3", latest.ID)

	ids := []string{}
	for _, r := range h.Reports() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"3", "2", "1"}, ids)
}

func TestScanNumbers(t *testing.T) {
	h := New(0)
	for i := 1; i <= 4; i++ {
		h.Prepend(report(fmt.Sprint(i)))
	}
	assert.Equal(t, 4, h.ScanNumber(0))
	assert.Equal(t, 1, h.ScanNumber(3))
}

func TestCapEvictsOldestAndKeepsScanNumbers(t *testing.T) {
	h := New(2)
	for i := 1; i <= 5; i++ {
		h.Prepend(report(fmt.Sprint(i)))
	}

	require.Equal(t, 2, h.Len())
	r, _ := h.At(1)
	assert.Equal(t, "4", r.ID)
	assert.Equal(t, 5, h.ScanNumber(0))
	assert.Equal(t, 4, h.ScanNumber(1))
	_, ok := h.At(2)
	assert.False(t, ok)
}

func TestSelectionFollowsNewest(t *testing.T) {
	h := New(0)
	_, ok := h.Selected()
	assert.False(t, ok)

	h.Prepend(report("1"))
	h.Prepend(report("2"))
	sel, _ := h.Selected()
	assert.Equal(t, "2", sel.ID)
}

func TestPinnedSelectionSurvivesNewReports(t *testing.T) {
	h := New(0)
	h.Prepend(report("1"))
	h.Prepend(report("2"))

	require.True(t, h.Select("1"))
	h.Prepend(report("3"))

	sel, _ := h.Selected()
	assert.Equal(t, "1", sel.ID)

	h.Unpin()
	sel, _ = h.Selected()
	assert.Equal(t, "3", sel.ID)

	assert.False(t, h.Select("missing"))
}

func TestSelectingNewestUnpins(t *testing.T) {
	h := New(0)
	h.Prepend(report("1"))
	require.True(t, h.Select("1"))
	h.Prepend(report("2"))

	sel, _ := h.Selected()
	assert.Equal(t, "2", sel.ID)
}

func TestEvictedSelectionFallsBackToNewest(t *testing.T) {
	h := New(2)
	h.Prepend(report("1"))
	h.Prepend(report("2"))
	require.True(t, h.Select("1"))
	h.Prepend(report("3"))

	sel, _ := h.Selected()
	assert.Equal(t, "3", sel.ID)
}

func TestReportsReturnsCopy(t *testing.T) {
	h := New(0)
	h.Prepend(report("1"))
	got := h.Reports()
	got[0].Findings = "mutated"

	r, _ := h.Latest()
	assert.Equal(t, "findings 1", r.Findings)
}

func TestConcurrentPrepend(t *testing.T) {
	h := New(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Prepend(report(fmt.Sprint(i)))
			_ = h.Len()
			_, _ = h.Selected()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, h.Len())
}

// --- export ---

func TestFormatText(t *testing.T) {
	r := types.Report{
		ID:          "1700000000000",
		Timestamp:   "12:00:00",
		SearchQuery: "Latest ZLD Technologies & Innovations",
		Findings:    "## Findings",
		Sources: []types.Source{
			{URI: "http://a", Title: "A"},
			{URI: "http://b", Title: "B"},
		},
	}

	want := "REPORT ID: 1700000000000\n" +
		"DATE: 12:00:00\n" +
		"QUERY: Latest ZLD Technologies & Innovations\n" +
		rule + "\n" +
		"## Findings\n" +
		rule + "\n" +
		"SOURCES:\n" +
		"- A: http://a\n" +
		"- B: http://b\n"
	assert.Equal(t, want, FormatText(r))
}

func TestWriteText(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	path, err := WriteText(dir, report("42"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "ZLD_Report_42.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "REPORT ID: 42")
}

func TestExportYAMLAndJSON(t *testing.T) {
	h := New(0)
	h.Prepend(report("1"))
	h.Prepend(report("2"))
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "history.yaml")
	require.NoError(t, h.ExportYAML(yamlPath))
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML []types.Report
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML, 2)
	assert.Equal(t, "2", fromYAML[0].ID)

	jsonPath := filepath.Join(dir, "history.json")
	require.NoError(t, h.ExportJSON(jsonPath))
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON []types.Report
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, "1", fromJSON[1].ID)
}
