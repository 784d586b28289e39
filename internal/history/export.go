// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/zld-agent/pkg/types"
)

const rule = "--------------------------------------------------"

// FormatText renders a report in the plain-text download format.
func FormatText(r types.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "REPORT ID: %s\n", r.ID)
	fmt.Fprintf(&b, "DATE: %s\n", r.Timestamp)
	fmt.Fprintf(&b, "QUERY: %s\n", r.SearchQuery)
	b.WriteString(rule + "\n")
	b.WriteString(r.Findings + "\n")
	b.WriteString(rule + "\n")
	b.WriteString("SOURCES:\n")
	lines := make([]string, len(r.Sources))
	for i, s := range r.Sources {
		lines[i] = fmt.Sprintf("- %s: %s", s.Title, s.URI)
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
	return b.String()
}

// FileName returns the download file name for a report.
func FileName(r types.Report) string {
	return "ZLD_Report_" + r.ID + ".txt"
}

// WriteText writes r to dir/ZLD_Report_<id>.txt and returns the path.
func WriteText(dir string, r types.Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(r))
	if err := os.WriteFile(path, []byte(FormatText(r)), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// ExportYAML writes every retained report, newest first, to path.
func (h *History) ExportYAML(path string) error {
	data, err := yaml.Marshal(h.Reports())
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes every retained report, newest first, to path.
func (h *History) ExportJSON(path string) error {
	data, err := json.MarshalIndent(h.Reports(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
