// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is an article as written to export files. Raw content is
// left out to keep exports readable.
type ExportEntry struct {
	ID              string   `json:"id" yaml:"id"`
	Title           string   `json:"title" yaml:"title"`
	Summary         string   `json:"summary" yaml:"summary"`
	KeyTechnologies []string `json:"key_technologies" yaml:"key_technologies"`
	DateAdded       string   `json:"date_added" yaml:"date_added"`
}

const exportLimit = 100000

// ExportYAML writes the knowledge base to dataDir/knowledge-export.yaml
// and returns the path. It supports the same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) (string, error) {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dataDir, "knowledge-export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the knowledge base to dataDir/knowledge-export.json
// and returns the path.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) (string, error) {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dataDir, "knowledge-export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	opts.MaxResults = exportLimit
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, a := range results {
		entries[i] = ExportEntry{
			ID:              a.ID,
			Title:           a.Title,
			Summary:         a.Summary,
			KeyTechnologies: a.KeyTechnologies,
			DateAdded:       a.DateAdded.Format("2006-01-02 15:04"),
		}
	}
	return entries, nil
}
