// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/pdiddy/zld-agent/internal/knowledge"
	"github.com/pdiddy/zld-agent/pkg/types"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the knowledge base (add, list, search, export)",
	Long: `Knowledge manages the local SQLite knowledge base of analyzed ZLD
articles. Scenario design grounds itself in the newest articles.`,
}

// --- add subcommand ---

var knowledgeAddCmd = &cobra.Command{
	Use:   "add <file|->",
	Short: "Analyze an article with Gemini and add it to the knowledge base",
	Long: `Add reads a technical text from a file (or stdin with "-"), asks Gemini
for its title, summary and key technologies, and stores the result
together with the raw text.`,
	Args: cobra.ExactArgs(1),
	RunE: runKnowledgeAdd,
}

func runKnowledgeAdd(cmd *cobra.Command, args []string) error {
	raw, err := readInput(args[0])
	if err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("article text is empty")
	}

	cfg := loadConfig()
	ctx := context.Background()

	gw, err := newGateway(ctx, cfg.Gateway)
	if err != nil {
		return err
	}
	analysis, err := gw.AnalyzeArticle(ctx, raw)
	if err != nil {
		return fmt.Errorf("analyzing article: %w", err)
	}

	store, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	art, err := store.Add(ctx, analysis.Article(raw))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "added %s\n", art.ID)
	fmt.Fprintf(os.Stdout, "  title:        %s\n", art.Title)
	fmt.Fprintf(os.Stdout, "  technologies: %s\n", strings.Join(art.KeyTechnologies, ", "))
	fmt.Fprintf(os.Stdout, "  summary:      %s\n", art.Summary)
	return nil
}

func readInput(name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return string(data), nil
}

// --- list and search subcommands ---

var knowledgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge base articles, newest first",
	RunE:  runKnowledgeRetrieve,
}

var knowledgeSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search the knowledge base",
	Long: `Search matches titles, summaries, key technologies and raw text with
SQLite FTS5. Results are ranked by relevance.`,
	RunE: runKnowledgeRetrieve,
}

func runKnowledgeRetrieve(cmd *cobra.Command, args []string) error {
	opts := queryOptsFromFlags(cmd, args)
	if cmd.Name() == "search" && opts.Query == "" {
		return fmt.Errorf("search query required")
	}

	store, err := openStore(loadConfig().Store)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatArticles(os.Stdout, results, jsonOutput)
}

const titleWidth = 45

func formatArticles(w io.Writer, results []types.Article, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No articles found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-16s  %s  %s\n", "#", "Added", runewidth.FillRight("Title", titleWidth), "Technologies")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, a := range results {
		// Pad by display width; titles mix Persian and wide glyphs.
		title := runewidth.FillRight(runewidth.Truncate(a.Title, titleWidth, "..."), titleWidth)
		fmt.Fprintf(w, "%-4d  %-16s  %s  %s\n",
			i+1, a.DateAdded.Local().Format("2006-01-02 15:04"), title,
			strings.Join(a.KeyTechnologies, ", "))
	}

	fmt.Fprintf(w, "\n%d articles\n", len(results))
	return nil
}

// --- export subcommand ---

var knowledgeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the knowledge base to YAML or JSON",
	RunE:  runKnowledgeExport,
}

func runKnowledgeExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openStore(loadConfig().Store)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(context.Background(), opts)
	case "json":
		path, err = store.ExportJSON(context.Background(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Exported to %s\n", path)
	return nil
}

// --- delete subcommand ---

var knowledgeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove an article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(loadConfig().Store)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "deleted %s\n", args[0])
		return nil
	},
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) knowledge.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	tech, _ := cmd.Flags().GetString("tech")
	limit, _ := cmd.Flags().GetInt("limit")

	return knowledge.QueryOptions{
		Query:      queryText,
		Technology: tech,
		MaxResults: limit,
	}
}

func init() {
	for _, c := range []*cobra.Command{knowledgeListCmd, knowledgeSearchCmd} {
		c.Flags().String("tech", "", "filter by key technology")
		c.Flags().Int("limit", 0, "maximum results (0 = use default)")
		c.Flags().Bool("json", false, "output results as JSON")
	}
	knowledgeSearchCmd.Flags().String("query", "", "full-text search query")

	// Export flags.
	knowledgeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	knowledgeExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	knowledgeExportCmd.Flags().String("tech", "", "filter by key technology for partial export")

	knowledgeCmd.AddCommand(knowledgeAddCmd)
	knowledgeCmd.AddCommand(knowledgeListCmd)
	knowledgeCmd.AddCommand(knowledgeSearchCmd)
	knowledgeCmd.AddCommand(knowledgeExportCmd)
	knowledgeCmd.AddCommand(knowledgeDeleteCmd)

	rootCmd.AddCommand(knowledgeCmd)
}
