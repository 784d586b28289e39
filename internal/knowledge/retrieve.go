// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/zld-agent/pkg/types"
)

const articleColumns = `a.id, a.title, a.summary, a.key_technologies, a.raw_content, a.date_added`

// QueryOptions holds parameters for knowledge base queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string. Empty lists every
	// article newest first.
	Query string

	// Technology keeps only articles naming this key technology.
	Technology string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (types.Article, error) {
	var (
		a         types.Article
		summary   sql.NullString
		techJSON  sql.NullString
		raw       sql.NullString
		dateAdded string
	)
	if err := row.Scan(&a.ID, &a.Title, &summary, &techJSON, &raw, &dateAdded); err != nil {
		return types.Article{}, err
	}
	a.Summary = summary.String
	a.RawContent = raw.String
	a.KeyTechnologies = []string{}
	if techJSON.Valid {
		json.Unmarshal([]byte(techJSON.String), &a.KeyTechnologies)
	}
	if t, err := time.Parse(timeLayout, dateAdded); err == nil {
		a.DateAdded = t
	}
	return a, nil
}

// Retrieve queries the knowledge base. Full-text queries are ranked by
// relevance, listings are ordered newest first.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]types.Article, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(`SELECT ` + articleColumns + `
			FROM articles_fts
			JOIN articles a ON a.rowid = articles_fts.rowid
			WHERE articles_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(`SELECT ` + articleColumns + ` FROM articles a WHERE 1=1`)
	}

	if opts.Technology != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(a.key_technologies) WHERE value = ?)`)
		args = append(args, opts.Technology)
	}

	if useFTS {
		qb.WriteString(` ORDER BY articles_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY a.date_added DESC, a.rowid DESC`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge base: %w", err)
	}
	defer rows.Close()

	var results []types.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, a)
	}

	return results, rows.Err()
}

// Recent returns the n newest articles, newest first. Scenario design
// grounds itself in these.
func (s *Store) Recent(ctx context.Context, n int) ([]types.Article, error) {
	if n <= 0 {
		return nil, nil
	}
	return s.Retrieve(ctx, QueryOptions{MaxResults: n})
}

// Count returns the number of stored articles.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return n, nil
}
