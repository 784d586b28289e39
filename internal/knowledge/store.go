// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge persists analyzed articles and operator settings in a
// single SQLite database with a full-text index over the articles.
package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/zld-agent/pkg/types"
)

const (
	dbFile = "zld-agent.db"

	defaultMaxResults = 20

	// timeLayout has a fixed width so date_added sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrNotFound is returned when an article id does not exist.
var ErrNotFound = errors.New("not found")

// Store manages the agent SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int

	now func() time.Time
}

// NewStore opens or creates dataDir/zld-agent.db and its schema.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{
		db:         db,
		dataDir:    dataDir,
		maxResults: maxResults,
		now:        time.Now,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return filepath.Join(s.dataDir, dbFile)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			summary TEXT,
			key_technologies TEXT,
			raw_content TEXT,
			date_added TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_date ON articles(date_added)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='articles_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE articles_fts USING fts5(
				title, summary, key_technologies, raw_content,
				content=articles, content_rowid=rowid)`,
			`CREATE TRIGGER articles_ai AFTER INSERT ON articles BEGIN
				INSERT INTO articles_fts(rowid, title, summary, key_technologies, raw_content)
				VALUES (new.rowid, new.title, new.summary, new.key_technologies, new.raw_content);
			END`,
			`CREATE TRIGGER articles_ad AFTER DELETE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, title, summary, key_technologies, raw_content)
				VALUES ('delete', old.rowid, old.title, old.summary, old.key_technologies, old.raw_content);
			END`,
			`CREATE TRIGGER articles_au AFTER UPDATE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, title, summary, key_technologies, raw_content)
				VALUES ('delete', old.rowid, old.title, old.summary, old.key_technologies, old.raw_content);
				INSERT INTO articles_fts(rowid, title, summary, key_technologies, raw_content)
				VALUES (new.rowid, new.title, new.summary, new.key_technologies, new.raw_content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Add stores an article. A missing id gets a UUID and a zero DateAdded
// gets the current time. The stored article is returned.
func (s *Store) Add(ctx context.Context, a types.Article) (types.Article, error) {
	if a.Title == "" {
		return types.Article{}, fmt.Errorf("article title is required")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.DateAdded.IsZero() {
		a.DateAdded = s.now()
	}
	if a.KeyTechnologies == nil {
		a.KeyTechnologies = []string{}
	}

	techJSON, err := json.Marshal(a.KeyTechnologies)
	if err != nil {
		return types.Article{}, fmt.Errorf("marshaling key technologies: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO articles (id, title, summary, key_technologies, raw_content, date_added)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, summary=excluded.summary,
			key_technologies=excluded.key_technologies,
			raw_content=excluded.raw_content, date_added=excluded.date_added`,
		a.ID, a.Title, a.Summary, string(techJSON), a.RawContent,
		a.DateAdded.UTC().Format(timeLayout),
	)
	if err != nil {
		return types.Article{}, fmt.Errorf("inserting article %s: %w", a.ID, err)
	}
	return a, nil
}

// Get returns one article by id.
func (s *Store) Get(ctx context.Context, id string) (types.Article, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles a WHERE a.id = ?`, id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Article{}, fmt.Errorf("article %s: %w", id, ErrNotFound)
	}
	return a, err
}

// Delete removes one article by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting article %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("article %s: %w", id, ErrNotFound)
	}
	return nil
}
