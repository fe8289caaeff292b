// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store archives completed runs in a SQLite database and
// provides full-text search over generated scripts.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/script-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "runs.db"
)

// Store manages the run archive SQLite database.
type Store struct {
	db         *sql.DB
	outputDir  string
	maxResults int
}

// Open opens or creates the run archive at outputDir/index/runs.db,
// creating the schema if it does not exist.
func Open(outputDir string) (*Store, error) {
	dbDir := filepath.Join(outputDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, outputDir: outputDir, maxResults: 20}

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

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			source TEXT,
			framework TEXT,
			podcast_name TEXT,
			host_name TEXT,
			word_count INTEGER,
			sections_planned INTEGER,
			sections_generated INTEGER,
			elapsed_seconds REAL,
			script_path TEXT,
			analysis_path TEXT,
			script TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_framework ON runs(framework)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='runs_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE runs_fts USING fts5(script, framework, content=runs, content_rowid=rowid)`,
			`CREATE TRIGGER runs_ai AFTER INSERT ON runs BEGIN
				INSERT INTO runs_fts(rowid, script, framework) VALUES (new.rowid, new.script, new.framework);
			END`,
			`CREATE TRIGGER runs_ad AFTER DELETE ON runs BEGIN
				INSERT INTO runs_fts(runs_fts, rowid, script, framework) VALUES('delete', old.rowid, old.script, old.framework);
			END`,
			`CREATE TRIGGER runs_au AFTER UPDATE ON runs BEGIN
				INSERT INTO runs_fts(runs_fts, rowid, script, framework) VALUES('delete', old.rowid, old.script, old.framework);
				INSERT INTO runs_fts(rowid, script, framework) VALUES (new.rowid, new.script, new.framework);
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

// RunRecord is one archived run.
type RunRecord struct {
	ID                int64   `json:"id" yaml:"id"`
	Timestamp         string  `json:"timestamp" yaml:"timestamp"`
	Source            string  `json:"source" yaml:"source"`
	Framework         string  `json:"framework" yaml:"framework"`
	PodcastName       string  `json:"podcast_name" yaml:"podcast_name"`
	HostName          string  `json:"host_name" yaml:"host_name"`
	WordCount         int     `json:"word_count" yaml:"word_count"`
	SectionsPlanned   int     `json:"sections_planned" yaml:"sections_planned"`
	SectionsGenerated int     `json:"sections_generated" yaml:"sections_generated"`
	ElapsedSeconds    float64 `json:"elapsed_seconds" yaml:"elapsed_seconds"`
	ScriptPath        string  `json:"script_path" yaml:"script_path"`
	AnalysisPath      string  `json:"analysis_path,omitempty" yaml:"analysis_path,omitempty"`

	// Excerpt is the leading slice of the script, populated on reads.
	Excerpt string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
}

const excerptChars = 300

// Record archives a successful run result. Failed runs are not
// archived; callers decide what to do with their errors.
func (s *Store) Record(ctx context.Context, res *types.Result) (int64, error) {
	if !res.Success || res.Metadata == nil {
		return 0, fmt.Errorf("only successful runs are archived")
	}
	m := res.Metadata

	ts := m.Timestamp
	if ts == "" {
		ts = time.Now().UTC().Format(time.RFC3339)
	}

	r, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (timestamp, source, framework, podcast_name, host_name,
			word_count, sections_planned, sections_generated, elapsed_seconds,
			script_path, analysis_path, script)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts, m.Source, m.FrameworkName, m.PodcastName, m.HostName,
		m.WordCount, m.SectionsPlanned, m.SectionsGenerated, m.ElapsedSeconds,
		res.ScriptPath, res.AnalysisPath, res.Script,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	return r.LastInsertId()
}

// Recent returns the most recent runs, newest first. A max of zero
// uses the store default.
func (s *Store) Recent(ctx context.Context, max int) ([]RunRecord, error) {
	if max <= 0 {
		max = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT rowid, timestamp, source, framework, podcast_name, host_name,
			word_count, sections_planned, sections_generated, elapsed_seconds,
			script_path, analysis_path, substr(script, 1, ?)
		 FROM runs ORDER BY rowid DESC LIMIT ?`,
		excerptChars, max,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	return scanRecords(rows)
}

// Search runs an FTS5 full-text query over archived scripts and
// framework names, ranked by relevance.
func (s *Store) Search(ctx context.Context, query string, max int) ([]RunRecord, error) {
	if max <= 0 {
		max = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.rowid, r.timestamp, r.source, r.framework, r.podcast_name, r.host_name,
			r.word_count, r.sections_planned, r.sections_generated, r.elapsed_seconds,
			r.script_path, r.analysis_path, substr(r.script, 1, ?)
		 FROM runs_fts
		 JOIN runs r ON r.rowid = runs_fts.rowid
		 WHERE runs_fts MATCH ?
		 ORDER BY runs_fts.rank
		 LIMIT ?`,
		excerptChars, query, max,
	)
	if err != nil {
		return nil, fmt.Errorf("searching runs: %w", err)
	}
	return scanRecords(rows)
}

// Script returns the full script text of an archived run by ID.
func (s *Store) Script(ctx context.Context, id int64) (string, error) {
	var script string
	err := s.db.QueryRowContext(ctx, `SELECT script FROM runs WHERE rowid = ?`, id).Scan(&script)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return "", fmt.Errorf("looking up run: %w", err)
	}
	return script, nil
}

func scanRecords(rows *sql.Rows) ([]RunRecord, error) {
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var (
			rec          RunRecord
			analysisPath sql.NullString
		)
		if err := rows.Scan(
			&rec.ID, &rec.Timestamp, &rec.Source, &rec.Framework,
			&rec.PodcastName, &rec.HostName,
			&rec.WordCount, &rec.SectionsPlanned, &rec.SectionsGenerated,
			&rec.ElapsedSeconds, &rec.ScriptPath, &analysisPath, &rec.Excerpt,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if analysisPath.Valid {
			rec.AnalysisPath = analysisPath.String
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
