// Package settings is the SQLite-backed configuration store: plain
// config keys, encrypted provider API keys, the last-job slot, and a
// history of pipeline runs.
package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/enn-tee/agentic-job-search/internal/credential"
)

// LastJob is the single-slot record of the most recent run's inputs, so
// the operator can re-run without repeating flags.
type LastJob struct {
	JobFile  string
	Company  string
	Title    string
	Industry string
	SavedAt  time.Time
}

// Run is one line of pipeline history.
type Run struct {
	ID        int64
	CreatedAt time.Time
	Company   string
	Title     string
	Industry  string
	ResumeID  string
	Score     float64
}

// Store wraps the settings database.
type Store struct {
	db    *sql.DB
	creds *credential.Manager
}

// Open opens (creating if needed) the settings database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	creds, err := credential.NewManager()
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, creds: creds}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS configuration (
			key TEXT PRIMARY KEY,
			value TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS last_job (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			job_file TEXT,
			company TEXT,
			title TEXT,
			industry TEXT,
			saved_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME,
			company TEXT,
			title TEXT,
			industry TEXT,
			resume_id TEXT,
			score REAL
		);`,
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to init settings schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetConfig stores a plain configuration value.
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO configuration (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// GetConfig returns a configuration value, or "" when unset.
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM configuration WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSecret stores a value encrypted at rest.
func (s *Store) SetSecret(key, value string) error {
	sealed, err := s.creds.Encrypt(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt %s: %w", key, err)
	}
	return s.SetConfig(key, sealed)
}

// GetSecret returns a decrypted secret, or "" when unset.
func (s *Store) GetSecret(key string) (string, error) {
	stored, err := s.GetConfig(key)
	if err != nil || stored == "" {
		return "", err
	}
	value, err := s.creds.Decrypt(stored)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt %s: %w", key, err)
	}
	return value, nil
}

// IsSecretKey reports whether a config key holds a credential and must
// be encrypted on write and masked on display.
func IsSecretKey(key string) bool {
	switch key {
	case "api_key.openai", "api_key.anthropic", "api_key.gemini":
		return true
	}
	return false
}

// SaveLastJob replaces the last-job slot.
func (s *Store) SaveLastJob(job LastJob) error {
	_, err := s.db.Exec(
		`INSERT INTO last_job (id, job_file, company, title, industry, saved_at)
		 VALUES (1, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   job_file = excluded.job_file,
		   company = excluded.company,
		   title = excluded.title,
		   industry = excluded.industry,
		   saved_at = excluded.saved_at`,
		job.JobFile, job.Company, job.Title, job.Industry, time.Now().UTC())
	return err
}

// LastJob returns the slot contents; ok is false when no run was saved.
func (s *Store) LastJob() (LastJob, bool, error) {
	var job LastJob
	err := s.db.QueryRow(
		`SELECT job_file, company, title, industry, saved_at FROM last_job WHERE id = 1`).
		Scan(&job.JobFile, &job.Company, &job.Title, &job.Industry, &job.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return LastJob{}, false, nil
	}
	if err != nil {
		return LastJob{}, false, err
	}
	return job, true, nil
}

// RecordRun appends one line of pipeline history.
func (s *Store) RecordRun(run Run) error {
	created := run.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (created_at, company, title, industry, resume_id, score)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		created, run.Company, run.Title, run.Industry, run.ResumeID, run.Score)
	return err
}

// RecentRuns returns up to limit history lines, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT id, created_at, company, title, industry, resume_id, score
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.CreatedAt, &run.Company, &run.Title, &run.Industry, &run.ResumeID, &run.Score); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
