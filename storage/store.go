// Package storage хранит результаты анализа тендеров в SQLite: каждая
// запись — один прогон конвейера с агрегированной JSON-карточкой.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"tenderanalyzer/schema"
)

// Run один сохраненный прогон анализа.
type Run struct {
	ID        string        `json:"id"`
	City      string        `json:"city"`
	Title     string        `json:"title"`
	Sources   []string      `json:"sources"`
	Record    schema.Record `json:"record,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// RunStore SQLite-хранилище прогонов анализа.
type RunStore struct {
	conn   *sql.DB
	logger *slog.Logger
}

// NewRunStore открывает (и при необходимости создает) базу прогонов.
func NewRunStore(dbPath string) (*RunStore, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}

	store := &RunStore{
		conn:   conn,
		logger: slog.Default().With("component", "storage"),
	}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return store, nil
}

func (s *RunStore) migrate() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id         TEXT PRIMARY KEY,
		city       TEXT NOT NULL DEFAULT '',
		title      TEXT NOT NULL DEFAULT '',
		sources    TEXT NOT NULL DEFAULT '',
		record     TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_analysis_runs_created ON analysis_runs(created_at DESC);
	`
	if _, err := s.conn.Exec(ddl); err != nil {
		return fmt.Errorf("failed to migrate run store: %w", err)
	}
	return nil
}

// SaveRun сохраняет агрегированную карточку и возвращает идентификатор
// прогона.
func (s *RunStore) SaveRun(ctx context.Context, record schema.Record, city string, sources []string) (string, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	id := uuid.NewString()
	title, _ := record["title"].(string)

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO analysis_runs (id, city, title, sources, record, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, city, title, strings.Join(sources, ";"), string(payload), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}

	s.logger.Info("Прогон анализа сохранен", "run_id", id, "title", title)
	return id, nil
}

// GetRun возвращает прогон вместе с карточкой.
func (s *RunStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, city, title, sources, record, created_at
		 FROM analysis_runs WHERE id = ?`, id)

	var run Run
	var sources, payload string
	if err := row.Scan(&run.ID, &run.City, &run.Title, &sources, &payload, &run.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", id)
		}
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	if sources != "" {
		run.Sources = strings.Split(sources, ";")
	}
	if err := json.Unmarshal([]byte(payload), &run.Record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s record: %w", id, err)
	}
	return &run, nil
}

// ListRuns возвращает последние прогоны без тел карточек, новые первыми.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, city, title, sources, created_at
		 FROM analysis_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var sources string
		if err := rows.Scan(&run.ID, &run.City, &run.Title, &sources, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if sources != "" {
			run.Sources = strings.Split(sources, ";")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close закрывает подключение к базе.
func (s *RunStore) Close() error {
	return s.conn.Close()
}
