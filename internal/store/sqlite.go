package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// Compile-time interface guard.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store backed by SQLite via modernc.org/sqlite.
// Scan and report are stored as JSON documents next to indexed summary
// columns.
type SQLiteStore struct {
	db *sql.DB
}

var schema = []string{`
CREATE TABLE IF NOT EXISTS scans (
	id          TEXT     PRIMARY KEY,
	created_at  INTEGER  NOT NULL,
	score       INTEGER  NOT NULL,
	grade       TEXT     NOT NULL,
	bottlenecks INTEGER  NOT NULL,
	cpu         TEXT     NOT NULL,
	gpu         TEXT     NOT NULL,
	scan_json   TEXT     NOT NULL,
	report_json TEXT     NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_scans_created_at ON scans (created_at DESC)`,
}

// NewSQLite opens (or creates) the database at path, applies the pragmas
// and creates the schema.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// SQLite performs best with a single write connection. WAL enables concurrent readers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}

	// modernc.org/sqlite takes pragmas as statements, not DSN params.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, r Record) error {
	if r.ID == "" {
		return fmt.Errorf("save: empty record id")
	}
	scanJSON, err := json.Marshal(r.Scan)
	if err != nil {
		return fmt.Errorf("encode scan: %w", err)
	}
	reportJSON, err := json.Marshal(r.Report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	sum := summarize(r)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO scans (id, created_at, score, grade, bottlenecks, cpu, gpu, scan_json, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		r.ID, r.CreatedAt.UnixNano(), sum.Score, sum.Grade, sum.Bottlenecks,
		sum.CPU, sum.GPU, string(scanJSON), string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("save scan %s: %w", r.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save scan %s: %w", r.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("save scan %s: %w", r.ID, ErrExists)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, created_at, scan_json, report_json FROM scans WHERE id = ?", id)
	r, err := scanRecord(row)
	if errors.Is(err, ErrNotFound) {
		return Record{}, fmt.Errorf("scan %s: %w", id, ErrNotFound)
	}
	return r, err
}

func (s *SQLiteStore) Latest(ctx context.Context) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, created_at, scan_json, report_json FROM scans ORDER BY created_at DESC, id DESC LIMIT 1")
	return scanRecord(row)
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, score, grade, bottlenecks, cpu, gpu
		FROM scans ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sum Summary
		var created int64
		if err := rows.Scan(&sum.ID, &created, &sum.Score, &sum.Grade, &sum.Bottlenecks, &sum.CPU, &sum.GPU); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		sum.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanRecord(row *sql.Row) (Record, error) {
	var (
		r                    Record
		created              int64
		scanJSON, reportJSON string
	)
	if err := row.Scan(&r.ID, &created, &scanJSON, &reportJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("read scan: %w", err)
	}
	r.CreatedAt = time.Unix(0, created).UTC()

	r.Scan = new(model.Scan)
	if err := json.Unmarshal([]byte(scanJSON), r.Scan); err != nil {
		return Record{}, fmt.Errorf("decode scan %s: %w", r.ID, err)
	}
	r.Report = new(model.Report)
	if err := json.Unmarshal([]byte(reportJSON), r.Report); err != nil {
		return Record{}, fmt.Errorf("decode report %s: %w", r.ID, err)
	}
	return r, nil
}
