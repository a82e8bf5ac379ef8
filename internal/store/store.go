// Package store persists analyzed scans. The server keeps every accepted
// scan with its report so the latest one can be fetched again.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

// ErrNotFound is returned when no record matches the requested id, or the
// store is empty when the latest record is requested.
var ErrNotFound = errors.New("record not found")

// ErrExists is returned by Save when a record with the same id is stored.
var ErrExists = errors.New("record already exists")

// Record is one stored analysis.
type Record struct {
	ID        string
	CreatedAt time.Time
	Scan      *model.Scan
	Report    *model.Report
}

// Summary is the listing view of a record.
type Summary struct {
	ID          string    `json:"scan_id"`
	CreatedAt   time.Time `json:"created_at"`
	Score       int       `json:"score"`
	Grade       string    `json:"grade"`
	Bottlenecks int       `json:"bottlenecks"`
	CPU         string    `json:"cpu"`
	GPU         string    `json:"gpu"`
}

// Store keeps analyzed scans. Implementations are safe for concurrent use.
type Store interface {
	// Save inserts a new record. Stored records are never replaced: an id
	// that is already taken yields ErrExists.
	Save(ctx context.Context, r Record) error
	Get(ctx context.Context, id string) (Record, error)
	// Latest returns the most recently created record.
	Latest(ctx context.Context) (Record, error)
	// List returns up to limit summaries, newest first.
	List(ctx context.Context, limit int) ([]Summary, error)
	Ping(ctx context.Context) error
	Close() error
}

// DefaultListLimit applies when List is called with limit <= 0.
const DefaultListLimit = 50

// Open returns a SQLite store at path, or an in-memory store when path is
// empty.
func Open(path string) (Store, error) {
	if path == "" {
		return NewMemory(), nil
	}
	return NewSQLite(path)
}

func summarize(r Record) Summary {
	sum := Summary{ID: r.ID, CreatedAt: r.CreatedAt}
	if r.Report != nil {
		sum.Score = r.Report.Score.Total
		sum.Grade = r.Report.Score.Grade
		sum.Bottlenecks = len(r.Report.Bottlenecks)
	}
	if r.Scan != nil {
		if r.Scan.CPU != nil {
			sum.CPU = r.Scan.CPU.ModelName
		}
		if r.Scan.GPU != nil {
			sum.GPU = r.Scan.GPU.ModelName
		}
	}
	return sum
}
