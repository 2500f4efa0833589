// Package results persists pipeline reports in a bbolt database keyed by run
// ID.
package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/mwiater/chunkalign/internal/logging"
	"github.com/mwiater/chunkalign/internal/pipeline"
)

// ErrNotFound is returned when no report has the requested run ID.
var ErrNotFound = errors.New("report not found")

var (
	reportsBucket = []byte("reports")
	// createdBucket indexes run IDs by creation time so List can walk newest
	// first.
	createdBucket = []byte("reports_by_time")
)

// Entry is the listing view of a stored report.
type Entry struct {
	RunID      string    `json:"run_id"`
	CreatedAt  time.Time `json:"created_at"`
	Query      string    `json:"query"`
	Target     string    `json:"target"`
	Alignments int       `json:"alignments"`
	BestScore  *float64  `json:"best_score"`
}

// Store is a bbolt-backed report store.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open result store %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(reportsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(createdBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create result buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores report under its run ID, replacing any earlier copy.
func (s *Store) Save(_ context.Context, report *pipeline.Report) error {
	id := report.ID()
	if id == "" {
		return errors.New("report has no run id")
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", id, err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(reportsBucket).Put([]byte(id), data); err != nil {
			return err
		}
		return tx.Bucket(createdBucket).Put(timeKey(report.Metadata.CreatedAt, id), []byte(id))
	})
	if err != nil {
		return fmt.Errorf("save report %s: %w", id, err)
	}
	logging.LogEvent("[STORE] saved report %s (%d bytes)", id, len(data))
	return nil
}

// Get loads the report with the given run ID.
func (s *Store) Get(_ context.Context, id string) (*pipeline.Report, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(reportsBucket).Get([]byte(id))
		if v == nil {
			return fmt.Errorf("run %q: %w", id, ErrNotFound)
		}
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	var report pipeline.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &report, nil
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
// Respects context cancellation during iteration.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		reports := tx.Bucket(reportsBucket)
		c := tx.Bucket(createdBucket).Cursor()
		for k, id := c.Last(); k != nil; k, id = c.Prev() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			data := reports.Get(id)
			if data == nil {
				continue
			}
			var report pipeline.Report
			if err := json.Unmarshal(data, &report); err != nil {
				return fmt.Errorf("decode report %s: %w", id, err)
			}
			entries = append(entries, entryFor(&report))
			if limit > 0 && len(entries) >= limit {
				break
			}
		}
		return nil
	})
	return entries, err
}

func entryFor(r *pipeline.Report) Entry {
	return Entry{
		RunID:      r.ID(),
		CreatedAt:  r.Metadata.CreatedAt,
		Query:      r.Inputs.Query.ID,
		Target:     r.Inputs.Target.ID,
		Alignments: r.Summary.FilteredAlignments,
		BestScore:  r.Summary.BestScore,
	}
}

// timeKey sorts lexically in creation order; the run ID breaks ties.
func timeKey(t time.Time, id string) []byte {
	return []byte(t.UTC().Format("20060102T150405.000000000") + "/" + id)
}
