package chunks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mwiater/chunkalign/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	entity_id   TEXT    NOT NULL,
	chunk_index INTEGER NOT NULL,
	start_pos   INTEGER NOT NULL,
	end_pos     INTEGER NOT NULL,
	sequence    TEXT    NOT NULL,
	embedding   TEXT,
	PRIMARY KEY (entity_id, chunk_index)
);
CREATE TABLE IF NOT EXISTS sequences (
	entity_id TEXT PRIMARY KEY,
	sequence  TEXT NOT NULL
);`

type chunkRow struct {
	EntityID  string         `db:"entity_id"`
	Index     int            `db:"chunk_index"`
	Start     int            `db:"start_pos"`
	End       int            `db:"end_pos"`
	Sequence  string         `db:"sequence"`
	Embedding sql.NullString `db:"embedding"`
}

func (r chunkRow) chunk() (Chunk, error) {
	c := Chunk{EntityID: r.EntityID, Index: r.Index, Start: r.Start, End: r.End, Sequence: r.Sequence}
	if err := c.Check(); err != nil {
		return Chunk{}, err
	}
	if r.Embedding.Valid && r.Embedding.String != "" {
		if err := json.Unmarshal([]byte(r.Embedding.String), &c.Embedding); err != nil {
			return Chunk{}, fmt.Errorf("decode embedding for %s#%d: %w", r.EntityID, r.Index, err)
		}
	}
	return c, nil
}

// SQLStore is a Source backed by a SQLite database.
type SQLStore struct {
	db *sqlx.DB
}

// OpenSQLStore opens (creating if needed) the SQLite database at path.
// Use ":memory:" for a throwaway store.
func OpenSQLStore(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open chunk store %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create chunk schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Chunks implements Source.
func (s *SQLStore) Chunks(ctx context.Context, entityID string) ([]Chunk, error) {
	var rows []chunkRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT entity_id, chunk_index, start_pos, end_pos, sequence, embedding
		 FROM chunks WHERE entity_id = ? ORDER BY chunk_index`, entityID)
	if err != nil {
		return nil, fmt.Errorf("query chunks for %q: %w", entityID, err)
	}
	if len(rows) == 0 {
		return nil, notFound(entityID, "chunks")
	}
	out := make([]Chunk, 0, len(rows))
	for _, r := range rows {
		c, err := r.chunk()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// FullSequence implements Source.
func (s *SQLStore) FullSequence(ctx context.Context, entityID string) (string, error) {
	var seq string
	err := s.db.GetContext(ctx, &seq, `SELECT sequence FROM sequences WHERE entity_id = ?`, entityID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", notFound(entityID, "sequence")
	}
	if err != nil {
		return "", fmt.Errorf("query sequence for %q: %w", entityID, err)
	}
	return seq, nil
}

// ImportStats counts the rows written by Import.
type ImportStats struct {
	Entities  int `json:"entities"`
	Chunks    int `json:"chunks"`
	Sequences int `json:"sequences"`
}

// Import copies every chunk and sequence of src into the store in one
// transaction, replacing rows with the same keys.
func (s *SQLStore) Import(ctx context.Context, src *FileSource) (ImportStats, error) {
	var stats ImportStats
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, id := range src.EntityIDs() {
		cs, err := src.Chunks(ctx, id)
		if err != nil {
			return stats, fmt.Errorf("import %s: %w", id, err)
		}
		for _, c := range cs {
			var embedding sql.NullString
			if len(c.Embedding) > 0 {
				raw, err := json.Marshal(c.Embedding)
				if err != nil {
					return stats, fmt.Errorf("encode embedding for %s#%d: %w", c.EntityID, c.Index, err)
				}
				embedding = sql.NullString{String: string(raw), Valid: true}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO chunks (entity_id, chunk_index, start_pos, end_pos, sequence, embedding)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				c.EntityID, c.Index, c.Start, c.End, c.Sequence, embedding); err != nil {
				return stats, fmt.Errorf("insert chunk %s#%d: %w", c.EntityID, c.Index, err)
			}
			stats.Chunks++
		}
		stats.Entities++
	}
	for id, seq := range src.Sequences() {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO sequences (entity_id, sequence) VALUES (?, ?)`, id, seq); err != nil {
			return stats, fmt.Errorf("insert sequence %s: %w", id, err)
		}
		stats.Sequences++
	}
	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit import: %w", err)
	}
	logging.LogEvent("[STORE] imported %d chunks for %d entities and %d sequences", stats.Chunks, stats.Entities, stats.Sequences)
	return stats, nil
}
