package chunks

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// maxLineBytes bounds one JSONL record; embedding rows are long.
const maxLineBytes = 16 << 20

type sequenceRecord struct {
	EntityID string `json:"entity_id"`
	Sequence string `json:"sequence"`
}

// FileSource serves chunks held in memory, typically read from JSONL files.
type FileSource struct {
	chunks    map[string][]Chunk
	sequences map[string]string
}

// NewMemorySource builds a FileSource from in-memory records. Every chunk
// must pass Check.
func NewMemorySource(cs []Chunk, sequences map[string]string) (*FileSource, error) {
	src := &FileSource{chunks: map[string][]Chunk{}, sequences: map[string]string{}}
	for _, c := range cs {
		if err := c.Check(); err != nil {
			return nil, err
		}
		src.chunks[c.EntityID] = append(src.chunks[c.EntityID], c)
	}
	for id := range src.chunks {
		sortByIndex(src.chunks[id])
	}
	for id, seq := range sequences {
		src.sequences[id] = seq
	}
	return src, nil
}

// LoadFiles reads a chunk JSONL file and an optional sequence JSONL file.
func LoadFiles(chunksPath, sequencesPath string) (*FileSource, error) {
	f, err := os.Open(chunksPath)
	if err != nil {
		return nil, fmt.Errorf("open chunks file: %w", err)
	}
	defer f.Close()

	var cs []Chunk
	if err := readJSONL(f, func(line []byte) error {
		var c Chunk
		if err := json.Unmarshal(line, &c); err != nil {
			return err
		}
		if err := c.Check(); err != nil {
			return err
		}
		cs = append(cs, c)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("read %s: %w", chunksPath, err)
	}

	sequences := map[string]string{}
	if strings.TrimSpace(sequencesPath) != "" {
		sf, err := os.Open(sequencesPath)
		if err != nil {
			return nil, fmt.Errorf("open sequences file: %w", err)
		}
		defer sf.Close()
		if err := readJSONL(sf, func(line []byte) error {
			var rec sequenceRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				return err
			}
			sequences[rec.EntityID] = rec.Sequence
			return nil
		}); err != nil {
			return nil, fmt.Errorf("read %s: %w", sequencesPath, err)
		}
	}
	return NewMemorySource(cs, sequences)
}

func readJSONL(r io.Reader, fn func([]byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

// Chunks implements Source. The returned slice is a copy.
func (s *FileSource) Chunks(_ context.Context, entityID string) ([]Chunk, error) {
	cs, ok := s.chunks[entityID]
	if !ok || len(cs) == 0 {
		return nil, notFound(entityID, "chunks")
	}
	return append([]Chunk(nil), cs...), nil
}

// FullSequence implements Source.
func (s *FileSource) FullSequence(_ context.Context, entityID string) (string, error) {
	seq, ok := s.sequences[entityID]
	if !ok {
		return "", notFound(entityID, "sequence")
	}
	return seq, nil
}

// EntityIDs lists every entity with chunks, sorted.
func (s *FileSource) EntityIDs() []string {
	ids := make([]string, 0, len(s.chunks))
	for id := range s.chunks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sequences returns a copy of the loaded full sequences.
func (s *FileSource) Sequences() map[string]string {
	out := make(map[string]string, len(s.sequences))
	for k, v := range s.sequences {
		out[k] = v
	}
	return out
}
