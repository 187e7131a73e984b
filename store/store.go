// Package store persists sealed bytecode chunks and their run history in a
// local SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lumavm/luma/luau/dist"
)

// ErrNotFound indicates the requested chunk is not in the store.
var ErrNotFound = errors.New("store: chunk not found")

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	hash       TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	envelope   BLOB NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	chunk_hash TEXT NOT NULL REFERENCES chunks(hash),
	ok         INTEGER NOT NULL,
	result     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_chunk ON runs(chunk_hash, created_at);
`

// Store is a chunk and run-record database. Methods are safe for concurrent
// use.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Run is one recorded execution of a chunk.
type Run struct {
	ID        string
	ChunkHash string
	OK        bool
	Result    string
	CreatedAt time.Time
}

// ChunkInfo summarizes a stored chunk.
type ChunkInfo struct {
	Hash      string
	Name      string
	CreatedAt time.Time
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveChunk stores a sealed envelope, keyed by its content hash. Saving the
// same chunk twice is a no-op.
func (s *Store) SaveChunk(env *dist.Envelope) error {
	if err := env.Verify(); err != nil {
		return err
	}
	data, err := dist.Marshal(env)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(
		`INSERT OR IGNORE INTO chunks (hash, name, envelope, created_at) VALUES (?, ?, ?, ?)`,
		env.HashString(), env.Name, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("store: save chunk: %w", err)
	}
	return nil
}

// LoadChunk fetches and verifies the envelope with the given hex hash.
func (s *Store) LoadChunk(hash string) (*dist.Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	err := s.db.QueryRow(`SELECT envelope FROM chunks WHERE hash = ?`, hash).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load chunk: %w", err)
	}
	return dist.Unmarshal(data)
}

// ListChunks returns every stored chunk, newest first.
func (s *Store) ListChunks() ([]ChunkInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT hash, name, created_at FROM chunks ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list chunks: %w", err)
	}
	defer rows.Close()

	var chunks []ChunkInfo
	for rows.Next() {
		var c ChunkInfo
		if err := rows.Scan(&c.Hash, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan chunk row: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// RecordRun stores one execution outcome and returns the run id.
func (s *Store) RecordRun(chunkHash string, ok bool, result string) (string, error) {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, chunk_hash, ok, result, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, chunkHash, ok, result, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("store: record run: %w", err)
	}
	return id, nil
}

// RunsFor returns the run history of a chunk, newest first.
func (s *Store) RunsFor(chunkHash string) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, chunk_hash, ok, result, created_at FROM runs WHERE chunk_hash = ? ORDER BY created_at DESC`,
		chunkHash,
	)
	if err != nil {
		return nil, fmt.Errorf("store: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.ChunkHash, &r.OK, &r.Result, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
