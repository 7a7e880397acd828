// Package cache is an optional sqlite-backed store for decoded query
// results. A hit spares both the caller and the remote service a round
// trip, which matters under the strict request pacing the remote enforces.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	_ "modernc.org/sqlite"

	"oecdmcp/internal/domain"
)

// Store caches decoded observations in a local SQLite file.
type Store struct {
	conn  *sql.DB
	ttl   time.Duration
	sched *cron.Cron
}

// Open opens (or creates) the cache database at path. Entries older than
// ttl are treated as misses.
func Open(path string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer — limit to single connection to prevent SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn, ttl: ttl}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close stops the purge schedule and closes the database.
func (s *Store) Close() error {
	if s.sched != nil {
		s.sched.Stop()
		s.sched = nil
	}
	return s.conn.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS query_cache (
			id TEXT PRIMARY KEY,
			dataset_id TEXT NOT NULL,
			cache_key TEXT NOT NULL,
			observations_json TEXT NOT NULL DEFAULT '[]',
			fetched_at INTEGER NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_query_cache_lookup ON query_cache(dataset_id, cache_key)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Get returns the cached observations for a dataset/key pair, or a miss if
// absent or older than the TTL.
func (s *Store) Get(datasetID, key string) ([]domain.Observation, bool, error) {
	row := s.conn.QueryRow(
		`SELECT observations_json, fetched_at FROM query_cache
		 WHERE dataset_id = ? AND cache_key = ?`, datasetID, key,
	)

	var raw string
	var fetchedAt int64
	err := row.Scan(&raw, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("scan cache row: %w", err)
	}

	if time.Since(time.Unix(fetchedAt, 0)) > s.ttl {
		return nil, false, nil
	}

	var observations []domain.Observation
	if err := json.Unmarshal([]byte(raw), &observations); err != nil {
		return nil, false, fmt.Errorf("decode cached observations: %w", err)
	}
	return observations, true, nil
}

// Put inserts or replaces the cached result for a dataset/key pair.
func (s *Store) Put(datasetID, key string, observations []domain.Observation) error {
	data, err := json.Marshal(observations)
	if err != nil {
		return fmt.Errorf("encode observations: %w", err)
	}

	_, err = s.conn.Exec(
		`INSERT INTO query_cache (id, dataset_id, cache_key, observations_json, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(dataset_id, cache_key) DO UPDATE SET
		   observations_json=excluded.observations_json, fetched_at=excluded.fetched_at`,
		uuid.New().String(), datasetID, key, string(data), time.Now().Unix(),
	)
	return err
}

// PurgeExpired deletes rows older than the TTL and reports how many went.
func (s *Store) PurgeExpired() (int64, error) {
	cutoff := time.Now().Add(-s.ttl).Unix()
	res, err := s.conn.Exec(`DELETE FROM query_cache WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartPurge schedules PurgeExpired on a fixed interval until Close.
func (s *Store) StartPurge(every time.Duration) error {
	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", every), func() {
		n, err := s.PurgeExpired()
		if err != nil {
			log.Printf("[cache] purge failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("[cache] purged %d expired entries", n)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule purge: %w", err)
	}
	c.Start()
	s.sched = c
	return nil
}
