// Package cache stores source responses in SQLite so repeated runs over
// the same references do not hit external APIs again.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matsen/refcheck/internal/reference"
	"github.com/matsen/refcheck/internal/source"
	"github.com/matsen/refcheck/internal/textnorm"
)

// DB wraps a SQLite database connection.
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// Entry is one cached lookup. A nil Candidates slice records a miss.
type Entry struct {
	Candidates []reference.Candidate
	StoredAt   time.Time
}

// Miss reports whether the entry records that the source had nothing.
func (e Entry) Miss() bool { return len(e.Candidates) == 0 }

// OpenDB opens or creates a cache database at the given path.
func OpenDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &DB{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS lookups (
			source TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			query_json TEXT NOT NULL,
			candidates_json TEXT,
			stored_at INTEGER NOT NULL,
			PRIMARY KEY (source, fingerprint)
		);

		CREATE INDEX IF NOT EXISTS idx_lookups_stored_at ON lookups(stored_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Fingerprint identifies a query independently of case, punctuation and
// author-name formatting noise.
func Fingerprint(q source.Query) string {
	parts := []string{
		textnorm.Fold(q.Title),
		fmt.Sprint(q.Year),
		strings.ToLower(q.DOI),
	}
	for _, a := range q.Authors {
		parts = append(parts, textnorm.Fold(a))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached entry for a source and query. ok is false when
// nothing is stored.
func (d *DB) Get(ctx context.Context, sourceName string, q source.Query) (Entry, bool, error) {
	var (
		candJSON sql.NullString
		stored   int64
	)
	err := d.db.QueryRowContext(ctx,
		`SELECT candidates_json, stored_at FROM lookups WHERE source = ? AND fingerprint = ?`,
		sourceName, Fingerprint(q),
	).Scan(&candJSON, &stored)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading cache: %w", err)
	}

	e := Entry{StoredAt: time.Unix(stored, 0)}
	if candJSON.Valid {
		if err := json.Unmarshal([]byte(candJSON.String), &e.Candidates); err != nil {
			return Entry{}, false, fmt.Errorf("decoding cached candidates: %w", err)
		}
	}
	return e, true, nil
}

// Put stores candidates for a source and query. Empty candidates record a
// miss.
func (d *DB) Put(ctx context.Context, sourceName string, q source.Query, cands []reference.Candidate) error {
	queryJSON, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encoding query: %w", err)
	}
	var candJSON sql.NullString
	if len(cands) > 0 {
		b, err := json.Marshal(cands)
		if err != nil {
			return fmt.Errorf("encoding candidates: %w", err)
		}
		candJSON = sql.NullString{String: string(b), Valid: true}
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO lookups (source, fingerprint, query_json, candidates_json, stored_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (source, fingerprint) DO UPDATE SET
			query_json = excluded.query_json,
			candidates_json = excluded.candidates_json,
			stored_at = excluded.stored_at`,
		sourceName, Fingerprint(q), string(queryJSON), candJSON, d.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Prune deletes entries stored before the cutoff and returns how many
// were removed.
func (d *DB) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := d.db.ExecContext(ctx, `DELETE FROM lookups WHERE stored_at < ?`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of cached lookups per source.
func (d *DB) Count(ctx context.Context) (map[string]int, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT source, COUNT(*) FROM lookups GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("counting cache: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			name string
			n    int
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, rows.Err()
}
