package cache

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matsen/refcheck/internal/logging"
	"github.com/matsen/refcheck/internal/reference"
	"github.com/matsen/refcheck/internal/source"
)

// Cached is a source.Source backed by the cache. Answers (hits and
// misses) are stored; unavailability never is.
type Cached struct {
	inner  source.Source
	db     *DB
	maxAge time.Duration
	logger *log.Logger
}

// Wrap returns src with lookups served from db when possible. Entries
// older than maxAge are ignored; zero means they never expire.
func Wrap(src source.Source, db *DB, maxAge time.Duration, logger *log.Logger) *Cached {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Cached{inner: src, db: db, maxAge: maxAge, logger: logger}
}

// Name implements source.Source.
func (c *Cached) Name() string { return c.inner.Name() }

// Search implements source.Source. Cache read and write failures fall
// back to the wrapped source.
func (c *Cached) Search(ctx context.Context, q source.Query) ([]reference.Candidate, error) {
	name := c.inner.Name()

	e, ok, err := c.db.Get(ctx, name, q)
	if err != nil {
		c.logger.Warn("cache read failed", "source", name, "err", err)
	}
	if ok && (c.maxAge == 0 || c.db.now().Sub(e.StoredAt) <= c.maxAge) {
		c.logger.Debug("cache hit", "source", name, "miss", e.Miss())
		if e.Miss() {
			return nil, source.ErrNoMatch
		}
		return e.Candidates, nil
	}

	cands, err := c.inner.Search(ctx, q)
	switch {
	case err == nil:
		c.store(ctx, name, q, cands)
	case source.IsNoMatch(err):
		c.store(ctx, name, q, nil)
	}
	return cands, err
}

func (c *Cached) store(ctx context.Context, name string, q source.Query, cands []reference.Candidate) {
	if err := c.db.Put(ctx, name, q, cands); err != nil {
		c.logger.Warn("cache write failed", "source", name, "err", err)
	}
}
