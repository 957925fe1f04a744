// Package localcache keeps the player's own leaderboard on disk for offline play.
//
// The cache file is a small JSON key/value document; the leaderboard lives under a
// single fixed key so other client state can share the file.
package localcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"memorymatch/core"
)

const (
	// Key is the entry holding the cached leaderboard.
	Key = "memory-game-leaderboard"
	// Capacity bounds the number of cached scores.
	Capacity = 20
)

// Cache is a size-capped, sorted leaderboard persisted to a file.
type Cache struct {
	path string
	mu   sync.Mutex
	log  *slog.Logger
}

// New returns a cache backed by path. The file is created on first save.
func New(path string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{path: path, log: logger}
}

// Path returns the backing file.
func (c *Cache) Path() string { return c.path }

// Load returns the cached scores, best first. A missing or unreadable entry
// yields an empty leaderboard.
func (c *Cache) Load() []core.Score {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc := c.readDoc()
	return c.decode(doc[Key])
}

// Top returns up to limit cached scores, optionally restricted to one difficulty.
func (c *Cache) Top(d core.Difficulty, limit int) []core.Score {
	all := c.Load()
	if limit <= 0 || limit > Capacity {
		limit = Capacity
	}
	out := make([]core.Score, 0, len(all))
	for _, s := range all {
		if d != "" && s.Difficulty != d {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Add inserts s, re-sorts and truncates to Capacity, then saves.
func (c *Cache) Add(s core.Score) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc := c.readDoc()
	scores := append(c.decode(doc[Key]), s)
	core.SortScores(scores)
	if len(scores) > Capacity {
		scores = scores[:Capacity]
	}
	return c.writeDoc(doc, scores)
}

// Save replaces the cached leaderboard.
func (c *Cache) Save(scores []core.Score) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := append([]core.Score(nil), scores...)
	core.SortScores(cp)
	if len(cp) > Capacity {
		cp = cp[:Capacity]
	}
	return c.writeDoc(c.readDoc(), cp)
}

// Clear drops the cached leaderboard and keeps any other keys.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc := c.readDoc()
	delete(doc, Key)
	return c.persist(doc)
}

func (c *Cache) readDoc() map[string]json.RawMessage {
	doc := map[string]json.RawMessage{}
	b, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.log.Warn("local cache unreadable", "path", c.path, "error", err)
		}
		return doc
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		c.log.Warn("local cache corrupted, starting empty", "path", c.path, "error", err)
		return map[string]json.RawMessage{}
	}
	if doc == nil {
		// a literal null decodes to a nil map
		return map[string]json.RawMessage{}
	}
	return doc
}

func (c *Cache) decode(raw json.RawMessage) []core.Score {
	if len(raw) == 0 {
		return []core.Score{}
	}
	var scores []core.Score
	if err := json.Unmarshal(raw, &scores); err != nil {
		c.log.Warn("cached leaderboard malformed, ignoring", "error", err)
		return []core.Score{}
	}
	if scores == nil {
		return []core.Score{}
	}
	core.SortScores(scores)
	if len(scores) > Capacity {
		scores = scores[:Capacity]
	}
	return scores
}

func (c *Cache) writeDoc(doc map[string]json.RawMessage, scores []core.Score) error {
	raw, err := json.Marshal(scores)
	if err != nil {
		return err
	}
	doc[Key] = raw
	return c.persist(doc)
}

func (c *Cache) persist(doc map[string]json.RawMessage) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return os.Rename(tmp, c.path)
}
