package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"memorymatch/core"
	"memorymatch/leaderboard"
)

// Store persists the whole score table to a single JSON file.
// Suitable for demos and small deployments.
type Store struct {
	path string
	mu   sync.Mutex
	rows []core.Record
	// ranking index rebuilt on load
	board *leaderboard.SkipList
}

func New(path string) (*Store, error) {
	s := &Store{path: path, board: leaderboard.NewSkipList()}
	if err := s.load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return s, nil
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var rows []core.Record
	if err := json.Unmarshal(b, &rows); err != nil {
		return err
	}
	s.rows = rows
	for _, r := range rows {
		s.board.Insert(r)
	}
	return nil
}

func (s *Store) persist() error {
	tmp := s.path + ".tmp"
	b, err := json.MarshalIndent(s.rows, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) Insert(_ context.Context, score core.Score) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if score.CreatedAt.IsZero() {
		score.CreatedAt = time.Now().UTC()
	}
	rec := core.Record{ID: uuid.NewString(), Score: score}
	s.rows = append(s.rows, rec)
	s.board.Insert(rec)
	if err := s.persist(); err != nil {
		s.rows = s.rows[:len(s.rows)-1]
		s.board.Remove(rec.ID)
		return core.Record{}, fmt.Errorf("persist %s: %w", s.path, err)
	}
	return rec, nil
}

func (s *Store) Query(_ context.Context, q core.Query) ([]core.Record, error) {
	return s.board.Top(q), nil
}

func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.rows)), nil
}
