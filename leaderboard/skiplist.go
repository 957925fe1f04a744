package leaderboard

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"

	"memorymatch/core"
)

// A skip list ordered by (seconds asc, moves asc, created_at asc, id asc).

const maxLevel = 16
const pFactor = 0.25

type node struct {
	r    core.Record
	next [maxLevel]*node
}

type SkipList struct {
	mu   sync.RWMutex
	head *node
	lvl  int
	byID map[string]*node
	rng  *rand.Rand
}

func NewSkipList() *SkipList {
	var seed [16]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		seed = [16]byte{}
	}
	seed1 := binary.BigEndian.Uint64(seed[:8])
	seed2 := binary.BigEndian.Uint64(seed[8:])

	return &SkipList{
		head: &node{},
		lvl:  1,
		byID: map[string]*node{},
		rng:  rand.New(rand.NewPCG(seed1, seed2)),
	}
}

func (s *SkipList) randomLevel() int {
	lvl := 1
	for lvl < maxLevel && s.rng.Float64() < pFactor {
		lvl++
	}
	return lvl
}

// Insert adds rec, replacing any record with the same id.
func (s *SkipList) Insert(rec core.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.byID[rec.ID]; ok {
		s.removeLocked(old.r)
	}
	update := [maxLevel]*node{}
	cur := s.head
	for i := s.lvl - 1; i >= 0; i-- {
		for cur.next[i] != nil && core.RecordLess(cur.next[i].r, rec) {
			cur = cur.next[i]
		}
		update[i] = cur
	}
	lvl := s.randomLevel()
	if lvl > s.lvl {
		for i := s.lvl; i < lvl; i++ {
			update[i] = s.head
		}
		s.lvl = lvl
	}
	n := &node{r: rec}
	for i := 0; i < lvl; i++ {
		n.next[i] = update[i].next[i]
		update[i].next[i] = n
	}
	s.byID[rec.ID] = n
}

func (s *SkipList) removeLocked(rec core.Record) {
	update := [maxLevel]*node{}
	cur := s.head
	for i := s.lvl - 1; i >= 0; i-- {
		for cur.next[i] != nil && core.RecordLess(cur.next[i].r, rec) {
			cur = cur.next[i]
		}
		update[i] = cur
	}
	target := update[0].next[0]
	if target == nil || target.r.ID != rec.ID {
		return
	}
	for i := 0; i < s.lvl; i++ {
		if update[i].next[i] == target {
			update[i].next[i] = target.next[i]
		}
	}
	delete(s.byID, rec.ID)
	for s.lvl > 1 && s.head.next[s.lvl-1] == nil {
		s.lvl--
	}
}

// Remove drops the record with the given id, if present.
func (s *SkipList) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.byID[id]; ok {
		s.removeLocked(n.r)
	}
}

func (s *SkipList) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *SkipList) Ascend(fn func(core.Record) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for cur := s.head.next[0]; cur != nil; cur = cur.next[0] {
		if !fn(cur.r) {
			return
		}
	}
}

func (s *SkipList) Top(q core.Query) []core.Record {
	limit := core.NormalizeLimit(q.Limit)
	out := make([]core.Record, 0, limit)
	s.Ascend(func(r core.Record) bool {
		if q.Match(r) {
			out = append(out, r)
		}
		return len(out) < limit
	})
	return out
}

var _ Board = (*SkipList)(nil)
