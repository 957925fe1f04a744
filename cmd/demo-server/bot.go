package main

import (
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"memorymatch/core"
	"memorymatch/game"
)

// virtualClock is a game.Scheduler driven by Advance instead of wall time.
type virtualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*vtimer
}

type vtimer struct {
	at    time.Duration
	every time.Duration
	f     func()
	dead  bool
}

func (c *virtualClock) add(t *vtimer) game.Cancel {
	c.mu.Lock()
	c.timers = append(c.timers, t)
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		t.dead = true
		c.mu.Unlock()
	}
}

func (c *virtualClock) AfterFunc(d time.Duration, f func()) game.Cancel {
	c.mu.Lock()
	at := c.now + d
	c.mu.Unlock()
	return c.add(&vtimer{at: at, f: f})
}

func (c *virtualClock) Every(d time.Duration, f func()) game.Cancel {
	c.mu.Lock()
	at := c.now + d
	c.mu.Unlock()
	return c.add(&vtimer{at: at, every: d, f: f})
}

// Advance moves the clock forward and fires due callbacks in time order.
func (c *virtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	for {
		live := c.timers[:0]
		for _, t := range c.timers {
			if !t.dead {
				live = append(live, t)
			}
		}
		c.timers = live
		sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].at < c.timers[j].at })
		if len(c.timers) == 0 || c.timers[0].at > target {
			break
		}
		t := c.timers[0]
		c.now = t.at
		if t.every > 0 {
			t.at += t.every
		} else {
			t.dead = true
		}
		c.mu.Unlock()
		t.f()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// bot plays with a memory that keeps each seen card with probability recall.
type bot struct {
	name   string
	recall float64
	think  time.Duration
	rng    *rand.Rand
}

// play runs one game to completion on a virtual clock and returns the result.
func (b bot) play(d core.Difficulty) (game.Result, error) {
	clock := &virtualClock{}
	var result game.Result
	sess, err := game.New(d,
		game.WithScheduler(clock),
		game.WithOnComplete(func(r game.Result) { result = r }),
	)
	if err != nil {
		return game.Result{}, err
	}
	defer sess.Close()

	seen := map[int]int{} // position -> pair id
	flip := func(pos int) int {
		sess.FlipAt(pos)
		pair := sess.Snapshot().Cards[pos].PairID
		if b.rng.Float64() < b.recall {
			seen[pos] = pair
		}
		return pair
	}

	for !sess.Completed() {
		snap := sess.Snapshot()
		first, second := b.choose(snap, seen)
		pair := flip(first)
		if second < 0 {
			second = b.partnerOrRandom(sess.Snapshot(), seen, first, pair)
		}
		flip(second)
		clock.Advance(b.think + game.MismatchDelay)
		for pos, c := range sess.Snapshot().Cards {
			if c.Matched {
				delete(seen, pos)
			}
		}
	}
	return result, nil
}

// choose returns a known pair, or one unexplored position and -1.
func (b bot) choose(snap game.Snapshot, seen map[int]int) (int, int) {
	byPair := map[int][]int{}
	for pos, pair := range seen {
		byPair[pair] = append(byPair[pair], pos)
	}
	for _, ps := range byPair {
		if len(ps) == 2 {
			return ps[0], ps[1]
		}
	}
	return b.randomHidden(snap, seen, -1), -1
}

func (b bot) partnerOrRandom(snap game.Snapshot, seen map[int]int, first, pair int) int {
	for pos, p := range seen {
		if p == pair && pos != first && !snap.Cards[pos].Matched {
			return pos
		}
	}
	return b.randomHidden(snap, seen, first)
}

// randomHidden prefers unexplored cards and falls back to any unmatched one.
func (b bot) randomHidden(snap game.Snapshot, seen map[int]int, exclude int) int {
	var fresh, any []int
	for pos, c := range snap.Cards {
		if c.Matched || pos == exclude {
			continue
		}
		any = append(any, pos)
		if _, ok := seen[pos]; !ok {
			fresh = append(fresh, pos)
		}
	}
	if len(fresh) > 0 {
		return fresh[b.rng.IntN(len(fresh))]
	}
	return any[b.rng.IntN(len(any))]
}
