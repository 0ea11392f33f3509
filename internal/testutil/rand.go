package testutil

import (
	"fmt"
	"sync"
)

// FixedRand replays scripted draws for code that takes a randomness source
// with an IntN(n) int method.
//
// Each draw returns the next scripted value reduced modulo n. Once the
// script runs out, the last value repeats; an empty script always yields 0.
//
// Thread-safety: FixedRand is safe for concurrent use via internal mutex.
type FixedRand struct {
	mu     sync.Mutex
	values []int
	idx    int
	draws  int
}

// NewFixedRand creates a source replaying values in order.
func NewFixedRand(values ...int) *FixedRand {
	return &FixedRand{values: values}
}

// IntN returns the next scripted value in [0, n).
// Panics if n <= 0, matching math/rand/v2.
func (r *FixedRand) IntN(n int) int {
	if n <= 0 {
		panic("FixedRand: invalid argument to IntN")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draws++
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[len(r.values)-1]
	if r.idx < len(r.values) {
		v = r.values[r.idx]
		r.idx++
	}
	if v < 0 {
		v = -v
	}
	return v % n
}

// Draws returns how many values have been drawn.
func (r *FixedRand) Draws() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draws
}

// SequentialIDs generates "prefix-1", "prefix-2", ... for tests that need
// readable, predictable identifiers.
//
// Thread-safety: SequentialIDs is safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator. An empty prefix uses "id".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "id"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next identifier.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
