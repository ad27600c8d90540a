package testutil

import (
	"fmt"
	"sync"
)

// FixedRunIDGenerator returns predetermined run ids in order, then falls back
// to "test-run-N" once the list is exhausted.
//
// This keeps recorded history byte-identical across test runs, so it can be
// compared against golden files.
//
// Thread-safety: FixedRunIDGenerator is safe for concurrent use.
type FixedRunIDGenerator struct {
	mu  sync.Mutex
	ids []string
	n   int
}

// NewFixedRunIDGenerator creates a generator that returns ids in order.
//
//	gen := NewFixedRunIDGenerator("run-a")
//	gen.Generate() // "run-a"
//	gen.Generate() // "test-run-2"
func NewFixedRunIDGenerator(ids ...string) *FixedRunIDGenerator {
	return &FixedRunIDGenerator{ids: ids}
}

// Generate returns the next run id.
func (g *FixedRunIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.n++
	if g.n <= len(g.ids) {
		return g.ids[g.n-1]
	}
	return fmt.Sprintf("test-run-%d", g.n)
}
