package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedRunIDGenerator_ReturnsInOrder(t *testing.T) {
	gen := NewFixedRunIDGenerator("run-a", "run-b")

	assert.Equal(t, "run-a", gen.Generate())
	assert.Equal(t, "run-b", gen.Generate())
	assert.Equal(t, "test-run-3", gen.Generate())
}

func TestFixedRunIDGenerator_EmptyUsesDefault(t *testing.T) {
	gen := NewFixedRunIDGenerator()

	assert.Equal(t, "test-run-1", gen.Generate())
	assert.Equal(t, "test-run-2", gen.Generate())
}

func TestFixedRunIDGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedRunIDGenerator()

	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := gen.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000)
}
