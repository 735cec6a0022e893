package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates run IDs "run-0001", "run-0002", ...
//
// This keeps recorded history deterministic so tests can assert on IDs.
type SequentialIDs struct {
	mu sync.Mutex
	n  int
}

// NewID returns the next ID.
func (g *SequentialIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("run-%04d", g.n)
}
