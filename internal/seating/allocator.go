package seating

import (
	"sync"

	"github.com/cinehall/cinema-booking/internal/model"
)

// Allocator owns one Grid per screening key.  Grids are created lazily
// the first time a (movie, showtime) pair is referenced and live for the
// process lifetime; a grid is never removed.  The allocator's own lock
// only guards the map — each grid serializes its own mutations.
type Allocator struct {
	mu    sync.RWMutex
	grids map[model.ShowKey]*Grid
	rows  int
	cols  int
}

// NewAllocator builds an allocator whose grids have the given dimensions.
func NewAllocator(rows, cols int) *Allocator {
	return &Allocator{
		grids: make(map[model.ShowKey]*Grid),
		rows:  rows,
		cols:  cols,
	}
}

// Grid returns the grid for a screening, creating it on first use.
func (a *Allocator) Grid(key model.ShowKey) *Grid {
	a.mu.RLock()
	g, ok := a.grids[key]
	a.mu.RUnlock()
	if ok {
		return g
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if g, ok = a.grids[key]; ok {
		return g
	}
	g = NewGrid(a.rows, a.cols)
	a.grids[key] = g
	return g
}

// Hold reserves seats in the screening's grid, all-or-nothing.
func (a *Allocator) Hold(key model.ShowKey, labels []string) error {
	return a.Grid(key).Hold(labels)
}

// Release frees seats in the screening's grid.  Idempotent.
func (a *Allocator) Release(key model.ShowKey, labels []string) {
	a.Grid(key).Release(labels)
}

// MarkUnavailable bulk-imports held seats when rehydrating persisted
// reservations.
func (a *Allocator) MarkUnavailable(key model.ShowKey, labels []string) {
	a.Grid(key).MarkUnavailable(labels)
}
