// Package seating owns per-screening seat state.  Every code path that
// books, edits, expires or cancels a reservation mutates seats through the
// hold/release operations here, so the no-double-booking invariant has a
// single source of truth.
package seating

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Sentinel errors for seat operations.  Both are recoverable: callers
// re-prompt or re-submit the same selection step.  Handlers translate
// them into 404 and 409 responses respectively.
var (
	ErrSeatNotFound    = errors.New("seat not found")
	ErrSeatUnavailable = errors.New("seat unavailable")
)

// Default auditorium dimensions.  Five rows (A–E) of eight seats give the
// 40-seat grid every screening starts with.
const (
	DefaultRows = 5
	DefaultCols = 8
)

// Seat is one grid cell: a label such as "B7" and an availability flag.
// Seats are created once at grid construction and never destroyed.
type Seat struct {
	Label     string `json:"label"`
	Available bool   `json:"available"`
}

// Grid is the fixed seat layout for one screening.  Labels are unique
// within a grid.  All mutation happens under the grid's own mutex so
// concurrent holds against the same screening cannot race on the
// check-then-set sequence.
type Grid struct {
	mu    sync.Mutex
	rows  int
	cols  int
	seats []*Seat          // row-major display order
	index map[string]*Seat // label → seat, keys upper-case
}

// NewGrid builds a rows×cols grid with labels row letter + column number
// ("A1" through "E8" at the defaults), all seats available.
func NewGrid(rows, cols int) *Grid {
	g := &Grid{
		rows:  rows,
		cols:  cols,
		seats: make([]*Seat, 0, rows*cols),
		index: make(map[string]*Seat, rows*cols),
	}
	for r := 0; r < rows; r++ {
		for c := 1; c <= cols; c++ {
			s := &Seat{Label: fmt.Sprintf("%c%d", 'A'+r, c), Available: true}
			g.seats = append(g.seats, s)
			g.index[s.Label] = s
		}
	}
	return g
}

// Normalize canonicalizes a seat label the way the box office types them:
// trimmed and upper-cased.
func Normalize(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// Hold flips the given seats to unavailable.  It is all-or-nothing: every
// label is validated for existence and availability before any seat is
// mutated, so a failure leaves the grid untouched.  A label repeated in
// the same request counts as unavailable, since the first occurrence
// would take it.
func (g *Grid) Hold(labels []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	seen := make(map[string]struct{}, len(labels))
	for _, raw := range labels {
		label := Normalize(raw)
		seat, ok := g.index[label]
		if !ok {
			return fmt.Errorf("%w: %s", ErrSeatNotFound, label)
		}
		if !seat.Available {
			return fmt.Errorf("%w: %s", ErrSeatUnavailable, label)
		}
		if _, dup := seen[label]; dup {
			return fmt.Errorf("%w: %s", ErrSeatUnavailable, label)
		}
		seen[label] = struct{}{}
	}
	for _, raw := range labels {
		g.index[Normalize(raw)].Available = false
	}
	return nil
}

// Release makes the given seats available again.  It is idempotent:
// unknown labels and seats that are already available are silently
// skipped, so repeated release after a partial failure is always safe.
func (g *Grid) Release(labels []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, raw := range labels {
		if seat, ok := g.index[Normalize(raw)]; ok {
			seat.Available = true
		}
	}
}

// MarkUnavailable flips seats to unavailable without any precondition
// checks.  It is the bulk-import path used when rehydrating grids from
// persisted reservations at startup; unknown labels are skipped.
func (g *Grid) MarkUnavailable(labels []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, raw := range labels {
		if seat, ok := g.index[Normalize(raw)]; ok {
			seat.Available = false
		}
	}
}

// Available returns the labels of all open seats in display order.
func (g *Grid) Available() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.seats))
	for _, s := range g.seats {
		if s.Available {
			out = append(out, s.Label)
		}
	}
	return out
}

// IsAvailable reports whether the labeled seat exists and is open.
func (g *Grid) IsAvailable(label string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	seat, ok := g.index[Normalize(label)]
	return ok && seat.Available
}

// Layout returns a copy of every seat in row-major order, for the public
// seat-map endpoint.
func (g *Grid) Layout() []Seat {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Seat, 0, len(g.seats))
	for _, s := range g.seats {
		out = append(out, *s)
	}
	return out
}

// Rows and Cols expose the grid dimensions.
func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }
