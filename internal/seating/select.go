package seating

import (
	"errors"
	"fmt"
)

// ErrPicksExhausted is returned by ListPicker when its labels run out
// before the requested quantity is held.  Select surfaces the underlying
// seat error instead when one occurred, so callers see why the last pick
// was rejected rather than a generic exhaustion message.
var ErrPicksExhausted = errors.New("no more seat picks")

// PickFunc supplies one candidate seat label per call during a selection
// loop.  taken lists the labels already secured in this loop and
// remaining is how many are still needed.  An interactive picker prompts
// the user and never fails, so the loop terminates only on success; a
// non-interactive picker returns an error once its supply is exhausted,
// which aborts the loop.
type PickFunc func(taken []string, remaining int) (string, error)

// ListPicker adapts a fixed label list into a PickFunc.  HTTP handlers
// use it to drive the same selection loop an interactive client would:
// each call yields the next submitted label, and running out returns
// ErrPicksExhausted.
func ListPicker(labels []string) PickFunc {
	i := 0
	return func([]string, int) (string, error) {
		if i >= len(labels) {
			return "", ErrPicksExhausted
		}
		l := labels[i]
		i++
		return l, nil
	}
}

// Select acquires quantity seats one at a time.  A pick naming an unknown
// or unavailable seat is rejected without consuming a slot and the picker
// is asked again.  If the picker itself fails, every seat taken so far is
// released and the loop reports the most recent seat rejection (or the
// picker's error when no pick was ever rejected), so a partial selection
// never leaks holds.
func (g *Grid) Select(quantity int, pick PickFunc) ([]string, error) {
	taken := make([]string, 0, quantity)
	var lastSeatErr error
	for len(taken) < quantity {
		raw, err := pick(taken, quantity-len(taken))
		if err != nil {
			g.Release(taken)
			if lastSeatErr != nil {
				return nil, lastSeatErr
			}
			return nil, err
		}
		label := Normalize(raw)
		if err := g.Hold([]string{label}); err != nil {
			lastSeatErr = err
			continue
		}
		taken = append(taken, label)
	}
	return taken, nil
}

// Reselect is Select for seat edits: seats in current are treated as
// available to this caller.  Re-choosing one simply keeps it; seats from
// current that are not re-chosen by the end are released, and newly
// chosen seats are held.  On failure the grid is restored to exactly the
// current holding.
func (g *Grid) Reselect(current []string, quantity int, pick PickFunc) ([]string, error) {
	remaining := make(map[string]struct{}, len(current))
	for _, raw := range current {
		remaining[Normalize(raw)] = struct{}{}
	}

	taken := make([]string, 0, quantity)
	var newlyHeld []string
	var lastSeatErr error

	fail := func(err error) ([]string, error) {
		g.Release(newlyHeld)
		return nil, err
	}

	for len(taken) < quantity {
		raw, err := pick(taken, quantity-len(taken))
		if err != nil {
			if lastSeatErr != nil {
				return fail(lastSeatErr)
			}
			return fail(err)
		}
		label := Normalize(raw)

		if _, own := remaining[label]; own {
			// Keeping a currently held seat: no flip needed, but it can
			// only be claimed once.
			delete(remaining, label)
			taken = append(taken, label)
			continue
		}
		if contains(taken, label) {
			lastSeatErr = fmt.Errorf("%w: %s", ErrSeatUnavailable, label)
			continue
		}
		if err := g.Hold([]string{label}); err != nil {
			lastSeatErr = err
			continue
		}
		newlyHeld = append(newlyHeld, label)
		taken = append(taken, label)
	}

	// Current seats that were not re-chosen go back to the pool.
	dropped := make([]string, 0, len(remaining))
	for label := range remaining {
		dropped = append(dropped, label)
	}
	g.Release(dropped)
	return taken, nil
}

func contains(list []string, label string) bool {
	for _, l := range list {
		if l == label {
			return true
		}
	}
	return false
}
