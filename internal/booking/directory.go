package booking

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cinehall/cinema-booking/internal/model"
	"github.com/cinehall/cinema-booking/internal/queue"
	"github.com/cinehall/cinema-booking/internal/seating"
	"github.com/cinehall/cinema-booking/internal/store"
)

// Directory owns the full reservation collection.  A single mutex
// serializes every mutation; reads hand out deep copies so callers can
// never touch shared state.  Expiry is lazy: any operation that enters
// the directory first sweeps stale pending reservations, so an expired
// reservation is observed as EXPIRED no matter which path reaches it
// first.  There is no background timer.
type Directory struct {
	mu           sync.Mutex
	reservations []*model.Reservation
	store        store.BookingStore
	alloc        *seating.Allocator
	publisher    queue.Publisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewDirectory builds a directory backed by the given snapshot store.
func NewDirectory(st store.BookingStore, alloc *seating.Allocator, pub queue.Publisher, logger *zap.Logger) *Directory {
	return &Directory{
		store:     st,
		alloc:     alloc,
		publisher: pub,
		logger:    logger,
		now:       time.Now,
	}
}

// Load pulls the persisted snapshot, re-marks the seats of every live
// reservation as unavailable in their grids, and runs one sweep so that
// reservations which went stale while the service was down come up
// EXPIRED with their seats free.
func (d *Directory) Load(ctx context.Context) error {
	reservations, err := d.store.LoadReservations(ctx)
	if err != nil {
		return fmt.Errorf("load reservations: %w", err)
	}

	var events []queue.AuditEvent
	defer func() { d.flush(ctx, events, nil) }()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.reservations = reservations
	for _, r := range d.reservations {
		if r.Status == model.StatusPending || r.Status == model.StatusPaid {
			d.alloc.MarkUnavailable(r.Key(), r.Seats)
		}
	}
	if swept := d.sweepLocked(&events); swept > 0 {
		d.logger.Info("expired stale reservations on startup", zap.Int("count", swept))
		d.persistLocked(ctx)
	}
	return nil
}

// Sweep expires stale pending reservations and reports how many changed.
func (d *Directory) Sweep(ctx context.Context) int {
	var events []queue.AuditEvent
	defer func() { d.flush(ctx, events, nil) }()

	d.mu.Lock()
	defer d.mu.Unlock()
	swept := d.sweepLocked(&events)
	if swept > 0 {
		d.persistLocked(ctx)
	}
	return swept
}

// Get looks up one reservation by code and passkey.
func (d *Directory) Get(ctx context.Context, code, passkey string) (model.Reservation, error) {
	var events []queue.AuditEvent
	defer func() { d.flush(ctx, events, nil) }()

	d.mu.Lock()
	defer d.mu.Unlock()
	if swept := d.sweepLocked(&events); swept > 0 {
		d.persistLocked(ctx)
	}
	r := d.findLocked(code, passkey)
	if r == nil {
		return model.Reservation{}, ErrNotFound
	}
	return clone(r), nil
}

// GetAny is the admin lookup: code only, no passkey.
func (d *Directory) GetAny(ctx context.Context, code string) (model.Reservation, error) {
	var events []queue.AuditEvent
	defer func() { d.flush(ctx, events, nil) }()

	d.mu.Lock()
	defer d.mu.Unlock()
	if swept := d.sweepLocked(&events); swept > 0 {
		d.persistLocked(ctx)
	}
	r := d.findByCodeLocked(code)
	if r == nil {
		return model.Reservation{}, ErrNotFound
	}
	return clone(r), nil
}

// All returns a copy of every reservation, newest first is not promised;
// the order is insertion order.
func (d *Directory) All(ctx context.Context) []model.Reservation {
	var events []queue.AuditEvent
	defer func() { d.flush(ctx, events, nil) }()

	d.mu.Lock()
	defer d.mu.Unlock()
	if swept := d.sweepLocked(&events); swept > 0 {
		d.persistLocked(ctx)
	}
	out := make([]model.Reservation, 0, len(d.reservations))
	for _, r := range d.reservations {
		out = append(out, clone(r))
	}
	return out
}

// findLocked resolves a code+passkey pair.  The code is compared
// case-insensitively the way customers type it; the passkey must match
// exactly.  Callers must hold d.mu.
func (d *Directory) findLocked(code, passkey string) *model.Reservation {
	r := d.findByCodeLocked(code)
	if r == nil || r.Passkey != passkey {
		return nil
	}
	return r
}

func (d *Directory) findByCodeLocked(code string) *model.Reservation {
	for _, r := range d.reservations {
		if model.CodeEquals(r.Code, code) {
			return r
		}
	}
	return nil
}

// newCodeLocked generates a reservation code, "R-" plus six digits,
// retrying on the rare collision with an existing code.
func (d *Directory) newCodeLocked() string {
	for {
		code := fmt.Sprintf("R-%06d", 100000+rand.Intn(900000))
		if d.findByCodeLocked(code) == nil {
			return code
		}
	}
}

// removeLocked drops a reservation from the collection.
func (d *Directory) removeLocked(target *model.Reservation) {
	for i, r := range d.reservations {
		if r == target {
			d.reservations = append(d.reservations[:i], d.reservations[i+1:]...)
			return
		}
	}
}

// sweepLocked flips every overdue PENDING reservation to EXPIRED and
// releases its seats.  The row itself is kept for audit and reporting.
// Audit events are appended to events for the caller to publish after the
// lock is dropped.
func (d *Directory) sweepLocked(events *[]queue.AuditEvent) int {
	now := d.now()
	swept := 0
	for _, r := range d.reservations {
		if r.Status != model.StatusPending || r.PaymentDeadline.IsZero() || !now.After(r.PaymentDeadline) {
			continue
		}
		r.Status = model.StatusExpired
		r.PaymentDeadline = time.Time{}
		r.UpdatedAt = now
		d.alloc.Release(r.Key(), r.Seats)
		swept++
		*events = append(*events, auditEvent(queue.KindExpired, r, "payment deadline passed", now))
	}
	return swept
}

// persistLocked writes the full snapshot.  Persistence failure is logged
// and swallowed: the in-memory state is authoritative for the process
// lifetime and the next successful save rewrites everything anyway.
func (d *Directory) persistLocked(ctx context.Context) {
	if err := d.store.SaveReservations(ctx, d.reservations); err != nil {
		d.logger.Warn("could not persist reservations", zap.Error(err))
	}
}

// flush publishes collected events once the directory lock is released,
// so a slow broker can never stall reservation traffic.
func (d *Directory) flush(ctx context.Context, events []queue.AuditEvent, refund *queue.RefundEvent) {
	for _, ev := range events {
		_ = d.publisher.PublishAudit(ctx, ev)
	}
	if refund != nil {
		_ = d.publisher.PublishRefund(ctx, *refund)
	}
}

func newEventID() string { return uuid.NewString() }

// auditEvent builds the broker payload for a lifecycle transition.
func auditEvent(kind string, r *model.Reservation, detail string, now time.Time) queue.AuditEvent {
	return queue.AuditEvent{
		EventID:    uuid.NewString(),
		Kind:       kind,
		Code:       r.Code,
		Movie:      r.Movie,
		Showtime:   r.Showtime,
		Seats:      append([]string(nil), r.Seats...),
		Amount:     r.GrandTotal(),
		Method:     r.PaymentMethod,
		Reference:  r.PaymentReference,
		Detail:     detail,
		OccurredAt: now.UTC().Format(time.RFC3339),
	}
}

// clone deep-copies a reservation so callers can never mutate directory
// state through a returned value.
func clone(r *model.Reservation) model.Reservation {
	c := *r
	c.Seats = append([]string(nil), r.Seats...)
	if r.Concessions != nil {
		c.Concessions = make(map[string]int, len(r.Concessions))
		for name, qty := range r.Concessions {
			c.Concessions[name] = qty
		}
	}
	return c
}
