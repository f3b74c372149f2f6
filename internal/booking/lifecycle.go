package booking

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cinehall/cinema-booking/internal/inventory"
	"github.com/cinehall/cinema-booking/internal/model"
	"github.com/cinehall/cinema-booking/internal/payment"
	"github.com/cinehall/cinema-booking/internal/program"
	"github.com/cinehall/cinema-booking/internal/queue"
	"github.com/cinehall/cinema-booking/internal/seating"
)

const (
	// PaymentWindow is how long a pending reservation holds its seats
	// before the lazy sweep expires it.
	PaymentWindow = 15 * time.Minute

	// MaxTickets caps one reservation at five seats.
	MaxTickets = 5
)

// Lifecycle drives reservations through their states.  Every operation
// runs under the directory's lock, so transitions and their side effects
// (seat holds, stock debits) are atomic with respect to each other.
type Lifecycle struct {
	dir       *Directory
	alloc     *seating.Allocator
	ledger    *inventory.Ledger
	schedule  *program.Program
	till      payment.Processor
	publisher queue.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewLifecycle wires the reservation core together.
func NewLifecycle(
	dir *Directory,
	alloc *seating.Allocator,
	ledger *inventory.Ledger,
	schedule *program.Program,
	till payment.Processor,
	pub queue.Publisher,
	logger *zap.Logger,
) *Lifecycle {
	return &Lifecycle{
		dir:       dir,
		alloc:     alloc,
		ledger:    ledger,
		schedule:  schedule,
		till:      till,
		publisher: pub,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateRequest carries everything needed to open a reservation.
type CreateRequest struct {
	Movie       string         `json:"movie"`
	Showtime    string         `json:"showtime"`
	Quantity    int            `json:"quantity"`
	Seats       []string       `json:"seats"`
	Passkey     string         `json:"passkey"`
	Concessions map[string]int `json:"concessions,omitempty"`
}

// Create opens a PENDING reservation: seats are held immediately,
// all-or-nothing, and the payment deadline starts ticking.  Concessions
// are priced but stock is not touched until payment.
func (lc *Lifecycle) Create(ctx context.Context, req CreateRequest) (model.Reservation, error) {
	if strings.TrimSpace(req.Passkey) == "" {
		return model.Reservation{}, ErrPasskeyRequired
	}
	if req.Quantity < 1 || req.Quantity > MaxTickets {
		return model.Reservation{}, ErrQuantityRange
	}
	key, price, err := lc.schedule.Resolve(req.Movie, req.Showtime)
	if err != nil {
		return model.Reservation{}, err
	}
	var concessionTotal float64
	if len(req.Concessions) > 0 {
		concessionTotal, err = lc.ledger.PriceOrder(req.Concessions)
		if err != nil {
			return model.Reservation{}, err
		}
	}

	var events []queue.AuditEvent
	defer func() { lc.dir.flush(ctx, events, nil) }()

	lc.dir.mu.Lock()
	defer lc.dir.mu.Unlock()
	if swept := lc.dir.sweepLocked(&events); swept > 0 {
		lc.dir.persistLocked(ctx)
	}

	seats, err := lc.alloc.Grid(key).Select(req.Quantity, seating.ListPicker(req.Seats))
	if err != nil {
		return model.Reservation{}, err
	}

	now := lc.now()
	r := &model.Reservation{
		Code:            lc.dir.newCodeLocked(),
		Movie:           key.Movie,
		Showtime:        key.Showtime,
		Price:           price,
		Quantity:        req.Quantity,
		Seats:           seats,
		Passkey:         req.Passkey,
		Concessions:     req.Concessions,
		ConcessionTotal: concessionTotal,
		Status:          model.StatusPending,
		PaymentDeadline: now.Add(PaymentWindow),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	lc.dir.reservations = append(lc.dir.reservations, r)
	lc.dir.persistLocked(ctx)

	lc.logger.Info("reservation created",
		zap.String("reservation_id", r.Code),
		zap.String("show", r.Key().String()),
		zap.Strings("seats", r.Seats),
	)
	events = append(events, auditEvent(queue.KindCreated, r, "", now))
	return clone(r), nil
}

// Pay settles a pending reservation.  A declined payment leaves it
// PENDING with the deadline intact; a successful one records the receipt
// fields and debits concession stock exactly once.
func (lc *Lifecycle) Pay(ctx context.Context, code, passkey string, req payment.Request) (model.Reservation, model.PaymentResult, error) {
	var events []queue.AuditEvent
	defer func() { lc.dir.flush(ctx, events, nil) }()

	lc.dir.mu.Lock()
	defer lc.dir.mu.Unlock()
	if swept := lc.dir.sweepLocked(&events); swept > 0 {
		lc.dir.persistLocked(ctx)
	}

	r := lc.dir.findLocked(code, passkey)
	if r == nil {
		return model.Reservation{}, model.PaymentResult{}, ErrNotFound
	}
	if r.Status != model.StatusPending {
		return model.Reservation{}, model.PaymentResult{}, fmt.Errorf("%w: reservation is %s", ErrInvalidTransition, r.Status)
	}

	result, err := lc.till.Process(r.GrandTotal(), req)
	if err != nil {
		return model.Reservation{}, model.PaymentResult{}, err
	}
	if !result.Success {
		return clone(r), result, nil
	}

	// The pending check above is also the double-debit guard: stock moves
	// only on the one PENDING→PAID transition.
	r.Status = model.StatusPaid
	r.PaymentMethod = result.Method
	r.PaymentReference = result.Reference
	r.AmountPaid = result.AmountPaid
	r.PaymentDeadline = time.Time{}
	r.UpdatedAt = lc.now()

	if r.HasConcessions() {
		lc.ledger.Debit(r.Concessions)
		lc.saveCatalog(ctx)
	}
	lc.dir.persistLocked(ctx)

	lc.logger.Info("reservation paid",
		zap.String("reservation_id", r.Code),
		zap.String("method", result.Method),
		zap.Float64("amount", result.AmountPaid),
	)
	events = append(events, auditEvent(queue.KindPaid, r, "", r.UpdatedAt))
	return clone(r), result, nil
}

// Cancel removes a reservation entirely.  Held seats go back to the pool,
// and cancelling a paid reservation also restores concession stock and
// emits a refund notice for staff to process manually.
func (lc *Lifecycle) Cancel(ctx context.Context, code, passkey string) (model.Reservation, error) {
	var events []queue.AuditEvent
	var refund *queue.RefundEvent
	defer func() { lc.dir.flush(ctx, events, refund) }()

	lc.dir.mu.Lock()
	defer lc.dir.mu.Unlock()
	if swept := lc.dir.sweepLocked(&events); swept > 0 {
		lc.dir.persistLocked(ctx)
	}

	r := lc.dir.findLocked(code, passkey)
	if r == nil {
		return model.Reservation{}, ErrNotFound
	}

	// Expired reservations released their seats at sweep time; releasing
	// again could free a seat someone else has since taken.
	if r.Status != model.StatusExpired {
		lc.alloc.Release(r.Key(), r.Seats)
	}
	now := lc.now()
	if r.Status == model.StatusPaid {
		if r.HasConcessions() {
			lc.ledger.Credit(r.Concessions)
			lc.saveCatalog(ctx)
		}
		refund = &queue.RefundEvent{
			EventID:     newEventID(),
			Code:        r.Code,
			Amount:      r.GrandTotal(),
			Method:      r.PaymentMethod,
			Reference:   r.PaymentReference,
			RequestedAt: now.UTC().Format(time.RFC3339),
		}
		lc.logger.Info("refund requested",
			zap.String("reservation_id", r.Code),
			zap.Float64("amount", r.GrandTotal()),
		)
	}

	lc.dir.removeLocked(r)
	lc.dir.persistLocked(ctx)

	lc.logger.Info("reservation cancelled", zap.String("reservation_id", r.Code))
	events = append(events, auditEvent(queue.KindCancelled, r, "", now))
	return clone(r), nil
}

// EditShow moves a pending reservation to a different screening.  Seats
// on the new grid are selected first, all-or-nothing; only then are the
// old seats released, so a failed move leaves the original holding
// intact.  Moving within the same screening behaves like EditSeats.
func (lc *Lifecycle) EditShow(ctx context.Context, code, passkey, movie, showtime string, seats []string) (model.Reservation, error) {
	newKey, price, err := lc.schedule.Resolve(movie, showtime)
	if err != nil {
		return model.Reservation{}, err
	}

	var events []queue.AuditEvent
	defer func() { lc.dir.flush(ctx, events, nil) }()

	lc.dir.mu.Lock()
	defer lc.dir.mu.Unlock()
	if swept := lc.dir.sweepLocked(&events); swept > 0 {
		lc.dir.persistLocked(ctx)
	}

	r := lc.dir.findLocked(code, passkey)
	if r == nil {
		return model.Reservation{}, ErrNotFound
	}
	if err := requirePending(r); err != nil {
		return model.Reservation{}, err
	}

	oldKey := r.Key()
	var newSeats []string
	if newKey == oldKey {
		newSeats, err = lc.alloc.Grid(oldKey).Reselect(r.Seats, r.Quantity, seating.ListPicker(seats))
	} else {
		newSeats, err = lc.alloc.Grid(newKey).Select(r.Quantity, seating.ListPicker(seats))
	}
	if err != nil {
		return model.Reservation{}, err
	}
	if newKey != oldKey {
		lc.alloc.Release(oldKey, r.Seats)
	}

	r.Movie = newKey.Movie
	r.Showtime = newKey.Showtime
	r.Price = price
	r.Seats = newSeats
	r.UpdatedAt = lc.now()
	lc.dir.persistLocked(ctx)
	return clone(r), nil
}

// EditSeats swaps the seats of a pending reservation within its
// screening.  Re-chosen seats are kept; the rest are exchanged
// atomically, and on failure the original holding is untouched.
func (lc *Lifecycle) EditSeats(ctx context.Context, code, passkey string, seats []string) (model.Reservation, error) {
	var events []queue.AuditEvent
	defer func() { lc.dir.flush(ctx, events, nil) }()

	lc.dir.mu.Lock()
	defer lc.dir.mu.Unlock()
	if swept := lc.dir.sweepLocked(&events); swept > 0 {
		lc.dir.persistLocked(ctx)
	}

	r := lc.dir.findLocked(code, passkey)
	if r == nil {
		return model.Reservation{}, ErrNotFound
	}
	if err := requirePending(r); err != nil {
		return model.Reservation{}, err
	}

	newSeats, err := lc.alloc.Grid(r.Key()).Reselect(r.Seats, r.Quantity, seating.ListPicker(seats))
	if err != nil {
		return model.Reservation{}, err
	}
	r.Seats = newSeats
	r.UpdatedAt = lc.now()
	lc.dir.persistLocked(ctx)
	return clone(r), nil
}

// EditQuantity grows or shrinks a pending reservation.  Growing holds the
// additional seats all-or-nothing; shrinking releases exactly the named
// seats, each of which must currently belong to the reservation.
func (lc *Lifecycle) EditQuantity(ctx context.Context, code, passkey string, quantity int, add, drop []string) (model.Reservation, error) {
	if quantity < 1 || quantity > MaxTickets {
		return model.Reservation{}, ErrQuantityRange
	}

	var events []queue.AuditEvent
	defer func() { lc.dir.flush(ctx, events, nil) }()

	lc.dir.mu.Lock()
	defer lc.dir.mu.Unlock()
	if swept := lc.dir.sweepLocked(&events); swept > 0 {
		lc.dir.persistLocked(ctx)
	}

	r := lc.dir.findLocked(code, passkey)
	if r == nil {
		return model.Reservation{}, ErrNotFound
	}
	if err := requirePending(r); err != nil {
		return model.Reservation{}, err
	}

	diff := quantity - r.Quantity
	switch {
	case diff == 0:
		return clone(r), nil
	case diff > 0:
		extra, err := lc.alloc.Grid(r.Key()).Select(diff, seating.ListPicker(add))
		if err != nil {
			return model.Reservation{}, err
		}
		r.Seats = append(r.Seats, extra...)
	default:
		released, err := seatsToRelease(r.Seats, drop, -diff)
		if err != nil {
			return model.Reservation{}, err
		}
		lc.alloc.Release(r.Key(), released)
		r.Seats = removeSeats(r.Seats, released)
	}

	r.Quantity = quantity
	r.UpdatedAt = lc.now()
	lc.dir.persistLocked(ctx)
	return clone(r), nil
}

// EditConcessions replaces the concession order.  On a pending
// reservation only the totals move; on a paid one the old order's stock
// is restored and the new order's stock debited, so the ledger always
// reflects exactly one sale per paid reservation.
func (lc *Lifecycle) EditConcessions(ctx context.Context, code, passkey string, order map[string]int) (model.Reservation, error) {
	var events []queue.AuditEvent
	defer func() { lc.dir.flush(ctx, events, nil) }()

	lc.dir.mu.Lock()
	defer lc.dir.mu.Unlock()
	if swept := lc.dir.sweepLocked(&events); swept > 0 {
		lc.dir.persistLocked(ctx)
	}

	r := lc.dir.findLocked(code, passkey)
	if r == nil {
		return model.Reservation{}, ErrNotFound
	}
	if r.Status == model.StatusExpired {
		return model.Reservation{}, fmt.Errorf("%w: reservation is %s", ErrInvalidTransition, r.Status)
	}

	paid := r.Status == model.StatusPaid
	if paid && r.HasConcessions() {
		lc.ledger.Credit(r.Concessions)
	}

	var total float64
	var err error
	if len(order) > 0 {
		total, err = lc.ledger.PriceOrder(order)
		if err != nil {
			if paid && r.HasConcessions() {
				lc.ledger.Debit(r.Concessions) // put the old sale back
			}
			return model.Reservation{}, err
		}
	}

	r.Concessions = order
	r.ConcessionTotal = total
	r.UpdatedAt = lc.now()
	if paid {
		if r.HasConcessions() {
			lc.ledger.Debit(order)
		}
		lc.saveCatalog(ctx)
	}
	lc.dir.persistLocked(ctx)
	return clone(r), nil
}

// SetStatus is the admin override.  Forcing PAID settles the bill with an
// admin reference and debits stock; forcing PENDING reopens the payment
// window and, if the reservation was paid, restores the stock that
// payment debited; forcing EXPIRED releases the seats.
func (lc *Lifecycle) SetStatus(ctx context.Context, code string, status model.PaymentStatus) (model.Reservation, error) {
	var events []queue.AuditEvent
	defer func() { lc.dir.flush(ctx, events, nil) }()

	lc.dir.mu.Lock()
	defer lc.dir.mu.Unlock()
	if swept := lc.dir.sweepLocked(&events); swept > 0 {
		lc.dir.persistLocked(ctx)
	}

	r := lc.dir.findByCodeLocked(code)
	if r == nil {
		return model.Reservation{}, ErrNotFound
	}

	now := lc.now()
	switch status {
	case model.StatusPaid:
		if r.Status == model.StatusPaid {
			return model.Reservation{}, fmt.Errorf("%w: already paid", ErrInvalidTransition)
		}
		if r.Status == model.StatusExpired {
			// The sweep released these seats; they must be re-secured
			// before the reservation can come back to life.
			if err := lc.alloc.Hold(r.Key(), r.Seats); err != nil {
				return model.Reservation{}, err
			}
		}
		r.Status = model.StatusPaid
		if r.PaymentMethod == "" {
			r.PaymentMethod = "Admin Override"
		}
		if r.PaymentReference == "" {
			r.PaymentReference = fmt.Sprintf("ADMIN-%06d", 100000+rand.Intn(900000))
		}
		r.AmountPaid = r.GrandTotal()
		r.PaymentDeadline = time.Time{}
		if r.HasConcessions() {
			lc.ledger.Debit(r.Concessions)
			lc.saveCatalog(ctx)
		}

	case model.StatusPending:
		if r.Status == model.StatusPaid && r.HasConcessions() {
			lc.ledger.Credit(r.Concessions)
			lc.saveCatalog(ctx)
		}
		if r.Status == model.StatusExpired {
			if err := lc.alloc.Hold(r.Key(), r.Seats); err != nil {
				return model.Reservation{}, err
			}
		}
		r.Status = model.StatusPending
		r.PaymentMethod = ""
		r.PaymentReference = ""
		r.AmountPaid = 0
		r.PaymentDeadline = now.Add(PaymentWindow)

	case model.StatusExpired:
		if r.Status != model.StatusExpired {
			lc.alloc.Release(r.Key(), r.Seats)
		}
		r.Status = model.StatusExpired
		r.PaymentDeadline = time.Time{}

	default:
		return model.Reservation{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	r.UpdatedAt = now
	lc.dir.persistLocked(ctx)

	lc.logger.Info("admin status override",
		zap.String("reservation_id", r.Code),
		zap.String("status", string(status)),
	)
	events = append(events, auditEvent(queue.KindAdminOverride, r, "status forced to "+string(status), now))
	return clone(r), nil
}

// ApplyDiscount grants an admin discount, clamped to the base total so
// the bill can never go negative.
func (lc *Lifecycle) ApplyDiscount(ctx context.Context, code string, discount float64) (model.Reservation, error) {
	if discount < 0 {
		return model.Reservation{}, fmt.Errorf("discount must not be negative")
	}

	var events []queue.AuditEvent
	defer func() { lc.dir.flush(ctx, events, nil) }()

	lc.dir.mu.Lock()
	defer lc.dir.mu.Unlock()
	r := lc.dir.findByCodeLocked(code)
	if r == nil {
		return model.Reservation{}, ErrNotFound
	}

	baseTotal := r.TicketTotal() + r.ConcessionTotal
	if discount > baseTotal {
		discount = baseTotal
	}
	r.Discount = discount
	r.UpdatedAt = lc.now()
	lc.dir.persistLocked(ctx)

	events = append(events, auditEvent(queue.KindAdminOverride, r,
		fmt.Sprintf("discount set to %.2f", discount), r.UpdatedAt))
	return clone(r), nil
}

// SetNote attaches a free-text admin note.
func (lc *Lifecycle) SetNote(ctx context.Context, code, note string) (model.Reservation, error) {
	lc.dir.mu.Lock()
	defer lc.dir.mu.Unlock()
	r := lc.dir.findByCodeLocked(code)
	if r == nil {
		return model.Reservation{}, ErrNotFound
	}
	r.Note = note
	r.UpdatedAt = lc.now()
	lc.dir.persistLocked(ctx)
	return clone(r), nil
}

// saveCatalog persists the concession catalog after a stock movement.
// Like reservation persistence, a failed save is logged and swallowed.
func (lc *Lifecycle) saveCatalog(ctx context.Context) {
	if err := lc.ledger.Save(ctx); err != nil {
		lc.logger.Warn("could not persist concession catalog", zap.Error(err))
	}
}

// requirePending gates the customer edit paths: paid reservations can
// only be cancelled and expired ones are read-only.
func requirePending(r *model.Reservation) error {
	if r.Status != model.StatusPending {
		return fmt.Errorf("%w: reservation is %s", ErrInvalidTransition, r.Status)
	}
	return nil
}

// seatsToRelease validates a quantity decrease: exactly count distinct
// seats, each currently held by the reservation.
func seatsToRelease(held, drop []string, count int) ([]string, error) {
	out := make([]string, 0, count)
	for _, raw := range drop {
		label := seating.Normalize(raw)
		if !containsLabel(held, label) {
			return nil, fmt.Errorf("%w: %s", ErrSeatNotHeld, label)
		}
		if containsLabel(out, label) {
			continue
		}
		out = append(out, label)
	}
	if len(out) != count {
		return nil, fmt.Errorf("need exactly %d seat(s) to release, got %d", count, len(out))
	}
	return out, nil
}

func removeSeats(held, released []string) []string {
	out := make([]string, 0, len(held)-len(released))
	for _, s := range held {
		if !containsLabel(released, s) {
			out = append(out, s)
		}
	}
	return out
}

func containsLabel(list []string, label string) bool {
	for _, l := range list {
		if l == label {
			return true
		}
	}
	return false
}
