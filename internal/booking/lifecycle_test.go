package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cinehall/cinema-booking/internal/inventory"
	"github.com/cinehall/cinema-booking/internal/model"
	"github.com/cinehall/cinema-booking/internal/payment"
	"github.com/cinehall/cinema-booking/internal/program"
	"github.com/cinehall/cinema-booking/internal/queue"
	"github.com/cinehall/cinema-booking/internal/seating"
)

// memStore is an in-memory BookingStore for tests.
type memStore struct {
	mu           sync.Mutex
	reservations []*model.Reservation
	saves        int
}

func (m *memStore) LoadReservations(context.Context) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reservations, nil
}

func (m *memStore) SaveReservations(_ context.Context, rs []*model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations = append([]*model.Reservation(nil), rs...)
	m.saves++
	return nil
}

// memCatalog is an in-memory CatalogStore for tests.
type memCatalog struct {
	items []model.ConcessionItem
}

func (m *memCatalog) LoadCatalog(context.Context) ([]model.ConcessionItem, error) {
	return m.items, nil
}

func (m *memCatalog) SaveCatalog(_ context.Context, items []model.ConcessionItem) error {
	m.items = items
	return nil
}

// recPublisher records published events instead of talking to a broker.
type recPublisher struct {
	mu      sync.Mutex
	audits  []queue.AuditEvent
	refunds []queue.RefundEvent
}

func (p *recPublisher) PublishAudit(_ context.Context, ev queue.AuditEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.audits = append(p.audits, ev)
	return nil
}

func (p *recPublisher) PublishRefund(_ context.Context, ev queue.RefundEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refunds = append(p.refunds, ev)
	return nil
}

func (p *recPublisher) auditKinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	kinds := make([]string, len(p.audits))
	for i, ev := range p.audits {
		kinds[i] = ev.Kind
	}
	return kinds
}

// env wires a full reservation core against in-memory collaborators with
// a controllable clock.
type env struct {
	clock  time.Time
	alloc  *seating.Allocator
	ledger *inventory.Ledger
	store  *memStore
	pub    *recPublisher
	dir    *Directory
	lc     *Lifecycle
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		clock: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
		alloc: seating.NewAllocator(seating.DefaultRows, seating.DefaultCols),
		store: &memStore{},
		pub:   &recPublisher{},
	}
	e.ledger = inventory.NewLedger(&memCatalog{}, zap.NewNop())
	require.NoError(t, e.ledger.Load(context.Background()))
	e.dir = NewDirectory(e.store, e.alloc, e.pub, zap.NewNop())
	e.dir.now = func() time.Time { return e.clock }
	e.lc = NewLifecycle(e.dir, e.alloc, e.ledger, program.Default(), payment.NewCounter(), e.pub, zap.NewNop())
	e.lc.now = e.dir.now
	require.NoError(t, e.dir.Load(context.Background()))
	return e
}

func (e *env) advance(d time.Duration) { e.clock = e.clock.Add(d) }

func (e *env) create(t *testing.T, seats ...string) model.Reservation {
	t.Helper()
	r, err := e.lc.Create(context.Background(), CreateRequest{
		Movie:    "Encanto",
		Showtime: "1:00 PM",
		Quantity: len(seats),
		Seats:    seats,
		Passkey:  "secret",
	})
	require.NoError(t, err)
	return r
}

func (e *env) payCash(t *testing.T, r model.Reservation) model.Reservation {
	t.Helper()
	paid, res, err := e.lc.Pay(context.Background(), r.Code, "secret", payment.Request{
		Method: "cash", CashTendered: 10000,
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	return paid
}

func (e *env) stock(t *testing.T, name string) int {
	t.Helper()
	item, ok := e.ledger.Lookup(name)
	require.True(t, ok)
	return item.Stock
}

func TestCreateHoldsSeatsAndStartsDeadline(t *testing.T) {
	e := newEnv(t)

	r := e.create(t, "A1", "A2")
	assert.Regexp(t, `^R-\d{6}$`, r.Code)
	assert.Equal(t, model.StatusPending, r.Status)
	assert.Equal(t, "Encanto", r.Movie)
	assert.Equal(t, 200, r.Price)
	assert.Equal(t, []string{"A1", "A2"}, r.Seats)
	assert.True(t, r.PaymentDeadline.Equal(e.clock.Add(15*time.Minute)))

	grid := e.alloc.Grid(r.Key())
	assert.False(t, grid.IsAvailable("A1"))
	assert.False(t, grid.IsAvailable("A2"))
}

func TestCreateValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.lc.Create(ctx, CreateRequest{Movie: "Encanto", Showtime: "1:00 PM", Quantity: 1, Seats: []string{"A1"}})
	assert.ErrorIs(t, err, ErrPasskeyRequired)

	_, err = e.lc.Create(ctx, CreateRequest{Movie: "Encanto", Showtime: "1:00 PM", Quantity: 6, Passkey: "p"})
	assert.ErrorIs(t, err, ErrQuantityRange)

	_, err = e.lc.Create(ctx, CreateRequest{Movie: "Encanto", Showtime: "9:00 PM", Quantity: 1, Seats: []string{"A1"}, Passkey: "p"})
	assert.ErrorIs(t, err, program.ErrUnknownShow)
}

func TestCreateRejectsTakenSeatsWithoutPartialHold(t *testing.T) {
	e := newEnv(t)
	e.create(t, "B1")

	_, err := e.lc.Create(context.Background(), CreateRequest{
		Movie: "Encanto", Showtime: "1:00 PM", Quantity: 2,
		Seats: []string{"B2", "B1"}, Passkey: "other",
	})
	assert.ErrorIs(t, err, seating.ErrSeatUnavailable)

	// The rejected attempt must not leak its partial hold on B2.
	grid := e.alloc.Grid(model.ShowKey{Movie: "Encanto", Showtime: "1:00 PM"})
	assert.True(t, grid.IsAvailable("B2"))
}

func TestSameSeatIndependentAcrossScreenings(t *testing.T) {
	e := newEnv(t)
	e.create(t, "A1")

	r, err := e.lc.Create(context.Background(), CreateRequest{
		Movie: "Encanto", Showtime: "4:00 PM", Quantity: 1,
		Seats: []string{"A1"}, Passkey: "p2",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, r.Seats)
	assert.Equal(t, 210, r.Price)
}

func TestPaySettlesAndDebitsStockOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	r, err := e.lc.Create(ctx, CreateRequest{
		Movie: "Encanto", Showtime: "1:00 PM", Quantity: 1,
		Seats: []string{"C3"}, Passkey: "secret",
		Concessions: map[string]int{"Popcorn Regular": 2},
	})
	require.NoError(t, err)
	assert.InDelta(t, 170.0, r.ConcessionTotal, 0.001)
	assert.Equal(t, 100, e.stock(t, "Popcorn Regular"), "stock untouched while pending")

	paid := e.payCash(t, r)
	assert.Equal(t, model.StatusPaid, paid.Status)
	assert.Equal(t, "Cash", paid.PaymentMethod)
	assert.InDelta(t, 370.0, paid.AmountPaid, 0.001)
	assert.True(t, paid.PaymentDeadline.IsZero())
	assert.Equal(t, 98, e.stock(t, "Popcorn Regular"))

	// Paying again must not move stock a second time.
	_, _, err = e.lc.Pay(ctx, r.Code, "secret", payment.Request{Method: "cash", CashTendered: 10000})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 98, e.stock(t, "Popcorn Regular"))
}

func TestDeclinedPaymentLeavesReservationPending(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "D4")

	got, res, err := e.lc.Pay(context.Background(), r.Code, "secret", payment.Request{
		Method: "cash", CashTendered: 50,
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.True(t, got.PaymentDeadline.Equal(r.PaymentDeadline), "deadline unchanged")
}

func TestLazyExpiryReleasesSeats(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "E5", "E6")

	e.advance(16 * time.Minute)

	got, err := e.dir.Get(context.Background(), r.Code, "secret")
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, got.Status)
	assert.True(t, got.PaymentDeadline.IsZero())
	assert.Equal(t, []string{"E5", "E6"}, got.Seats, "seat list kept for audit")

	grid := e.alloc.Grid(r.Key())
	assert.True(t, grid.IsAvailable("E5"))
	assert.True(t, grid.IsAvailable("E6"))

	// A second sweep finds nothing left to expire.
	assert.Zero(t, e.dir.Sweep(context.Background()))
}

func TestPayAfterDeadlineIsRejected(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "A5")

	e.advance(16 * time.Minute)

	_, _, err := e.lc.Pay(context.Background(), r.Code, "secret", payment.Request{
		Method: "cash", CashTendered: 10000,
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPayJustBeforeDeadlineSucceeds(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "A6")

	e.advance(15 * time.Minute) // exactly at the deadline, not past it
	paid := e.payCash(t, r)
	assert.Equal(t, model.StatusPaid, paid.Status)
}

func TestCancelPendingFreesSeats(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "B7")

	_, err := e.lc.Cancel(context.Background(), r.Code, "secret")
	require.NoError(t, err)

	assert.True(t, e.alloc.Grid(r.Key()).IsAvailable("B7"))
	_, err = e.dir.Get(context.Background(), r.Code, "secret")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, e.pub.refunds, "no refund for an unpaid reservation")
}

func TestCancelPaidRestoresStockAndRequestsRefund(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	r, err := e.lc.Create(ctx, CreateRequest{
		Movie: "Conjuring V", Showtime: "3:00 PM", Quantity: 1,
		Seats: []string{"A1"}, Passkey: "secret",
		Concessions: map[string]int{"Classic Hotdog": 1},
	})
	require.NoError(t, err)
	paid := e.payCash(t, r)

	_, err = e.lc.Cancel(ctx, r.Code, "secret")
	require.NoError(t, err)

	assert.Equal(t, 100, e.stock(t, "Classic Hotdog"))
	require.Len(t, e.pub.refunds, 1)
	refund := e.pub.refunds[0]
	assert.Equal(t, r.Code, refund.Code)
	assert.InDelta(t, paid.AmountPaid, refund.Amount, 0.001)
	assert.Equal(t, paid.PaymentReference, refund.Reference)
}

func TestCancelExpiredDoesNotFreeSomeoneElsesSeat(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "C1")

	e.advance(16 * time.Minute)
	e.dir.Sweep(context.Background())

	// Another customer takes the released seat.
	other, err := e.lc.Create(context.Background(), CreateRequest{
		Movie: "Encanto", Showtime: "1:00 PM", Quantity: 1,
		Seats: []string{"C1"}, Passkey: "other",
	})
	require.NoError(t, err)

	_, err = e.lc.Cancel(context.Background(), r.Code, "secret")
	require.NoError(t, err)
	assert.False(t, e.alloc.Grid(other.Key()).IsAvailable("C1"), "new holder keeps the seat")
}

func TestLookupAuthorization(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "D1")
	ctx := context.Background()

	_, err := e.dir.Get(ctx, r.Code, "wrong")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.dir.Get(ctx, "R-000000", "secret")
	assert.ErrorIs(t, err, ErrNotFound)

	// Codes match case-insensitively, passkeys exactly.
	got, err := e.dir.Get(ctx, "r-"+r.Code[2:], "secret")
	require.NoError(t, err)
	assert.Equal(t, r.Code, got.Code)
}

func TestEditSeatsSwapKeepsRechosen(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "A1", "A2")

	got, err := e.lc.EditSeats(context.Background(), r.Code, "secret", []string{"A1", "B3"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A1", "B3"}, got.Seats)

	grid := e.alloc.Grid(r.Key())
	assert.False(t, grid.IsAvailable("A1"))
	assert.False(t, grid.IsAvailable("B3"))
	assert.True(t, grid.IsAvailable("A2"), "dropped seat returns to the pool")
}

func TestEditSeatsFailureLeavesHoldingIntact(t *testing.T) {
	e := newEnv(t)
	e.create(t, "A1")
	r := e.create(t, "A2", "A3")

	_, err := e.lc.EditSeats(context.Background(), r.Code, "secret", []string{"A4", "A1"})
	assert.ErrorIs(t, err, seating.ErrSeatUnavailable)

	grid := e.alloc.Grid(r.Key())
	assert.False(t, grid.IsAvailable("A2"))
	assert.False(t, grid.IsAvailable("A3"))
	assert.True(t, grid.IsAvailable("A4"), "failed edit must not keep new holds")
}

func TestEditShowMovesGrids(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "A1", "A2")

	got, err := e.lc.EditShow(context.Background(), r.Code, "secret", "Heneral Luna", "7:30 PM", []string{"C1", "C2"})
	require.NoError(t, err)
	assert.Equal(t, "Heneral Luna", got.Movie)
	assert.Equal(t, 270, got.Price)
	assert.Equal(t, []string{"C1", "C2"}, got.Seats)

	oldGrid := e.alloc.Grid(model.ShowKey{Movie: "Encanto", Showtime: "1:00 PM"})
	assert.True(t, oldGrid.IsAvailable("A1"))
	assert.True(t, oldGrid.IsAvailable("A2"))
	newGrid := e.alloc.Grid(model.ShowKey{Movie: "Heneral Luna", Showtime: "7:30 PM"})
	assert.False(t, newGrid.IsAvailable("C1"))
}

func TestEditShowFailureKeepsOriginalHolding(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "A1")

	_, err := e.lc.Create(context.Background(), CreateRequest{
		Movie: "Heneral Luna", Showtime: "12:30 PM", Quantity: 1,
		Seats: []string{"B1"}, Passkey: "other",
	})
	require.NoError(t, err)

	_, err = e.lc.EditShow(context.Background(), r.Code, "secret", "Heneral Luna", "12:30 PM", []string{"B1"})
	assert.ErrorIs(t, err, seating.ErrSeatUnavailable)

	assert.False(t, e.alloc.Grid(r.Key()).IsAvailable("A1"), "original seat still held")
}

func TestEditQuantityGrowAndShrink(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	r := e.create(t, "A1", "A2")

	got, err := e.lc.EditQuantity(ctx, r.Code, "secret", 4, []string{"A3", "A4"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)
	assert.ElementsMatch(t, []string{"A1", "A2", "A3", "A4"}, got.Seats)

	got, err = e.lc.EditQuantity(ctx, r.Code, "secret", 2, nil, []string{"A1", "A3"})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
	assert.ElementsMatch(t, []string{"A2", "A4"}, got.Seats)

	grid := e.alloc.Grid(r.Key())
	assert.True(t, grid.IsAvailable("A1"))
	assert.True(t, grid.IsAvailable("A3"))
}

func TestEditQuantityShrinkRequiresOwnSeats(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "A1", "A2")

	_, err := e.lc.EditQuantity(context.Background(), r.Code, "secret", 1, nil, []string{"B9"})
	assert.ErrorIs(t, err, ErrSeatNotHeld)

	// Nothing changed; the caller can retry with a held seat.
	got, err := e.dir.Get(context.Background(), r.Code, "secret")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
}

func TestPaidReservationRejectsEdits(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "A1")
	e.payCash(t, r)
	ctx := context.Background()

	_, err := e.lc.EditSeats(ctx, r.Code, "secret", []string{"A2"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = e.lc.EditQuantity(ctx, r.Code, "secret", 2, []string{"A2"}, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = e.lc.EditShow(ctx, r.Code, "secret", "Encanto", "4:00 PM", []string{"A1"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEditConcessionsOnPaidSwapsStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	r, err := e.lc.Create(ctx, CreateRequest{
		Movie: "Encanto", Showtime: "1:00 PM", Quantity: 1,
		Seats: []string{"A1"}, Passkey: "secret",
		Concessions: map[string]int{"Popcorn Regular": 2},
	})
	require.NoError(t, err)
	e.payCash(t, r)
	require.Equal(t, 98, e.stock(t, "Popcorn Regular"))

	got, err := e.lc.EditConcessions(ctx, r.Code, "secret", map[string]int{"Regular Soda": 3})
	require.NoError(t, err)
	assert.InDelta(t, 135.0, got.ConcessionTotal, 0.001)

	assert.Equal(t, 100, e.stock(t, "Popcorn Regular"), "old order restored")
	assert.Equal(t, 97, e.stock(t, "Regular Soda"), "new order debited")
}

func TestEditConcessionsInvalidOrderRestoresOldSale(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	r, err := e.lc.Create(ctx, CreateRequest{
		Movie: "Encanto", Showtime: "1:00 PM", Quantity: 1,
		Seats: []string{"A1"}, Passkey: "secret",
		Concessions: map[string]int{"Popcorn Regular": 2},
	})
	require.NoError(t, err)
	e.payCash(t, r)

	_, err = e.lc.EditConcessions(ctx, r.Code, "secret", map[string]int{"Nachos": 1})
	assert.ErrorIs(t, err, inventory.ErrItemNotFound)
	assert.Equal(t, 98, e.stock(t, "Popcorn Regular"), "failed swap leaves the old sale in place")
}

func TestAdminForcePaid(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	r, err := e.lc.Create(ctx, CreateRequest{
		Movie: "Encanto", Showtime: "1:00 PM", Quantity: 1,
		Seats: []string{"A1"}, Passkey: "secret",
		Concessions: map[string]int{"Iced Tea": 1},
	})
	require.NoError(t, err)

	got, err := e.lc.SetStatus(ctx, r.Code, model.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, got.Status)
	assert.Equal(t, "Admin Override", got.PaymentMethod)
	assert.Regexp(t, `^ADMIN-\d{6}$`, got.PaymentReference)
	assert.InDelta(t, got.GrandTotal(), got.AmountPaid, 0.001)
	assert.Equal(t, 99, e.stock(t, "Iced Tea"))

	_, err = e.lc.SetStatus(ctx, r.Code, model.StatusPaid)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 99, e.stock(t, "Iced Tea"), "second override must not debit again")
}

func TestAdminForcePendingReopensWindowAndRestoresStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	r, err := e.lc.Create(ctx, CreateRequest{
		Movie: "Encanto", Showtime: "1:00 PM", Quantity: 1,
		Seats: []string{"A1"}, Passkey: "secret",
		Concessions: map[string]int{"Iced Tea": 1},
	})
	require.NoError(t, err)
	e.payCash(t, r)
	require.Equal(t, 99, e.stock(t, "Iced Tea"))

	got, err := e.lc.SetStatus(ctx, r.Code, model.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Empty(t, got.PaymentMethod)
	assert.Zero(t, got.AmountPaid)
	assert.True(t, got.PaymentDeadline.Equal(e.clock.Add(15*time.Minute)))
	assert.Equal(t, 100, e.stock(t, "Iced Tea"), "un-paying returns the sale")

	// Paying again debits exactly once more.
	e.payCash(t, got)
	assert.Equal(t, 99, e.stock(t, "Iced Tea"))
}

func TestAdminForceExpiredReleasesSeats(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "A1", "A2")

	got, err := e.lc.SetStatus(context.Background(), r.Code, model.StatusExpired)
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, got.Status)

	grid := e.alloc.Grid(r.Key())
	assert.True(t, grid.IsAvailable("A1"))
	assert.True(t, grid.IsAvailable("A2"))
}

func TestAdminReviveExpiredReholdsSeats(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "A1")

	e.advance(16 * time.Minute)
	e.dir.Sweep(context.Background())

	got, err := e.lc.SetStatus(context.Background(), r.Code, model.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.False(t, e.alloc.Grid(r.Key()).IsAvailable("A1"), "revived reservation holds its seats again")
}

func TestAdminReviveFailsWhenSeatRetaken(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "A1")

	e.advance(16 * time.Minute)
	e.dir.Sweep(context.Background())

	_, err := e.lc.Create(context.Background(), CreateRequest{
		Movie: "Encanto", Showtime: "1:00 PM", Quantity: 1,
		Seats: []string{"A1"}, Passkey: "other",
	})
	require.NoError(t, err)

	_, err = e.lc.SetStatus(context.Background(), r.Code, model.StatusPending)
	assert.ErrorIs(t, err, seating.ErrSeatUnavailable)
}

func TestDiscountClampedToBaseTotal(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "A1") // 200 pesos of tickets

	got, err := e.lc.ApplyDiscount(context.Background(), r.Code, 50)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, got.Discount, 0.001)
	assert.InDelta(t, 150.0, got.GrandTotal(), 0.001)

	got, err = e.lc.ApplyDiscount(context.Background(), r.Code, 9999)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, got.Discount, 0.001, "discount clamps to the base total")
	assert.Zero(t, got.GrandTotal())

	_, err = e.lc.ApplyDiscount(context.Background(), r.Code, -1)
	assert.Error(t, err)
}

func TestSetNote(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "A1")

	got, err := e.lc.SetNote(context.Background(), r.Code, "walk-in group, waive late fee")
	require.NoError(t, err)
	assert.Equal(t, "walk-in group, waive late fee", got.Note)
}

func TestLifecycleEventsPublished(t *testing.T) {
	e := newEnv(t)
	r := e.create(t, "A1")
	e.payCash(t, r)
	_, err := e.lc.Cancel(context.Background(), r.Code, "secret")
	require.NoError(t, err)

	assert.Equal(t, []string{queue.KindCreated, queue.KindPaid, queue.KindCancelled}, e.pub.auditKinds())
}
