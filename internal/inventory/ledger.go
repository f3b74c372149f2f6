// Package inventory tracks concession stock.  Debits and credits mirror
// reservation payment state: stock is debited exactly once when a
// reservation is paid and credited back when a paid reservation is
// cancelled or its order is swapped.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cinehall/cinema-booking/internal/model"
	"github.com/cinehall/cinema-booking/internal/store"
)

// ErrItemNotFound is returned by the pricing and admin paths when an item
// name is not in the catalog.  The ledger's debit/credit paths never
// return it — unknown names there are a documented no-op.
var ErrItemNotFound = errors.New("concession item not found")

// Ledger is the in-memory concession catalog with stock counts.  It is an
// explicitly owned instance handed to the booking lifecycle; there is no
// ambient global.  All access goes through the ledger's mutex so debit
// and credit are linearizable per item.
type Ledger struct {
	mu     sync.Mutex
	items  []model.ConcessionItem
	store  store.CatalogStore
	logger *zap.Logger
}

// NewLedger builds a ledger backed by the given catalog store.
func NewLedger(catalog store.CatalogStore, logger *zap.Logger) *Ledger {
	return &Ledger{store: catalog, logger: logger}
}

// Load pulls the catalog snapshot from storage.  Empty storage seeds the
// default 14-item catalog and writes it back, matching how the desk
// system auto-created inventory.json on first run.
func (l *Ledger) Load(ctx context.Context) error {
	items, err := l.store.LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(items) == 0 {
		items = model.DefaultCatalog()
		if err := l.store.SaveCatalog(ctx, items); err != nil {
			l.logger.Warn("could not seed default catalog", zap.Error(err))
		}
	}
	l.items = items
	return nil
}

// Save writes the full catalog snapshot back to storage.
func (l *Ledger) Save(ctx context.Context) error {
	l.mu.Lock()
	snapshot := make([]model.ConcessionItem, len(l.items))
	copy(snapshot, l.items)
	l.mu.Unlock()
	return l.store.SaveCatalog(ctx, snapshot)
}

// find returns a pointer into the catalog; callers must hold l.mu.
func (l *Ledger) find(name string) *model.ConcessionItem {
	for i := range l.items {
		if model.NameEquals(l.items[i].Name, name) {
			return &l.items[i]
		}
	}
	return nil
}

// Debit records a sale: stock drops by qty (clamped at zero) and the
// cumulative sold count rises.  Unknown items are silently skipped and a
// negative result is clamped rather than raised — oversell is prevented
// upstream by the stock-aware order validation, not by the ledger.
func (l *Ledger) Debit(order map[string]int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for name, qty := range order {
		item := l.find(name)
		if item == nil || qty <= 0 {
			continue
		}
		item.Stock -= qty
		if item.Stock < 0 {
			item.Stock = 0
		}
		item.TotalSold += qty
	}
}

// Credit reverses a prior debit: stock is restored and the sold count
// reduced (clamped at zero).  Used on refunds and paid-order swaps.
func (l *Ledger) Credit(order map[string]int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for name, qty := range order {
		item := l.find(name)
		if item == nil || qty <= 0 {
			continue
		}
		item.Stock += qty
		item.TotalSold -= qty
		if item.TotalSold < 0 {
			item.TotalSold = 0
		}
	}
}

// Lookup returns a copy of the named item.
func (l *Ledger) Lookup(name string) (model.ConcessionItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if item := l.find(name); item != nil {
		return *item, true
	}
	return model.ConcessionItem{}, false
}

// Items returns a copy of the whole catalog in menu order.
func (l *Ledger) Items() []model.ConcessionItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.ConcessionItem, len(l.items))
	copy(out, l.items)
	return out
}

// LowStock lists items that have fallen below their reorder level.
func (l *Ledger) LowStock() []model.ConcessionItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []model.ConcessionItem
	for _, item := range l.items {
		if item.LowStock() {
			out = append(out, item)
		}
	}
	return out
}

// PriceOrder validates an order against the catalog and returns its
// subtotal.  Unlike Debit, this is the order-taking path, so an unknown
// item, a non-positive quantity, or a quantity beyond current stock is an
// error the customer can fix.
func (l *Ledger) PriceOrder(order map[string]int) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0.0
	for name, qty := range order {
		item := l.find(name)
		if item == nil {
			return 0, fmt.Errorf("%w: %s", ErrItemNotFound, name)
		}
		if qty <= 0 {
			return 0, fmt.Errorf("invalid quantity %d for %s", qty, name)
		}
		if qty > item.Stock {
			return 0, fmt.Errorf("only %d of %s in stock", item.Stock, item.Name)
		}
		total += item.Price * float64(qty)
	}
	return total, nil
}

// Restock adds units to an item, for deliveries.
func (l *Ledger) Restock(name string, qty int) (model.ConcessionItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item := l.find(name)
	if item == nil {
		return model.ConcessionItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, name)
	}
	item.Stock += qty
	return *item, nil
}

// Withdraw removes units from an item (spoilage, damage).  Stock is
// clamped at zero; the sold counter is untouched since nothing was sold.
func (l *Ledger) Withdraw(name string, qty int) (model.ConcessionItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item := l.find(name)
	if item == nil {
		return model.ConcessionItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, name)
	}
	item.Stock -= qty
	if item.Stock < 0 {
		item.Stock = 0
	}
	return *item, nil
}
