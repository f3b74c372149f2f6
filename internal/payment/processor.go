// Package payment produces payment outcomes for reservations.  The
// booking core treats the processor as an opaque collaborator: it hands
// over the grand total and records whatever outcome comes back.  A
// declined payment is a normal outcome, not an error — the reservation
// stays pending until its deadline.
package payment

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/cinehall/cinema-booking/internal/model"
)

// ErrUnknownMethod rejects payment methods the counter does not take.
var ErrUnknownMethod = errors.New("unknown payment method")

// Request carries what the customer presented at the counter.  Which
// fields matter depends on the method: cash uses CashTendered, the
// e-wallet path uses the customer's transfer reference plus the staff
// confirmation flag, and card details are collected but not validated in
// this simulation.
type Request struct {
	Method       string  `json:"method"` // "cash", "gcash" or "card"
	CashTendered float64 `json:"cash_tendered,omitempty"`
	Reference    string  `json:"reference,omitempty"` // e-wallet transfer reference
	Confirmed    bool    `json:"confirmed,omitempty"` // staff confirmed the transfer arrived
	CardNumber   string  `json:"card_number,omitempty"`
	CardHolder   string  `json:"card_holder,omitempty"`
}

// Processor is the collaborator interface the booking handlers depend on.
type Processor interface {
	Process(total float64, req Request) (model.PaymentResult, error)
}

// Counter simulates the box-office till.  It guarantees reference
// uniqueness for the life of the process so receipts never collide.
type Counter struct {
	mu   sync.Mutex
	used map[string]struct{}
	now  func() time.Time
}

// NewCounter returns a ready till.
func NewCounter() *Counter {
	return &Counter{used: make(map[string]struct{}), now: time.Now}
}

// Process produces the outcome for one payment attempt.
func (c *Counter) Process(total float64, req Request) (model.PaymentResult, error) {
	switch strings.ToLower(strings.TrimSpace(req.Method)) {
	case "cash":
		return c.processCash(total, req), nil
	case "gcash", "ewallet", "e-wallet":
		return c.processEWallet(total, "GCash", req), nil
	case "card":
		return c.processCard(total), nil
	default:
		return model.PaymentResult{}, fmt.Errorf("%w: %q", ErrUnknownMethod, req.Method)
	}
}

// processCash succeeds when the tendered amount covers the bill and
// reports the change; anything less is declined, not an error.
func (c *Counter) processCash(total float64, req Request) model.PaymentResult {
	if req.CashTendered < total {
		return model.PaymentResult{Method: "Cash", Timestamp: c.now()}
	}
	return model.PaymentResult{
		Success:      true,
		Method:       "Cash",
		Reference:    c.Reference("CASH"),
		AmountPaid:   total,
		Timestamp:    c.now(),
		CashTendered: req.CashTendered,
		Change:       req.CashTendered - total,
	}
}

// processEWallet succeeds only when staff confirmed the transfer.  The
// customer's reference is prefixed with the wallet name and uniquified
// with a numeric suffix if a previous receipt already used it.
func (c *Counter) processEWallet(total float64, wallet string, req Request) model.PaymentResult {
	ref := c.ensureUnique(strings.ToUpper(wallet) + "-" + strings.ToUpper(strings.TrimSpace(req.Reference)))
	res := model.PaymentResult{
		Success:   req.Confirmed && req.Reference != "",
		Method:    wallet,
		Reference: ref,
		Timestamp: c.now(),
	}
	if res.Success {
		res.AmountPaid = total
	}
	return res
}

// processCard always approves in this simulation.
func (c *Counter) processCard(total float64) model.PaymentResult {
	return model.PaymentResult{
		Success:    true,
		Method:     "Card",
		Reference:  c.Reference("CARD"),
		AmountPaid: total,
		Timestamp:  c.now(),
	}
}

// Reference generates a fresh unique reference: prefix, dash, six digits.
func (c *Counter) Reference(prefix string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		candidate := fmt.Sprintf("%s-%06d", prefix, 100000+rand.Intn(900000))
		if _, taken := c.used[candidate]; !taken {
			c.used[candidate] = struct{}{}
			return candidate
		}
	}
}

func (c *Counter) ensureUnique(base string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	candidate := base
	for n := 1; ; n++ {
		if _, taken := c.used[candidate]; !taken {
			c.used[candidate] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
