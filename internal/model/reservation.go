package model

import (
	"strings"
	"time"
)

// PaymentStatus enumerates the lifecycle states of a reservation.  A
// reservation starts PENDING and either becomes PAID before its payment
// deadline, EXPIRED when the deadline passes, or is removed entirely on
// cancellation.  EXPIRED rows are retained for audit and reporting but
// reject all further edits.
type PaymentStatus string

const (
	StatusPending PaymentStatus = "PENDING"
	StatusPaid    PaymentStatus = "PAID"
	StatusExpired PaymentStatus = "EXPIRED"
)

// ShowKey identifies one screening: a movie title paired with a showtime
// label.  Seat grids are owned per key, so the same seat label is
// independently available for every screening.  The key is a struct rather
// than a joined string so that a movie title containing a delimiter can
// never collide with another screening.
type ShowKey struct {
	Movie    string `json:"movie"`    // movie title, e.g. "Encanto"
	Showtime string `json:"showtime"` // showtime label, e.g. "4:00 PM"
}

// String renders the key for logs and event payloads only.  It must never
// be parsed back into a key.
func (k ShowKey) String() string { return k.Movie + "|" + k.Showtime }

// Reservation records a customer's hold on seats, concessions and payment
// state for one screening.
//
// Fields:
//  Code            – short reservation code ("R-" + six digits), unique in the directory.
//  Movie, Showtime – the screening this reservation is bound to; re-resolved
//                    by key lookup on every operation because edits can move it.
//  Price           – ticket price at the time of booking (per ticket, pesos).
//  Quantity        – number of tickets, 1 to 5.
//  Seats           – held seat labels; always exactly Quantity entries.
//  Passkey         – opaque credential chosen by the customer, compared exactly.
//  Concessions     – item name → ordered quantity.
//  ConcessionTotal – subtotal of the concession order in pesos.
//  Discount        – admin-granted discount in pesos.
//  Note            – free-text admin note.
//  Status          – current lifecycle state.
//  PaymentMethod, PaymentReference, AmountPaid – populated once PAID.
//  PaymentDeadline – set while PENDING; zero once PAID or EXPIRED.
//  CreatedAt, UpdatedAt – bookkeeping timestamps.
type Reservation struct {
	Code            string         `json:"reservation_id"`
	Movie           string         `json:"movie"`
	Showtime        string         `json:"showtime"`
	Price           int            `json:"price"`
	Quantity        int            `json:"quantity"`
	Seats           []string       `json:"seats"`
	Passkey         string         `json:"passkey"`
	Concessions     map[string]int `json:"concessions"`
	ConcessionTotal float64        `json:"concession_total"`
	Discount        float64        `json:"discount"`
	Note            string         `json:"admin_note"`
	Status          PaymentStatus  `json:"payment_status"`
	PaymentMethod   string         `json:"payment_method"`
	PaymentReference string        `json:"payment_reference"`
	AmountPaid      float64        `json:"amount_paid"`
	PaymentDeadline time.Time      `json:"payment_deadline"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Key returns the screening this reservation currently points at.
func (r *Reservation) Key() ShowKey {
	return ShowKey{Movie: r.Movie, Showtime: r.Showtime}
}

// TicketTotal is the ticket portion of the bill: price × quantity.
func (r *Reservation) TicketTotal() float64 {
	return float64(r.Price) * float64(r.Quantity)
}

// GrandTotal is the amount owed: tickets plus concessions minus discount,
// clamped at zero so an oversized discount can never produce a negative
// bill.
func (r *Reservation) GrandTotal() float64 {
	total := r.TicketTotal() + r.ConcessionTotal - r.Discount
	if total < 0 {
		total = 0
	}
	return total
}

// HasConcessions reports whether any concession line has a positive
// quantity.  Zero-quantity lines left behind by edits do not count.
func (r *Reservation) HasConcessions() bool {
	for _, qty := range r.Concessions {
		if qty > 0 {
			return true
		}
	}
	return false
}

// CodeEquals compares reservation codes case-insensitively, matching how
// customers type them at a counter.
func CodeEquals(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
