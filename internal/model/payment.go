package model

import "time"

// PaymentResult is the outcome handed back by the payment collaborator.
// The booking core does not know or care how the outcome was produced; it
// only inspects Success and records the rest.  A failed payment is a valid
// terminal outcome of the collaborator, not an error: the reservation
// simply stays PENDING with its existing deadline.
type PaymentResult struct {
	Success      bool      `json:"success"`
	Method       string    `json:"method"`        // "Cash", "GCash", "Card", "Admin Override"
	Reference    string    `json:"reference"`     // unique receipt reference
	AmountPaid   float64   `json:"amount_paid"`   // zero unless Success
	Timestamp    time.Time `json:"timestamp"`     // when the outcome was produced
	CashTendered float64   `json:"cash_tendered"` // cash payments only
	Change       float64   `json:"change"`        // cash payments only
}
