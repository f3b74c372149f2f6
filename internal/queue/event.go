// Package queue defines message payloads exchanged over the message
// broker, the publisher that emits them, and the audit consumer.
package queue

// Queue names.  Both queues are declared durable by whichever side
// touches them first.
const (
	AuditQueue  = "reservation.audit"
	RefundQueue = "refund.requested"
)

// Audit event kinds.
const (
	KindCreated       = "created"
	KindPaid          = "paid"
	KindExpired       = "expired"
	KindCancelled     = "cancelled"
	KindAdminOverride = "admin_override"
	KindStockChange   = "stock_change"
)

// AuditEvent is published for every reservation lifecycle transition and
// admin override.  It carries enough for downstream consumers to log or
// trigger analytics without querying the service.
type AuditEvent struct {
	EventID    string   `json:"event_id"`
	Kind       string   `json:"kind"`
	Code       string   `json:"reservation_id,omitempty"`
	Movie      string   `json:"movie,omitempty"`
	Showtime   string   `json:"showtime,omitempty"`
	Seats      []string `json:"seats,omitempty"`
	Amount     float64  `json:"amount,omitempty"`
	Method     string   `json:"method,omitempty"`
	Reference  string   `json:"reference,omitempty"`
	Detail     string   `json:"detail,omitempty"`
	OccurredAt string   `json:"occurred_at"`
}

// RefundEvent is published when a paid reservation is cancelled.  The
// system never moves money itself; staff process the refund manually off
// this notice.
type RefundEvent struct {
	EventID     string  `json:"event_id"`
	Code        string  `json:"reservation_id"`
	Amount      float64 `json:"amount"`
	Method      string  `json:"method"`
	Reference   string  `json:"reference"`
	RequestedAt string  `json:"requested_at"`
}
