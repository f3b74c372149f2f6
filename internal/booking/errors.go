// Package booking is the reservation core: the directory that owns every
// reservation and the lifecycle that moves a reservation between PENDING,
// PAID and EXPIRED while keeping seat holds and concession stock in step.
package booking

import "errors"

var (
	// ErrNotFound covers both a wrong code and a wrong passkey so a
	// caller probing codes learns nothing from the difference.
	ErrNotFound = errors.New("reservation not found or passkey incorrect")

	// ErrInvalidTransition rejects an operation the reservation's current
	// payment state does not allow, e.g. editing a paid reservation.
	ErrInvalidTransition = errors.New("operation not allowed in current payment state")

	// ErrQuantityRange rejects ticket counts outside 1 to 5.
	ErrQuantityRange = errors.New("ticket quantity must be between 1 and 5")

	// ErrSeatNotHeld is returned when a quantity decrease names a seat
	// that is not part of the reservation.  The caller can retry with a
	// seat they actually hold.
	ErrSeatNotHeld = errors.New("seat is not part of this reservation")

	// ErrPasskeyRequired rejects reservation creation without a passkey,
	// since the passkey is the only credential for later lookups.
	ErrPasskeyRequired = errors.New("passkey must not be empty")
)
