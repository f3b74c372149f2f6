// Package handler contains the HTTP handlers.  Handlers translate
// between the JSON API and the booking core; every error from the core
// is mapped onto a status code here so the core packages stay free of
// HTTP concerns.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinehall/cinema-booking/internal/booking"
	"github.com/cinehall/cinema-booking/internal/inventory"
	"github.com/cinehall/cinema-booking/internal/payment"
	"github.com/cinehall/cinema-booking/internal/program"
	"github.com/cinehall/cinema-booking/internal/seating"
)

// respondError maps core errors onto HTTP status codes.  Seat conflicts
// and state conflicts are 409 so clients know a retry with different
// input can succeed; validation problems are 400; unknown things are
// 404.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, program.ErrUnknownShow):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, inventory.ErrItemNotFound):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, seating.ErrSeatUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, seating.ErrSeatNotFound),
		errors.Is(err, seating.ErrPicksExhausted),
		errors.Is(err, booking.ErrQuantityRange),
		errors.Is(err, booking.ErrSeatNotHeld),
		errors.Is(err, booking.ErrPasskeyRequired),
		errors.Is(err, payment.ErrUnknownMethod):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
