package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinehall/cinema-booking/internal/program"
	"github.com/cinehall/cinema-booking/internal/seating"
)

// ShowHandler exposes the screening schedule and per-screening seat
// maps.  Both endpoints are public: guests browse the program and check
// seat availability before reserving.
type ShowHandler struct {
	schedule *program.Program
	alloc    *seating.Allocator
}

// NewShowHandler constructs a ShowHandler.
func NewShowHandler(schedule *program.Program, alloc *seating.Allocator) *ShowHandler {
	return &ShowHandler{schedule: schedule, alloc: alloc}
}

// ListShows handles GET /v1/shows.  It returns the full program: every
// movie with its showtimes and ticket prices.
func (h *ShowHandler) ListShows(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"movies": h.schedule.Movies()})
}

// SeatMap handles GET /v1/shows/seats?movie=...&showtime=...  Movie and
// showtime arrive as query parameters because titles contain spaces.
// The response is the row-major seat layout with availability flags.
func (h *ShowHandler) SeatMap(c echo.Context) error {
	key, price, err := h.schedule.Resolve(c.QueryParam("movie"), c.QueryParam("showtime"))
	if err != nil {
		return respondError(c, err)
	}
	grid := h.alloc.Grid(key)
	return c.JSON(http.StatusOK, echo.Map{
		"movie":    key.Movie,
		"showtime": key.Showtime,
		"price":    price,
		"rows":     grid.Rows(),
		"cols":     grid.Cols(),
		"seats":    grid.Layout(),
	})
}
