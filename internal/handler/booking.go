package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinehall/cinema-booking/internal/booking"
	"github.com/cinehall/cinema-booking/internal/inventory"
	"github.com/cinehall/cinema-booking/internal/model"
	"github.com/cinehall/cinema-booking/internal/payment"
)

// BookingHandler serves the customer reservation endpoints.  Lookup
// after creation is by reservation code plus the passkey chosen at
// booking time; the passkey travels in the request body for mutations
// and in the "passkey" query parameter for reads.
type BookingHandler struct {
	lc     *booking.Lifecycle
	dir    *booking.Directory
	ledger *inventory.Ledger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(lc *booking.Lifecycle, dir *booking.Directory, ledger *inventory.Ledger) *BookingHandler {
	return &BookingHandler{lc: lc, dir: dir, ledger: ledger}
}

// reservationView is the API projection of a reservation.  The passkey
// never leaves the server.
type reservationView struct {
	Code            string         `json:"reservation_id"`
	Movie           string         `json:"movie"`
	Showtime        string         `json:"showtime"`
	Price           int            `json:"price"`
	Quantity        int            `json:"quantity"`
	Seats           []string       `json:"seats"`
	Concessions     map[string]int `json:"concessions,omitempty"`
	ConcessionTotal float64        `json:"concession_total"`
	Discount        float64        `json:"discount,omitempty"`
	GrandTotal      float64        `json:"grand_total"`
	Status          string         `json:"payment_status"`
	PaymentMethod   string         `json:"payment_method,omitempty"`
	PaymentDeadline string         `json:"payment_deadline,omitempty"`
}

func viewOf(r model.Reservation) reservationView {
	v := reservationView{
		Code:            r.Code,
		Movie:           r.Movie,
		Showtime:        r.Showtime,
		Price:           r.Price,
		Quantity:        r.Quantity,
		Seats:           r.Seats,
		Concessions:     r.Concessions,
		ConcessionTotal: r.ConcessionTotal,
		Discount:        r.Discount,
		GrandTotal:      r.GrandTotal(),
		Status:          string(r.Status),
		PaymentMethod:   r.PaymentMethod,
	}
	if !r.PaymentDeadline.IsZero() {
		v.PaymentDeadline = r.PaymentDeadline.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return v
}

// Create handles POST /v1/reservations.
func (h *BookingHandler) Create(c echo.Context) error {
	var req booking.CreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	r, err := h.lc.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, viewOf(r))
}

// Get handles GET /v1/reservations/:code?passkey=...
func (h *BookingHandler) Get(c echo.Context) error {
	r, err := h.dir.Get(c.Request().Context(), c.Param("code"), c.QueryParam("passkey"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(r))
}

// Pay handles POST /v1/reservations/:code/payment.  A declined payment
// is reported with 402 and leaves the reservation pending; the customer
// can try again until the deadline.
func (h *BookingHandler) Pay(c echo.Context) error {
	var body struct {
		Passkey string `json:"passkey"`
		payment.Request
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	r, result, err := h.lc.Pay(c.Request().Context(), c.Param("code"), body.Passkey, body.Request)
	if err != nil {
		return respondError(c, err)
	}
	status := http.StatusOK
	if !result.Success {
		status = http.StatusPaymentRequired
	}
	return c.JSON(status, echo.Map{
		"reservation": viewOf(r),
		"payment":     result,
	})
}

// Cancel handles DELETE /v1/reservations/:code?passkey=...  Cancelling
// a paid reservation additionally queues a manual refund notice.
func (h *BookingHandler) Cancel(c echo.Context) error {
	r, err := h.lc.Cancel(c.Request().Context(), c.Param("code"), c.QueryParam("passkey"))
	if err != nil {
		return respondError(c, err)
	}
	resp := echo.Map{"cancelled": r.Code}
	if r.Status == model.StatusPaid {
		resp["refund"] = echo.Map{
			"amount":    r.GrandTotal(),
			"method":    r.PaymentMethod,
			"reference": r.PaymentReference,
			"notice":    "refund is processed manually by staff",
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// EditShow handles PUT /v1/reservations/:code/show.
func (h *BookingHandler) EditShow(c echo.Context) error {
	var body struct {
		Passkey  string   `json:"passkey"`
		Movie    string   `json:"movie"`
		Showtime string   `json:"showtime"`
		Seats    []string `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	r, err := h.lc.EditShow(c.Request().Context(), c.Param("code"), body.Passkey, body.Movie, body.Showtime, body.Seats)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(r))
}

// EditSeats handles PUT /v1/reservations/:code/seats.  Seats already
// held by this reservation may be re-listed to keep them.
func (h *BookingHandler) EditSeats(c echo.Context) error {
	var body struct {
		Passkey string   `json:"passkey"`
		Seats   []string `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	r, err := h.lc.EditSeats(c.Request().Context(), c.Param("code"), body.Passkey, body.Seats)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(r))
}

// EditQuantity handles PUT /v1/reservations/:code/quantity.  Growing
// needs add_seats, shrinking needs drop_seats naming currently held
// seats.
func (h *BookingHandler) EditQuantity(c echo.Context) error {
	var body struct {
		Passkey   string   `json:"passkey"`
		Quantity  int      `json:"quantity"`
		AddSeats  []string `json:"add_seats"`
		DropSeats []string `json:"drop_seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	r, err := h.lc.EditQuantity(c.Request().Context(), c.Param("code"), body.Passkey, body.Quantity, body.AddSeats, body.DropSeats)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(r))
}

// EditConcessions handles PUT /v1/reservations/:code/concessions.  The
// body replaces the whole order; an empty items map clears it.
func (h *BookingHandler) EditConcessions(c echo.Context) error {
	var body struct {
		Passkey string         `json:"passkey"`
		Items   map[string]int `json:"items"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	r, err := h.lc.EditConcessions(c.Request().Context(), c.Param("code"), body.Passkey, body.Items)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(r))
}

// receiptLine is one concession row on a receipt.
type receiptLine struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Amount    float64 `json:"amount"`
}

// Receipt handles GET /v1/reservations/:code/receipt?passkey=...  Only
// paid reservations have receipts.
func (h *BookingHandler) Receipt(c echo.Context) error {
	r, err := h.dir.Get(c.Request().Context(), c.Param("code"), c.QueryParam("passkey"))
	if err != nil {
		return respondError(c, err)
	}
	if r.Status != model.StatusPaid {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is not paid"})
	}

	var lines []receiptLine
	for name, qty := range r.Concessions {
		if qty <= 0 {
			continue
		}
		var unit float64
		if item, ok := h.ledger.Lookup(name); ok {
			unit = item.Price
		}
		lines = append(lines, receiptLine{Name: name, Quantity: qty, UnitPrice: unit, Amount: unit * float64(qty)})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reservation_id":    r.Code,
		"movie":             r.Movie,
		"showtime":          r.Showtime,
		"seats":             r.Seats,
		"tickets":           echo.Map{"quantity": r.Quantity, "unit_price": r.Price, "amount": r.TicketTotal()},
		"concessions":       lines,
		"concession_total":  r.ConcessionTotal,
		"discount":          r.Discount,
		"grand_total":       r.GrandTotal(),
		"payment_method":    r.PaymentMethod,
		"payment_reference": r.PaymentReference,
		"amount_paid":       r.AmountPaid,
	})
}
