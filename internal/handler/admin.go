package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cinehall/cinema-booking/internal/booking"
	"github.com/cinehall/cinema-booking/internal/inventory"
	"github.com/cinehall/cinema-booking/internal/model"
	"github.com/cinehall/cinema-booking/internal/queue"
	"github.com/cinehall/cinema-booking/internal/report"
)

// AdminHandler serves the staff endpoints: reservation overrides,
// inventory management, the dashboard and sales reports.  All routes are
// behind JWT auth with the ADMIN role; unlike the customer endpoints no
// passkey is needed.
type AdminHandler struct {
	lc        *booking.Lifecycle
	dir       *booking.Directory
	ledger    *inventory.Ledger
	reporter  *report.Reporter
	publisher queue.Publisher
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(lc *booking.Lifecycle, dir *booking.Directory, ledger *inventory.Ledger, reporter *report.Reporter, pub queue.Publisher) *AdminHandler {
	return &AdminHandler{lc: lc, dir: dir, ledger: ledger, reporter: reporter, publisher: pub}
}

// ListReservations handles GET /v1/admin/reservations.
func (h *AdminHandler) ListReservations(c echo.Context) error {
	all := h.dir.All(c.Request().Context())
	views := make([]reservationView, 0, len(all))
	for _, r := range all {
		views = append(views, viewOf(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": views, "count": len(views)})
}

// GetReservation handles GET /v1/admin/reservations/:code.
func (h *AdminHandler) GetReservation(c echo.Context) error {
	r, err := h.dir.GetAny(c.Request().Context(), c.Param("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(r))
}

// SetStatus handles PUT /v1/admin/reservations/:code/status.  The body
// carries the target status: PENDING, PAID or EXPIRED.
func (h *AdminHandler) SetStatus(c echo.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	r, err := h.lc.SetStatus(c.Request().Context(), c.Param("code"), model.PaymentStatus(body.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(r))
}

// SetDiscount handles PUT /v1/admin/reservations/:code/discount.
func (h *AdminHandler) SetDiscount(c echo.Context) error {
	var body struct {
		Discount float64 `json:"discount"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	r, err := h.lc.ApplyDiscount(c.Request().Context(), c.Param("code"), body.Discount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(r))
}

// SetNote handles PUT /v1/admin/reservations/:code/note.
func (h *AdminHandler) SetNote(c echo.Context) error {
	var body struct {
		Note string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	r, err := h.lc.SetNote(c.Request().Context(), c.Param("code"), body.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(r))
}

// Inventory handles GET /v1/admin/inventory: the full catalog with
// stock counts and sales figures.
func (h *AdminHandler) Inventory(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": h.ledger.Items()})
}

// LowStock handles GET /v1/admin/inventory/low-stock.
func (h *AdminHandler) LowStock(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": h.ledger.LowStock()})
}

// Restock handles POST /v1/admin/inventory/restock.
func (h *AdminHandler) Restock(c echo.Context) error {
	var body struct {
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
	}
	item, err := h.ledger.Restock(body.Name, body.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	h.saveCatalog(c)
	h.auditStock(c, fmt.Sprintf("restock %s +%d (stock %d)", item.Name, body.Quantity, item.Stock))
	return c.JSON(http.StatusOK, item)
}

// Withdraw handles POST /v1/admin/inventory/withdraw.  Withdrawn units
// are not sales; the reason (expired, damaged, other) is mandatory and
// ends up in the audit trail.
func (h *AdminHandler) Withdraw(c echo.Context) error {
	var body struct {
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
		Reason   string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
	}
	reason := strings.TrimSpace(body.Reason)
	if reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "a withdrawal reason is required (expired, damaged or other)"})
	}
	item, err := h.ledger.Withdraw(body.Name, body.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	h.saveCatalog(c)
	h.auditStock(c, fmt.Sprintf("withdraw %s -%d: %s (stock %d)", item.Name, body.Quantity, reason, item.Stock))
	return c.JSON(http.StatusOK, item)
}

// Dashboard handles GET /v1/admin/dashboard.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.reporter.Dashboard(c.Request().Context()))
}

// DailyReport handles GET /v1/admin/reports/daily?date=YYYY-MM-DD.
// A missing or malformed date falls back to today, the way the desk
// system did.
func (h *AdminHandler) DailyReport(c echo.Context) error {
	date, err := time.ParseInLocation("2006-01-02", c.QueryParam("date"), time.Local)
	if err != nil {
		date = time.Now()
	}
	return c.JSON(http.StatusOK, h.reporter.Daily(c.Request().Context(), date))
}

// WeeklyReport handles GET /v1/admin/reports/weekly?date=YYYY-MM-DD.
// Any date within the week works; the report snaps to Monday.
func (h *AdminHandler) WeeklyReport(c echo.Context) error {
	date, err := time.ParseInLocation("2006-01-02", c.QueryParam("date"), time.Local)
	if err != nil {
		date = time.Now()
	}
	return c.JSON(http.StatusOK, h.reporter.Weekly(c.Request().Context(), date))
}

// MonthlyReport handles GET /v1/admin/reports/monthly?month=YYYY-MM.
func (h *AdminHandler) MonthlyReport(c echo.Context) error {
	month, err := time.ParseInLocation("2006-01", c.QueryParam("month"), time.Local)
	if err != nil {
		month = time.Now()
	}
	return c.JSON(http.StatusOK, h.reporter.Monthly(c.Request().Context(), month.Year(), month.Month()))
}

// saveCatalog persists inventory changes made by admin endpoints.
func (h *AdminHandler) saveCatalog(c echo.Context) {
	if err := h.ledger.Save(c.Request().Context()); err != nil {
		c.Logger().Warnf("could not persist concession catalog: %v", err)
	}
}

// auditStock publishes a stock_change audit event, best-effort.
func (h *AdminHandler) auditStock(c echo.Context, detail string) {
	ev := queue.AuditEvent{
		EventID:    uuid.NewString(),
		Kind:       queue.KindStockChange,
		Detail:     detail,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.publisher.PublishAudit(c.Request().Context(), ev); err != nil {
		c.Logger().Warnf("could not publish stock audit event: %v", err)
	}
}
