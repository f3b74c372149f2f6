package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinehall/cinema-booking/internal/inventory"
)

// ConcessionHandler exposes the public concession menu.  Customers see
// names, categories and prices only; stock levels are an admin concern
// and stay off this endpoint.
type ConcessionHandler struct {
	ledger *inventory.Ledger
}

// NewConcessionHandler constructs a ConcessionHandler.
func NewConcessionHandler(ledger *inventory.Ledger) *ConcessionHandler {
	return &ConcessionHandler{ledger: ledger}
}

// menuItem is the customer-facing projection of a catalog row.
type menuItem struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// Menu handles GET /v1/concessions.
func (h *ConcessionHandler) Menu(c echo.Context) error {
	items := h.ledger.Items()
	menu := make([]menuItem, 0, len(items))
	for _, item := range items {
		menu = append(menu, menuItem{Name: item.Name, Category: item.Category, Price: item.Price})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": menu})
}
