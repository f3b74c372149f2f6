// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cinehall/cinema-booking/internal/handler"
	"github.com/cinehall/cinema-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated customer endpoints:
// browsing the program and seat maps, the concession menu, and the
// reservation flow.  Reservation access control is the code+passkey
// pair, not a session.
//
// browseCache wraps only the three catalog routes.  Those are the only
// responses identical for every caller; reservation reads are
// authorized per customer and must never be served from a shared cache.
func RegisterPublic(e *echo.Echo, shows *handler.ShowHandler, concessions *handler.ConcessionHandler, bookings *handler.BookingHandler, browseCache echo.MiddlewareFunc) {
	e.GET("/v1/shows", shows.ListShows, browseCache)
	// Movie titles contain spaces, so the seat map takes its screening
	// as query parameters instead of path segments.
	e.GET("/v1/shows/seats", shows.SeatMap, browseCache)
	e.GET("/v1/concessions", concessions.Menu, browseCache)

	g := e.Group("/v1/reservations")
	g.POST("", bookings.Create)
	g.GET("/:code", bookings.Get)
	g.POST("/:code/payment", bookings.Pay)
	g.DELETE("/:code", bookings.Cancel)
	g.PUT("/:code/show", bookings.EditShow)
	g.PUT("/:code/seats", bookings.EditSeats)
	g.PUT("/:code/quantity", bookings.EditQuantity)
	g.PUT("/:code/concessions", bookings.EditConcessions)
	g.GET("/:code/receipt", bookings.Receipt)
}

// RegisterAuth registers the admin login endpoint and every protected
// staff route.  Protected endpoints live under /v1/admin and require a
// valid ADMIN bearer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, admin *handler.AdminHandler, jwtSecret string) {
	e.POST("/v1/auth/login", a.Login)

	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	g.GET("/reservations", admin.ListReservations)
	g.GET("/reservations/:code", admin.GetReservation)
	g.PUT("/reservations/:code/status", admin.SetStatus)
	g.PUT("/reservations/:code/discount", admin.SetDiscount)
	g.PUT("/reservations/:code/note", admin.SetNote)

	g.GET("/inventory", admin.Inventory)
	g.GET("/inventory/low-stock", admin.LowStock)
	g.POST("/inventory/restock", admin.Restock)
	g.POST("/inventory/withdraw", admin.Withdraw)

	g.GET("/dashboard", admin.Dashboard)
	g.GET("/reports/daily", admin.DailyReport)
	g.GET("/reports/weekly", admin.WeeklyReport)
	g.GET("/reports/monthly", admin.MonthlyReport)
}
