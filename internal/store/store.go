// Package store defines the persistence collaborators consumed by the
// booking core.  Both stores are full-snapshot: a save overwrites the
// entire collection, which makes retry after a failed save safe, and a
// load is tolerant of missing storage (an empty collection, never a fatal
// error).  Two implementations exist: JSON files mirroring the original
// bookings.json / inventory.json layout, and MySQL for deployments that
// already run a database.
package store

import (
	"context"

	"github.com/cinehall/cinema-booking/internal/model"
)

// BookingStore persists the full reservation collection.
type BookingStore interface {
	LoadReservations(ctx context.Context) ([]*model.Reservation, error)
	SaveReservations(ctx context.Context, reservations []*model.Reservation) error
}

// CatalogStore persists the concession catalog.
type CatalogStore interface {
	LoadCatalog(ctx context.Context) ([]model.ConcessionItem, error)
	SaveCatalog(ctx context.Context, items []model.ConcessionItem) error
}
