package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/cinehall/cinema-booking/internal/model"
)

// MySQLStore persists snapshots in two tables.  It keeps the same
// full-snapshot contract as the file store: SaveReservations replaces the
// whole reservations table in one transaction, so a retried save after a
// reported failure cannot duplicate rows.  Seat labels and concession
// orders are stored as JSON documents since the core never queries into
// them.
type MySQLStore struct {
	db *sql.DB
}

// Open connects to MySQL, verifies the connection and makes sure the
// snapshot tables exist.
func Open(user, pass, host, port, name string) (*MySQLStore, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	s := &MySQLStore{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *MySQLStore) Close() error { return s.db.Close() }

func (s *MySQLStore) ensureSchema(ctx context.Context) error {
	const reservations = `CREATE TABLE IF NOT EXISTS reservations (
		code              VARCHAR(16)  NOT NULL PRIMARY KEY,
		movie             VARCHAR(100) NOT NULL,
		showtime          VARCHAR(32)  NOT NULL,
		price             INT          NOT NULL,
		quantity          INT          NOT NULL,
		seats             JSON         NOT NULL,
		passkey           VARCHAR(100) NOT NULL,
		concessions       JSON         NOT NULL,
		concession_total  DOUBLE       NOT NULL,
		discount          DOUBLE       NOT NULL,
		note              TEXT         NOT NULL,
		status            VARCHAR(16)  NOT NULL,
		payment_method    VARCHAR(32)  NOT NULL,
		payment_reference VARCHAR(64)  NOT NULL,
		amount_paid       DOUBLE       NOT NULL,
		payment_deadline  DATETIME     NULL,
		created_at        DATETIME     NOT NULL,
		updated_at        DATETIME     NOT NULL
	)`
	const catalog = `CREATE TABLE IF NOT EXISTS concession_items (
		name          VARCHAR(64) NOT NULL PRIMARY KEY,
		category      VARCHAR(16) NOT NULL,
		price         DOUBLE      NOT NULL,
		stock         INT         NOT NULL,
		reorder_level INT         NOT NULL,
		total_sold    INT         NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, reservations); err != nil {
		return fmt.Errorf("create reservations table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, catalog); err != nil {
		return fmt.Errorf("create concession_items table: %w", err)
	}
	return nil
}

func (s *MySQLStore) LoadReservations(ctx context.Context) ([]*model.Reservation, error) {
	const q = `SELECT code, movie, showtime, price, quantity, seats, passkey,
		concessions, concession_total, discount, note, status, payment_method,
		payment_reference, amount_paid, payment_deadline, created_at, updated_at
		FROM reservations ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Reservation{}
	for rows.Next() {
		var r model.Reservation
		var seats, concessions []byte
		var deadline sql.NullTime
		if err := rows.Scan(&r.Code, &r.Movie, &r.Showtime, &r.Price, &r.Quantity,
			&seats, &r.Passkey, &concessions, &r.ConcessionTotal, &r.Discount,
			&r.Note, &r.Status, &r.PaymentMethod, &r.PaymentReference,
			&r.AmountPaid, &deadline, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(seats, &r.Seats); err != nil {
			return nil, fmt.Errorf("decode seats for %s: %w", r.Code, err)
		}
		if err := json.Unmarshal(concessions, &r.Concessions); err != nil {
			return nil, fmt.Errorf("decode concessions for %s: %w", r.Code, err)
		}
		if deadline.Valid {
			r.PaymentDeadline = deadline.Time
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *MySQLStore) SaveReservations(ctx context.Context, reservations []*model.Reservation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations`); err != nil {
		return err
	}
	const ins = `INSERT INTO reservations (code, movie, showtime, price, quantity,
		seats, passkey, concessions, concession_total, discount, note, status,
		payment_method, payment_reference, amount_paid, payment_deadline,
		created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, r := range reservations {
		seats, err := json.Marshal(r.Seats)
		if err != nil {
			return err
		}
		concessions, err := json.Marshal(r.Concessions)
		if err != nil {
			return err
		}
		var deadline any
		if !r.PaymentDeadline.IsZero() {
			deadline = r.PaymentDeadline.UTC()
		}
		if _, err := tx.ExecContext(ctx, ins, r.Code, r.Movie, r.Showtime,
			r.Price, r.Quantity, seats, r.Passkey, concessions,
			r.ConcessionTotal, r.Discount, r.Note, string(r.Status),
			r.PaymentMethod, r.PaymentReference, r.AmountPaid, deadline,
			r.CreatedAt.UTC(), r.UpdatedAt.UTC()); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *MySQLStore) LoadCatalog(ctx context.Context) ([]model.ConcessionItem, error) {
	const q = `SELECT name, category, price, stock, reorder_level, total_sold
		FROM concession_items ORDER BY name`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ConcessionItem
	for rows.Next() {
		var it model.ConcessionItem
		if err := rows.Scan(&it.Name, &it.Category, &it.Price, &it.Stock,
			&it.ReorderLevel, &it.TotalSold); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *MySQLStore) SaveCatalog(ctx context.Context, items []model.ConcessionItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM concession_items`); err != nil {
		return err
	}
	const ins = `INSERT INTO concession_items (name, category, price, stock,
		reorder_level, total_sold) VALUES (?, ?, ?, ?, ?, ?)`
	for _, it := range items {
		if _, err := tx.ExecContext(ctx, ins, it.Name, it.Category, it.Price,
			it.Stock, it.ReorderLevel, it.TotalSold); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
