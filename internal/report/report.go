// Package report aggregates sales figures for the admin dashboard and
// the daily, weekly and monthly sales reports.  Only PAID reservations
// count as sales; pending and expired rows contribute nothing.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/cinehall/cinema-booking/internal/booking"
	"github.com/cinehall/cinema-booking/internal/inventory"
	"github.com/cinehall/cinema-booking/internal/model"
)

// Reporter reads the live directory and ledger to build summaries.
type Reporter struct {
	dir    *booking.Directory
	ledger *inventory.Ledger
	now    func() time.Time
}

// NewReporter builds a reporter over the given directory and ledger.
func NewReporter(dir *booking.Directory, ledger *inventory.Ledger) *Reporter {
	return &Reporter{dir: dir, ledger: ledger, now: time.Now}
}

// Dashboard is the at-a-glance admin summary.
type Dashboard struct {
	TodaysSales       float64 `json:"todays_sales"`
	PendingPayments   int     `json:"pending_payments"`
	LowStockItems     int     `json:"low_stock_items"`
	TotalReservations int     `json:"total_reservations"`
}

// LineSale is one aggregated row: a movie or a concession item with the
// units moved and the pesos taken.
type LineSale struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Amount   float64 `json:"amount"`
}

// DayTotal is one day's takings inside a weekly report.
type DayTotal struct {
	Day   string  `json:"day"` // "Mon" .. "Sun"
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// WeekTotal is one week's takings inside a monthly report.
type WeekTotal struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Total float64 `json:"total"`
}

// SalesReport covers one period.  MovieSales and ConcessionSales are
// sorted by name; the breakdown fields are populated per period kind.
type SalesReport struct {
	Title           string      `json:"title"`
	PeriodStart     string      `json:"period_start"`
	PeriodEnd       string      `json:"period_end"`
	MovieSales      []LineSale  `json:"movie_sales"`
	ConcessionSales []LineSale  `json:"concession_sales"`
	TotalTickets    int         `json:"total_tickets"`
	TicketSales     float64     `json:"ticket_sales"`
	ConcessionTotal float64     `json:"concession_total"`
	GrandTotal      float64     `json:"grand_total"`
	Transactions    int         `json:"transactions"`
	DailyBreakdown  []DayTotal  `json:"daily_breakdown,omitempty"`
	WeeklyBreakdown []WeekTotal `json:"weekly_breakdown,omitempty"`
	TopMovie        string      `json:"top_movie,omitempty"`
	TopConcession   string      `json:"top_concession,omitempty"`
}

const dateLayout = "2006-01-02"

// Dashboard computes today's headline numbers.
func (rp *Reporter) Dashboard(ctx context.Context) Dashboard {
	today := rp.now()
	var sales float64
	var pending int
	all := rp.dir.All(ctx)
	for i := range all {
		r := &all[i]
		switch r.Status {
		case model.StatusPaid:
			if sameDay(r.CreatedAt, today) {
				sales += r.GrandTotal()
			}
		case model.StatusPending:
			pending++
		}
	}
	return Dashboard{
		TodaysSales:       sales,
		PendingPayments:   pending,
		LowStockItems:     len(rp.ledger.LowStock()),
		TotalReservations: len(all),
	}
}

// Daily reports one calendar day.
func (rp *Reporter) Daily(ctx context.Context, date time.Time) SalesReport {
	paid := rp.paidBetween(ctx, date, date)
	out := rp.build("DAILY SALES REPORT", date, date, paid)
	return out
}

// Weekly reports the Monday-to-Sunday week containing the given date,
// with a per-day breakdown.
func (rp *Reporter) Weekly(ctx context.Context, date time.Time) SalesReport {
	start := weekStart(date)
	end := start.AddDate(0, 0, 6)
	paid := rp.paidBetween(ctx, start, end)
	out := rp.build("WEEKLY SALES REPORT", start, end, paid)

	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		var total float64
		for _, r := range paid {
			if sameDay(r.CreatedAt, day) {
				total += r.TicketTotal() + rp.concessionTotal(r)
			}
		}
		out.DailyBreakdown = append(out.DailyBreakdown, DayTotal{
			Day:   day.Format("Mon"),
			Date:  day.Format(dateLayout),
			Total: total,
		})
	}
	return out
}

// Monthly reports one calendar month with top sellers and a week-by-week
// breakdown.
func (rp *Reporter) Monthly(ctx context.Context, year int, month time.Month) SalesReport {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, -1)
	paid := rp.paidBetween(ctx, start, end)
	out := rp.build("MONTHLY SALES REPORT", start, end, paid)

	out.TopMovie = topByQuantity(out.MovieSales)
	out.TopConcession = topByQuantity(out.ConcessionSales)

	for weekFrom := start; !weekFrom.After(end); weekFrom = weekFrom.AddDate(0, 0, 7) {
		weekTo := weekFrom.AddDate(0, 0, 6)
		if weekTo.After(end) {
			weekTo = end
		}
		var total float64
		for _, r := range paid {
			if !dayBefore(r.CreatedAt, weekFrom) && !dayAfter(r.CreatedAt, weekTo) {
				total += r.TicketTotal() + rp.concessionTotal(r)
			}
		}
		out.WeeklyBreakdown = append(out.WeeklyBreakdown, WeekTotal{
			Start: weekFrom.Format(dateLayout),
			End:   weekTo.Format(dateLayout),
			Total: total,
		})
	}
	return out
}

// paidBetween filters to PAID reservations created inside the inclusive
// day range.
func (rp *Reporter) paidBetween(ctx context.Context, from, to time.Time) []model.Reservation {
	var out []model.Reservation
	for _, r := range rp.dir.All(ctx) {
		if r.Status != model.StatusPaid {
			continue
		}
		if dayBefore(r.CreatedAt, from) || dayAfter(r.CreatedAt, to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// build assembles the shared body of every report.
func (rp *Reporter) build(title string, from, to time.Time, paid []model.Reservation) SalesReport {
	movies := make(map[string]*LineSale)
	items := make(map[string]*LineSale)
	for i := range paid {
		r := &paid[i]
		m, ok := movies[r.Movie]
		if !ok {
			m = &LineSale{Name: r.Movie}
			movies[r.Movie] = m
		}
		m.Quantity += r.Quantity
		m.Amount += r.TicketTotal()

		for name, qty := range r.Concessions {
			if qty <= 0 {
				continue
			}
			it, ok := items[name]
			if !ok {
				it = &LineSale{Name: name}
				items[name] = it
			}
			it.Quantity += qty
			it.Amount += rp.itemPrice(name) * float64(qty)
		}
	}

	out := SalesReport{
		Title:           title,
		PeriodStart:     from.Format(dateLayout),
		PeriodEnd:       to.Format(dateLayout),
		MovieSales:      sortedLines(movies),
		ConcessionSales: sortedLines(items),
		Transactions:    len(paid),
	}
	for _, m := range out.MovieSales {
		out.TotalTickets += m.Quantity
		out.TicketSales += m.Amount
	}
	for _, it := range out.ConcessionSales {
		out.ConcessionTotal += it.Amount
	}
	out.GrandTotal = out.TicketSales + out.ConcessionTotal
	return out
}

// concessionTotal prices a reservation's order at current catalog prices,
// the way the desk system recomputed food totals for its charts.
func (rp *Reporter) concessionTotal(r model.Reservation) float64 {
	var total float64
	for name, qty := range r.Concessions {
		if qty > 0 {
			total += rp.itemPrice(name) * float64(qty)
		}
	}
	return total
}

func (rp *Reporter) itemPrice(name string) float64 {
	if item, ok := rp.ledger.Lookup(name); ok {
		return item.Price
	}
	return 0
}

func sortedLines(m map[string]*LineSale) []LineSale {
	out := make([]LineSale, 0, len(m))
	for _, l := range m {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func topByQuantity(lines []LineSale) string {
	best := ""
	bestQty := 0
	for _, l := range lines {
		if l.Quantity > bestQty {
			best, bestQty = l.Name, l.Quantity
		}
	}
	return best
}

// weekStart snaps a date back to its Monday.
func weekStart(date time.Time) time.Time {
	daysFromMonday := (int(date.Weekday()) - int(time.Monday) + 7) % 7
	y, m, d := date.AddDate(0, 0, -daysFromMonday).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dayBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC).Before(time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC))
}

func dayAfter(a, b time.Time) bool {
	return dayBefore(b, a)
}
