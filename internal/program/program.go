// Package program holds the screening schedule: which movies are showing,
// at which times, and at what ticket price.  The program is fixed for the
// run of the service; seat grids are created lazily per (movie, showtime)
// the first time a screening is referenced.
package program

import (
	"errors"
	"strings"

	"github.com/cinehall/cinema-booking/internal/model"
)

// ErrUnknownShow is returned when a (movie, showtime) pair is not part of
// the current program.
var ErrUnknownShow = errors.New("unknown movie or showtime")

// Showtime is one scheduled screening slot with its ticket price in pesos.
// Prices vary per slot, not per movie.
type Showtime struct {
	Label string `json:"label"`
	Price int    `json:"price"`
}

// Movie is a title together with its scheduled showtimes.
type Movie struct {
	Title     string     `json:"title"`
	Showtimes []Showtime `json:"showtimes"`
}

// Program is the full screening schedule.
type Program struct {
	movies []Movie
}

// Default returns the schedule the cinema currently runs.
func Default() *Program {
	return &Program{movies: []Movie{
		{Title: "Heneral Luna", Showtimes: []Showtime{
			{Label: "12:30 PM", Price: 250},
			{Label: "4:00 PM", Price: 260},
			{Label: "7:30 PM", Price: 270},
		}},
		{Title: "Conjuring V", Showtimes: []Showtime{
			{Label: "3:00 AM", Price: 300},
			{Label: "3:00 PM", Price: 350},
		}},
		{Title: "Encanto", Showtimes: []Showtime{
			{Label: "1:00 PM", Price: 200},
			{Label: "4:00 PM", Price: 210},
		}},
	}}
}

// Movies lists the program in display order.
func (p *Program) Movies() []Movie { return p.movies }

// Lookup resolves a (movie, showtime) pair to its ticket price.  Titles
// and labels are matched case-insensitively.  Returns ErrUnknownShow when
// the pair is not on the program.
func (p *Program) Lookup(movie, showtime string) (int, error) {
	for _, m := range p.movies {
		if !strings.EqualFold(m.Title, movie) {
			continue
		}
		for _, s := range m.Showtimes {
			if strings.EqualFold(s.Label, showtime) {
				return s.Price, nil
			}
		}
	}
	return 0, ErrUnknownShow
}

// Resolve is like Lookup but also returns the canonical casing of the
// title and label, so a reservation never stores a caller's variant
// spelling as its grid key.
func (p *Program) Resolve(movie, showtime string) (model.ShowKey, int, error) {
	for _, m := range p.movies {
		if !strings.EqualFold(m.Title, movie) {
			continue
		}
		for _, s := range m.Showtimes {
			if strings.EqualFold(s.Label, showtime) {
				return model.ShowKey{Movie: m.Title, Showtime: s.Label}, s.Price, nil
			}
		}
	}
	return model.ShowKey{}, 0, ErrUnknownShow
}
