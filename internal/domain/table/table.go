package table

import (
	"errors"
	"sort"
)

var (
	ErrInvalidID    = errors.New("table id must be positive")
	ErrInvalidSeats = errors.New("table seats must be positive")
)

// Table is a physical table; the floor plan owns it and the engine only reads it.
type Table struct {
	id    int
	seats int
}

func New(id, seats int) (Table, error) {
	if id <= 0 {
		return Table{}, ErrInvalidID
	}
	if seats <= 0 {
		return Table{}, ErrInvalidSeats
	}
	return Table{id: id, seats: seats}, nil
}

func (t Table) ID() int    { return t.id }
func (t Table) Seats() int { return t.seats }

func (t Table) Fits(partySize int) bool {
	return partySize > 0 && partySize <= t.seats
}

// SortByCapacity orders tables smallest first, lower id on ties. The input is not modified.
func SortByCapacity(tables []Table) []Table {
	sorted := make([]Table, len(tables))
	copy(sorted, tables)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].seats != sorted[j].seats {
			return sorted[i].seats < sorted[j].seats
		}
		return sorted[i].id < sorted[j].id
	})
	return sorted
}

func Find(tables []Table, id int) (Table, bool) {
	for _, t := range tables {
		if t.id == id {
			return t, true
		}
	}
	return Table{}, false
}
