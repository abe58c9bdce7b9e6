package reservation

import (
	"time"

	"bistro/internal/domain/table"
)

// OccupiedTables collects the tables held by reservations of one date that overlap a seating at `at`.
// The reservation with id `exclude` is ignored so that a party never blocks itself.
func OccupiedTables(holders []*Reservation, at TimeOfDay, window time.Duration, exclude int64) map[int]struct{} {
	occupied := make(map[int]struct{}, len(holders))
	for _, h := range holders {
		if exclude != 0 && h.ID() == exclude {
			continue
		}
		if h.Blocks(at, window) {
			occupied[h.TableID()] = struct{}{}
		}
	}
	return occupied
}

// SelectTable is first-fit by capacity: the smallest free table that seats the party, lower id on ties.
func SelectTable(tables []table.Table, holders []*Reservation, at TimeOfDay, partySize int, window time.Duration, exclude int64) (table.Table, bool) {
	occupied := OccupiedTables(holders, at, window, exclude)
	for _, t := range table.SortByCapacity(tables) {
		if _, taken := occupied[t.ID()]; taken {
			continue
		}
		if t.Fits(partySize) {
			return t, true
		}
	}
	return table.Table{}, false
}

// TableFree reports whether the given table seats the party and is not held at `at` by anyone else.
func TableFree(tables []table.Table, holders []*Reservation, tableID int, at TimeOfDay, partySize int, window time.Duration, exclude int64) bool {
	t, ok := table.Find(tables, tableID)
	if !ok || !t.Fits(partySize) {
		return false
	}
	_, taken := OccupiedTables(holders, at, window, exclude)[tableID]
	return !taken
}
