package memstore

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"bistro/internal/domain/reservation"
	"bistro/internal/infra"
	"bistro/internal/usecase/shared"

	"github.com/jinzhu/copier"
)

// Store keeps reservations in process memory. Rows are deep copied on the way in and out,
// so callers never share state with the arena.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*reservation.Snapshot
	byDate map[reservation.Date][]int64
	byCode map[string]int64
	window time.Duration
	logger *slog.Logger
}

var _ shared.ReservationStore = (*Store)(nil)

// New builds an empty store; window is the occupancy window used by the conflict check.
func New(window time.Duration) *Store {
	return &Store{
		rows:   map[int64]*reservation.Snapshot{},
		byDate: map[reservation.Date][]int64{},
		byCode: map[string]int64{},
		window: window,
		logger: slog.Default(),
	}
}

func (s *Store) FindReservation(ctx context.Context, id int64) (*reservation.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, infra.WrapRepoErr(s.logger, "find reservation", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, infra.WrapRepoErr(s.logger, "find reservation", nil, infra.KindNotFound)
	}
	return s.load(row)
}

func (s *Store) FindReservationsByDate(ctx context.Context, date reservation.Date, statuses ...reservation.Status) ([]*reservation.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, infra.WrapRepoErr(s.logger, "find reservations by date", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.byDate[date], func(row *reservation.Snapshot) bool {
		return matchStatus(row.Status, statuses)
	})
}

func (s *Store) FindReservationsByOwner(ctx context.Context, owner reservation.Owner) ([]*reservation.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, infra.WrapRepoErr(s.logger, "find reservations by owner", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.allIDs(), func(row *reservation.Snapshot) bool {
		return row.OwnerKind == owner.Kind() && row.SubscriberID == owner.SubscriberID()
	})
}

func (s *Store) FindReservationsByStatus(ctx context.Context, statuses ...reservation.Status) ([]*reservation.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, infra.WrapRepoErr(s.logger, "find reservations by status", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.allIDs(), func(row *reservation.Snapshot) bool {
		return matchStatus(row.Status, statuses)
	})
}

func (s *Store) FindReservationByConfirmationCode(ctx context.Context, code string) (*reservation.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, infra.WrapRepoErr(s.logger, "find reservation by code", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byCode[code]
	if !ok {
		return nil, infra.WrapRepoErr(s.logger, "find reservation by code", nil, infra.KindNotFound)
	}
	return s.load(s.rows[id])
}

func (s *Store) Save(ctx context.Context, r *reservation.Reservation) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, infra.WrapRepoErr(s.logger, "save reservation", err)
	}
	snap := r.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.ID != 0 {
		if _, ok := s.rows[snap.ID]; !ok {
			return 0, infra.WrapRepoErr(s.logger, "save reservation", nil, infra.KindNotFound)
		}
	} else if _, taken := s.byCode[snap.ConfirmationCode]; taken {
		return 0, infra.WrapRepoErr(s.logger, "save reservation", nil, infra.KindDuplicateKey)
	}
	if s.conflicts(&snap) {
		return 0, infra.WrapRepoErr(s.logger, "save reservation", nil, infra.KindConflict)
	}

	if snap.ID == 0 {
		s.nextID++
		snap.ID = s.nextID
	} else if snap.ID > s.nextID {
		s.nextID = snap.ID
	}

	row := new(reservation.Snapshot)
	if err := copier.CopyWithOption(row, &snap, copier.Option{DeepCopy: true}); err != nil {
		return 0, infra.WrapRepoErr(s.logger, "copy reservation", err)
	}
	if _, exists := s.rows[row.ID]; !exists {
		s.index(row)
	}
	s.rows[row.ID] = row
	return row.ID, nil
}

// Seed inserts a reservation with an explicit id, bypassing the conflict check.
func (s *Store) Seed(r *reservation.Reservation) {
	snap := r.Snapshot()
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.ID == 0 {
		s.nextID++
		snap.ID = s.nextID
	} else if snap.ID > s.nextID {
		s.nextID = snap.ID
	}
	if _, exists := s.rows[snap.ID]; !exists {
		s.index(&snap)
	}
	s.rows[snap.ID] = &snap
	r.AssignID(snap.ID)
}

// conflicts reports whether a holding write would share its table with an overlapping holder.
func (s *Store) conflicts(snap *reservation.Snapshot) bool {
	if !snap.Status.HoldsTable() || snap.TableID == 0 {
		return false
	}
	for _, id := range s.byDate[snap.Date] {
		if id == snap.ID {
			continue
		}
		other := s.rows[id]
		if other.TableID == snap.TableID && other.Status.HoldsTable() && other.Time.Distance(snap.Time) < s.window {
			return true
		}
	}
	return false
}

func (s *Store) index(row *reservation.Snapshot) {
	ids := append(s.byDate[row.Date], row.ID)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	s.byDate[row.Date] = ids
	if row.ConfirmationCode != "" {
		s.byCode[row.ConfirmationCode] = row.ID
	}
}

func (s *Store) allIDs() []int64 {
	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Store) collect(ids []int64, keep func(*reservation.Snapshot) bool) ([]*reservation.Reservation, error) {
	out := make([]*reservation.Reservation, 0, len(ids))
	for _, id := range ids {
		row := s.rows[id]
		if !keep(row) {
			continue
		}
		r, err := s.load(row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) load(row *reservation.Snapshot) (*reservation.Reservation, error) {
	var snap reservation.Snapshot
	if err := copier.CopyWithOption(&snap, row, copier.Option{DeepCopy: true}); err != nil {
		return nil, infra.WrapRepoErr(s.logger, "copy reservation", err)
	}
	return reservation.Reconstruct(snap), nil
}

func matchStatus(s reservation.Status, statuses []reservation.Status) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, want := range statuses {
		if s == want {
			return true
		}
	}
	return false
}
