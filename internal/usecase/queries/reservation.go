package queries

import (
	"context"
	"sort"
	"time"

	"bistro/internal/domain/reservation"
	"bistro/internal/pkg/errs"
	"bistro/internal/usecase/shared"
)

// Alternative offsets in minutes, tried in this order.
var alternativeOffsets = []int{-60, -30, 30, 60}

var ErrInvalidCursor = errs.New("invalid cursor")

// Read models (DTO for read side)
type ReservationView struct {
	ID               int64
	Date             string
	Time             string
	PartySize        int
	Status           string
	TableID          *int
	SubscriberID     *int64
	Guest            bool
	ContactName      string
	ContactPhone     string
	ContactEmail     string
	ConfirmationCode string
	ArrivalTime      *time.Time
	DepartureTime    *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type TableView struct {
	ID    int
	Seats int
}

func NewReservationView(r *reservation.Reservation) *ReservationView {
	v := &ReservationView{
		ID:               r.ID(),
		Date:             r.Date().String(),
		Time:             r.Time().String(),
		PartySize:        r.PartySize(),
		Status:           r.Status().String(),
		Guest:            r.Owner().IsGuest(),
		ContactName:      r.Contact().Name,
		ContactPhone:     r.Contact().Phone,
		ContactEmail:     r.Contact().Email,
		ConfirmationCode: r.ConfirmationCode(),
		ArrivalTime:      r.ArrivalTime(),
		DepartureTime:    r.DepartureTime(),
		CreatedAt:        r.CreatedAt(),
		UpdatedAt:        r.UpdatedAt(),
	}
	if r.HasTable() {
		id := r.TableID()
		v.TableID = &id
	}
	if !r.Owner().IsGuest() {
		id := r.Owner().SubscriberID()
		v.SubscriberID = &id
	}
	return v
}

type ReservationQueries interface {
	// SuggestAlternatives runs the allocation check read-only around the requested time.
	SuggestAlternatives(ctx context.Context, date reservation.Date, at reservation.TimeOfDay, partySize int) ([]reservation.TimeOfDay, error)
	GetReservation(ctx context.Context, id int64) (*ReservationView, error)
	GetByConfirmationCode(ctx context.Context, code string) (*ReservationView, error)
	// ListByOwner pages through the history of an owner, newest first.
	ListByOwner(ctx context.Context, owner reservation.Owner, cursor *Cursor, limit int) ([]*ReservationView, *Cursor, error)
	WaitingList(ctx context.Context, date reservation.Date) ([]*ReservationView, error)
	// ListByDate returns the reservations of a date ordered by time, all statuses when none are given.
	ListByDate(ctx context.Context, date reservation.Date, statuses ...reservation.Status) ([]*ReservationView, error)
	ListTables(ctx context.Context) ([]*TableView, error)
}

type reservationQueriesImpl struct {
	store  shared.ReservationStore
	tables shared.TableInventory
	policy shared.Policy
}

func NewReservationQueries(store shared.ReservationStore, tables shared.TableInventory, policy shared.Policy) ReservationQueries {
	return &reservationQueriesImpl{
		store:  store,
		tables: tables,
		policy: policy,
	}
}

func (q *reservationQueriesImpl) SuggestAlternatives(ctx context.Context, date reservation.Date, at reservation.TimeOfDay, partySize int) ([]reservation.TimeOfDay, error) {
	if partySize < 1 {
		return nil, nil
	}
	ctx, cancel := q.policy.WithStoreTimeout(ctx)
	defer cancel()

	tables, err := q.tables.AllTables(ctx)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to load tables"), errs.ErrStoreUnavailable)
	}
	holders, err := q.store.FindReservationsByDate(ctx, date, reservation.HoldingStatuses...)
	if err != nil {
		return nil, readErr(err, "failed to list reservations by date")
	}

	alternatives := make([]reservation.TimeOfDay, 0, len(alternativeOffsets))
	for _, offset := range alternativeOffsets {
		candidate, ok := at.Offset(offset)
		if !ok {
			continue
		}
		if _, fits := reservation.SelectTable(tables, holders, candidate, partySize, q.policy.OccupancyWindow, 0); fits {
			alternatives = append(alternatives, candidate)
		}
	}
	return alternatives, nil
}

func (q *reservationQueriesImpl) GetReservation(ctx context.Context, id int64) (*ReservationView, error) {
	ctx, cancel := q.policy.WithStoreTimeout(ctx)
	defer cancel()

	r, err := q.store.FindReservation(ctx, id)
	if err != nil {
		return nil, readErr(err, "failed to get reservation")
	}
	return NewReservationView(r), nil
}

func (q *reservationQueriesImpl) GetByConfirmationCode(ctx context.Context, code string) (*ReservationView, error) {
	ctx, cancel := q.policy.WithStoreTimeout(ctx)
	defer cancel()

	r, err := q.store.FindReservationByConfirmationCode(ctx, code)
	if err != nil {
		return nil, readErr(err, "failed to get reservation by confirmation code")
	}
	return NewReservationView(r), nil
}

func (q *reservationQueriesImpl) ListByOwner(ctx context.Context, owner reservation.Owner, cursor *Cursor, limit int) ([]*ReservationView, *Cursor, error) {
	limit = ValidateLimit(limit)
	var before int64
	if cursor != nil && cursor.After != "" {
		id, err := DecodeAfterCursor(cursor.After)
		if err != nil {
			return nil, nil, errs.Mark(err, ErrInvalidCursor)
		}
		before = id
	}

	ctx, cancel := q.policy.WithStoreTimeout(ctx)
	defer cancel()

	rs, err := q.store.FindReservationsByOwner(ctx, owner)
	if err != nil {
		return nil, nil, readErr(err, "failed to list reservations by owner")
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i].ID() > rs[j].ID() })

	rows := make([]*ReservationView, 0, limit+1)
	for _, r := range rs {
		if before != 0 && r.ID() >= before {
			continue
		}
		rows = append(rows, NewReservationView(r))
		if len(rows) > limit {
			break
		}
	}

	var next *Cursor
	if len(rows) > limit {
		next = &Cursor{After: EncodeAfterCursor(rows[limit-1].ID)}
		rows = rows[:limit]
	}
	return rows, next, nil
}

func (q *reservationQueriesImpl) WaitingList(ctx context.Context, date reservation.Date) ([]*ReservationView, error) {
	ctx, cancel := q.policy.WithStoreTimeout(ctx)
	defer cancel()

	rs, err := q.store.FindReservationsByDate(ctx, date, reservation.StatusWaiting)
	if err != nil {
		return nil, readErr(err, "failed to list waiting reservations")
	}
	views := make([]*ReservationView, len(rs))
	for i, r := range rs {
		views[i] = NewReservationView(r)
	}
	return views, nil
}

func (q *reservationQueriesImpl) ListByDate(ctx context.Context, date reservation.Date, statuses ...reservation.Status) ([]*ReservationView, error) {
	ctx, cancel := q.policy.WithStoreTimeout(ctx)
	defer cancel()

	rs, err := q.store.FindReservationsByDate(ctx, date, statuses...)
	if err != nil {
		return nil, readErr(err, "failed to list reservations by date")
	}
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Time() != rs[j].Time() {
			return rs[i].Time() < rs[j].Time()
		}
		return rs[i].ID() < rs[j].ID()
	})

	views := make([]*ReservationView, len(rs))
	for i, r := range rs {
		views[i] = NewReservationView(r)
	}
	return views, nil
}

func (q *reservationQueriesImpl) ListTables(ctx context.Context) ([]*TableView, error) {
	tables, err := q.tables.AllTables(ctx)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to load tables"), errs.ErrStoreUnavailable)
	}
	views := make([]*TableView, len(tables))
	for i, t := range tables {
		views[i] = &TableView{ID: t.ID(), Seats: t.Seats()}
	}
	return views, nil
}

func readErr(err error, msg string) error {
	wrapped := errs.Wrap(err, msg)
	if errs.Is(err, errs.ErrReservationNotFound) || errs.Is(err, errs.ErrStoreUnavailable) {
		return wrapped
	}
	return errs.Mark(wrapped, errs.ErrStoreUnavailable)
}
