//go:build unit

package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"bistro/internal/domain/hours"
	"bistro/internal/domain/reservation"
	"bistro/internal/domain/table"
	"bistro/internal/infra/floorplan"
	"bistro/internal/infra/memstore"
	"bistro/internal/pkg/errs"
	"bistro/internal/usecase/queries"
	"bistro/internal/usecase/shared"
	"bistro/tests/common/builder"
	sharedmock "bistro/tests/mock/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var friday = reservation.NewDate(2025, time.June, 13)

func newFloorplan(t *testing.T, seats ...int) *floorplan.Floorplan {
	t.Helper()
	tables := make([]table.Table, len(seats))
	for i, s := range seats {
		tb, err := table.New(i+1, s)
		require.NoError(t, err)
		tables[i] = tb
	}
	plan, err := floorplan.NewPlan(tables, hours.Rule{
		Key:   "friday",
		Open:  reservation.MustTimeOfDay(12, 0),
		Close: reservation.MustTimeOfDay(23, 0),
	})
	require.NoError(t, err)
	return floorplan.FromPlan(plan)
}

func newQueries(t *testing.T, store shared.ReservationStore, seats ...int) queries.ReservationQueries {
	t.Helper()
	return queries.NewReservationQueries(store, newFloorplan(t, seats...), shared.DefaultPolicy())
}

func times(ts ...string) []reservation.TimeOfDay {
	out := make([]reservation.TimeOfDay, len(ts))
	for i, s := range ts {
		tod, err := reservation.ParseTimeOfDay(s)
		if err != nil {
			panic(err)
		}
		out[i] = tod
	}
	return out
}

func TestSuggestAlternatives(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name    string
		holders []*builder.ReservationBuilder
		at      reservation.TimeOfDay
		party   int
		want    []reservation.TimeOfDay
	}{
		{
			name:  "empty floor offers every offset",
			at:    reservation.MustTimeOfDay(19, 0),
			party: 2,
			want:  times("18:00", "18:30", "19:30", "20:00"),
		},
		{
			name: "only slots outside the occupancy window",
			holders: []*builder.ReservationBuilder{
				builder.NewReservationBuilder().WithID(1).WithDate(friday).WithTime(19, 0).AsApproved(1),
			},
			at:    reservation.MustTimeOfDay(21, 0),
			party: 2,
			want:  times("21:30", "22:00"),
		},
		{
			name: "nothing fits around a fully booked slot",
			holders: []*builder.ReservationBuilder{
				builder.NewReservationBuilder().WithID(1).WithDate(friday).WithTime(19, 0).AsApproved(1),
			},
			at:    reservation.MustTimeOfDay(19, 0),
			party: 2,
			want:  []reservation.TimeOfDay{},
		},
		{
			name:  "offsets leaving the day are skipped",
			at:    reservation.MustTimeOfDay(23, 40),
			party: 2,
			want:  times("22:40", "23:10"),
		},
		{
			name:  "party larger than every table",
			at:    reservation.MustTimeOfDay(19, 0),
			party: 9,
			want:  []reservation.TimeOfDay{},
		},
		{
			name: "waiting and cancelled reservations do not block",
			holders: []*builder.ReservationBuilder{
				builder.NewReservationBuilder().WithID(1).WithDate(friday).WithTime(19, 0).AsWaiting(),
				builder.NewReservationBuilder().WithID(2).WithDate(friday).WithTime(19, 0).WithStatus(reservation.StatusCancelled),
			},
			at:    reservation.MustTimeOfDay(19, 0),
			party: 4,
			want:  times("18:00", "18:30", "19:30", "20:00"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := memstore.New(2 * time.Hour)
			for _, b := range tc.holders {
				store.Seed(b.BuildStored())
			}
			q := newQueries(t, store, 4)

			got, err := q.SuggestAlternatives(ctx, friday, tc.at, tc.party)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("invalid party size suggests nothing", func(t *testing.T) {
		q := newQueries(t, memstore.New(2*time.Hour), 4)

		got, err := q.SuggestAlternatives(ctx, friday, reservation.MustTimeOfDay(19, 0), 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("store failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := sharedmock.NewMockReservationStore(ctrl)
		store.EXPECT().
			FindReservationsByDate(gomock.Any(), friday, reservation.StatusApproved, reservation.StatusActive).
			Return(nil, errors.New("timeout"))
		q := newQueries(t, store, 4)

		_, err := q.SuggestAlternatives(ctx, friday, reservation.MustTimeOfDay(19, 0), 2)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrStoreUnavailable))
	})
}

func TestGetReservation(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(2 * time.Hour)
	store.Seed(builder.NewReservationBuilder().WithID(3).WithDate(friday).AsApproved(2).WithCode("code-3").BuildStored())
	store.Seed(builder.NewReservationBuilder().WithID(4).WithDate(friday).AsGuest().AsWaiting().WithCode("code-4").BuildStored())
	q := newQueries(t, store, 4, 4)

	t.Run("by id", func(t *testing.T) {
		view, err := q.GetReservation(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), view.ID)
		assert.Equal(t, "2025-06-13", view.Date)
		assert.Equal(t, "19:00", view.Time)
		assert.Equal(t, "APPROVED", view.Status)
		require.NotNil(t, view.TableID)
		assert.Equal(t, 2, *view.TableID)
		require.NotNil(t, view.SubscriberID)
		assert.Equal(t, int64(42), *view.SubscriberID)
		assert.False(t, view.Guest)
	})

	t.Run("by confirmation code", func(t *testing.T) {
		view, err := q.GetByConfirmationCode(ctx, "code-4")
		require.NoError(t, err)
		assert.Equal(t, int64(4), view.ID)
		assert.True(t, view.Guest)
		assert.Nil(t, view.SubscriberID)
		assert.Nil(t, view.TableID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := q.GetReservation(ctx, 99)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrReservationNotFound))
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := q.GetByConfirmationCode(ctx, "nope")
		assert.True(t, errs.Is(err, errs.ErrReservationNotFound))
	})
}

func TestListByOwner(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(2 * time.Hour)
	for id := int64(1); id <= 5; id++ {
		store.Seed(builder.NewReservationBuilder().WithID(id).WithDate(friday).WithSubscriber(42).BuildStored())
	}
	store.Seed(builder.NewReservationBuilder().WithID(6).WithDate(friday).WithSubscriber(7).BuildStored())
	store.Seed(builder.NewReservationBuilder().WithID(7).WithDate(friday).AsGuest().BuildStored())
	q := newQueries(t, store, 4)

	owner, err := reservation.NewSubscriberOwner(42)
	require.NoError(t, err)

	ids := func(views []*queries.ReservationView) []int64 {
		out := make([]int64, len(views))
		for i, v := range views {
			out[i] = v.ID
		}
		return out
	}

	t.Run("pages newest first", func(t *testing.T) {
		page1, next, err := q.ListByOwner(ctx, owner, nil, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{5, 4}, ids(page1))
		require.NotNil(t, next)

		page2, next, err := q.ListByOwner(ctx, owner, next, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 2}, ids(page2))
		require.NotNil(t, next)

		page3, next, err := q.ListByOwner(ctx, owner, next, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, ids(page3))
		assert.Nil(t, next)
	})

	t.Run("exact page has no next cursor", func(t *testing.T) {
		views, next, err := q.ListByOwner(ctx, owner, &queries.Cursor{}, 5)
		require.NoError(t, err)
		assert.Len(t, views, 5)
		assert.Nil(t, next)
	})

	t.Run("guests are an owner of their own", func(t *testing.T) {
		views, _, err := q.ListByOwner(ctx, reservation.GuestOwner(), nil, 0)
		require.NoError(t, err)
		assert.Equal(t, []int64{7}, ids(views))
	})

	t.Run("garbage cursor", func(t *testing.T) {
		_, _, err := q.ListByOwner(ctx, owner, &queries.Cursor{After: "%%%"}, 2)
		require.Error(t, err)
		assert.True(t, errs.Is(err, queries.ErrInvalidCursor))
	})
}

func TestWaitingList(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(2 * time.Hour)
	store.Seed(builder.NewReservationBuilder().WithID(9).WithDate(friday).AsWaiting().BuildStored())
	store.Seed(builder.NewReservationBuilder().WithID(2).WithDate(friday).AsWaiting().BuildStored())
	store.Seed(builder.NewReservationBuilder().WithID(5).WithDate(friday).AsApproved(1).BuildStored())
	store.Seed(builder.NewReservationBuilder().WithID(6).WithDate(friday.AddDays(1)).AsWaiting().BuildStored())
	q := newQueries(t, store, 4)

	views, err := q.WaitingList(ctx, friday)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, int64(2), views[0].ID)
	assert.Equal(t, int64(9), views[1].ID)
}

func TestListByDate(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(2 * time.Hour)
	store.Seed(builder.NewReservationBuilder().WithID(4).WithDate(friday).WithTime(21, 0).AsApproved(1).BuildStored())
	store.Seed(builder.NewReservationBuilder().WithID(3).WithDate(friday).WithTime(18, 30).
		AsActive(2, time.Date(2025, time.June, 13, 18, 30, 0, 0, time.UTC)).BuildStored())
	store.Seed(builder.NewReservationBuilder().WithID(7).WithDate(friday).WithTime(18, 30).AsApproved(1).BuildStored())
	store.Seed(builder.NewReservationBuilder().WithID(8).WithDate(friday).WithTime(19, 0).AsWaiting().BuildStored())
	store.Seed(builder.NewReservationBuilder().WithID(9).WithDate(friday.AddDays(1)).AsApproved(1).BuildStored())
	q := newQueries(t, store, 4, 4)

	ids := func(views []*queries.ReservationView) []int64 {
		out := make([]int64, len(views))
		for i, v := range views {
			out[i] = v.ID
		}
		return out
	}

	t.Run("every status ordered by time then id", func(t *testing.T) {
		views, err := q.ListByDate(ctx, friday)
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 7, 8, 4}, ids(views))
	})

	t.Run("filtered by status", func(t *testing.T) {
		views, err := q.ListByDate(ctx, friday, reservation.StatusApproved, reservation.StatusActive)
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 7, 4}, ids(views))
		assert.Equal(t, "ACTIVE", views[0].Status)
	})

	t.Run("empty date", func(t *testing.T) {
		views, err := q.ListByDate(ctx, friday.AddDays(7))
		require.NoError(t, err)
		assert.Empty(t, views)
	})

	t.Run("store down", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		down := sharedmock.NewMockReservationStore(ctrl)
		down.EXPECT().FindReservationsByDate(gomock.Any(), friday, reservation.StatusWaiting).
			Return(nil, errors.New("connection refused"))

		_, err := newQueries(t, down, 4).ListByDate(ctx, friday, reservation.StatusWaiting)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrStoreUnavailable))
	})
}

func TestListTables(t *testing.T) {
	q := newQueries(t, memstore.New(2*time.Hour), 6, 2, 4)

	views, err := q.ListTables(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 3)

	seats := map[int]int{}
	for _, v := range views {
		seats[v.ID] = v.Seats
	}
	assert.Equal(t, map[int]int{1: 6, 2: 2, 3: 4}, seats)
}
