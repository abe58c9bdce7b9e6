//go:build unit

package memstore_test

import (
	"context"
	"testing"
	"time"

	"bistro/internal/domain/reservation"
	"bistro/internal/infra"
	"bistro/internal/infra/memstore"
	"bistro/internal/pkg/errs"
	"bistro/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = reservation.NewDate(2025, time.June, 12)

func newRow(code string) *builder.ReservationBuilder {
	return builder.NewReservationBuilder().WithDate(day).WithCode(code)
}

func TestSave_AssignsIDs(t *testing.T) {
	ctx := context.Background()
	s := memstore.New(2 * time.Hour)

	first, err := s.Save(ctx, newRow("a").AsWaiting().BuildStored())
	require.NoError(t, err)
	second, err := s.Save(ctx, newRow("b").AsWaiting().BuildStored())
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
}

func TestSave_RejectsDoubleBooking(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		existing *builder.ReservationBuilder
		incoming *builder.ReservationBuilder
		conflict bool
	}{
		{
			name:     "same table inside the window",
			existing: newRow("a").WithTime(19, 0).AsApproved(1),
			incoming: newRow("b").WithTime(20, 59).AsApproved(1),
			conflict: true,
		},
		{
			name:     "same table at the window boundary",
			existing: newRow("a").WithTime(19, 0).AsApproved(1),
			incoming: newRow("b").WithTime(21, 0).AsApproved(1),
		},
		{
			name:     "active holder blocks too",
			existing: newRow("a").WithTime(18, 0).AsActive(1, time.Date(2025, time.June, 12, 18, 5, 0, 0, time.UTC)),
			incoming: newRow("b").WithTime(19, 0).AsApproved(1),
			conflict: true,
		},
		{
			name:     "other table",
			existing: newRow("a").WithTime(19, 0).AsApproved(1),
			incoming: newRow("b").WithTime(19, 0).AsApproved(2),
		},
		{
			name:     "cancelled rows do not hold",
			existing: newRow("a").WithTime(19, 0).WithStatus(reservation.StatusCancelled),
			incoming: newRow("b").WithTime(19, 0).AsApproved(1),
		},
		{
			name:     "other date",
			existing: newRow("a").WithDate(day.AddDays(1)).WithTime(19, 0).AsApproved(1),
			incoming: newRow("b").WithTime(19, 0).AsApproved(1),
		},
		{
			name:     "waiting rows never conflict",
			existing: newRow("a").WithTime(19, 0).AsApproved(1),
			incoming: newRow("b").WithTime(19, 0).AsWaiting(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := memstore.New(2 * time.Hour)
			_, err := s.Save(ctx, tc.existing.BuildStored())
			require.NoError(t, err)

			_, err = s.Save(ctx, tc.incoming.BuildStored())
			if !tc.conflict {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrBookingConflict))
			assert.True(t, infra.IsKind(err, infra.KindConflict))
		})
	}
}

func TestSave_Update(t *testing.T) {
	ctx := context.Background()
	s := memstore.New(2 * time.Hour)
	id, err := s.Save(ctx, newRow("a").AsApproved(1).BuildStored())
	require.NoError(t, err)

	t.Run("an update does not conflict with itself", func(t *testing.T) {
		r, err := s.FindReservation(ctx, id)
		require.NoError(t, err)
		_, err = s.Save(ctx, r)
		require.NoError(t, err)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.Save(ctx, newRow("z").WithID(77).AsWaiting().BuildStored())
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrReservationNotFound))
	})

	t.Run("duplicate confirmation code", func(t *testing.T) {
		_, err := s.Save(ctx, newRow("a").AsWaiting().BuildStored())
		require.Error(t, err)
		assert.True(t, infra.IsKind(err, infra.KindDuplicateKey))
	})
}

func TestFind_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := memstore.New(2 * time.Hour)
	id, err := s.Save(ctx, newRow("a").AsApproved(1).BuildStored())
	require.NoError(t, err)

	loaded, err := s.FindReservation(ctx, id)
	require.NoError(t, err)
	require.NoError(t, loaded.Cancel(time.Now()))

	again, err := s.FindReservation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusApproved, again.Status())
	assert.Equal(t, 1, again.TableID())
}

func TestFind_Filters(t *testing.T) {
	ctx := context.Background()
	s := memstore.New(2 * time.Hour)
	s.Seed(newRow("a").WithID(1).AsApproved(1).BuildStored())
	s.Seed(newRow("b").WithID(2).AsWaiting().BuildStored())
	s.Seed(newRow("c").WithID(3).AsGuest().AsWaiting().BuildStored())
	s.Seed(newRow("d").WithID(4).WithDate(day.AddDays(1)).WithSubscriber(8).AsApproved(1).BuildStored())

	ids := func(rs []*reservation.Reservation) []int64 {
		out := make([]int64, len(rs))
		for i, r := range rs {
			out[i] = r.ID()
		}
		return out
	}

	byDate, err := s.FindReservationsByDate(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids(byDate))

	waiting, err := s.FindReservationsByDate(ctx, day, reservation.StatusWaiting)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(waiting))

	approved, err := s.FindReservationsByStatus(ctx, reservation.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, ids(approved))

	guests, err := s.FindReservationsByOwner(ctx, reservation.GuestOwner())
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(guests))

	byCode, err := s.FindReservationByConfirmationCode(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, int64(4), byCode.ID())

	_, err = s.FindReservationByConfirmationCode(ctx, "missing")
	assert.True(t, errs.Is(err, errs.ErrReservationNotFound))
}

func TestSeed_AdvancesTheSequence(t *testing.T) {
	ctx := context.Background()
	s := memstore.New(2 * time.Hour)
	s.Seed(newRow("a").WithID(10).AsWaiting().BuildStored())

	id, err := s.Save(ctx, newRow("b").AsWaiting().BuildStored())
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := memstore.New(2 * time.Hour)

	_, err := s.FindReservation(ctx, 1)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrStoreUnavailable))
}
