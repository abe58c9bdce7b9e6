//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"bistro/internal/domain/reservation"
	"bistro/internal/domain/table"
	"bistro/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTables(t *testing.T, seats map[int]int) []table.Table {
	t.Helper()
	tables := make([]table.Table, 0, len(seats))
	for id, n := range seats {
		tb, err := table.New(id, n)
		require.NoError(t, err)
		tables = append(tables, tb)
	}
	return tables
}

func TestSelectTable(t *testing.T) {
	window := 2 * time.Hour
	at := reservation.MustTimeOfDay(19, 0)
	tables := mustTables(t, map[int]int{1: 6, 2: 2, 3: 4, 4: 4})

	t.Run("smallest fitting table wins", func(t *testing.T) {
		got, ok := reservation.SelectTable(tables, nil, at, 3, window, 0)
		require.True(t, ok)
		assert.Equal(t, 3, got.ID(), "4 seats, lower id on ties")
	})

	t.Run("overlapping holders occupy their tables", func(t *testing.T) {
		holders := []*reservation.Reservation{
			builder.NewReservationBuilder().WithID(1).WithTime(17, 1).AsApproved(3).BuildStored(),
		}
		got, ok := reservation.SelectTable(tables, holders, at, 3, window, 0)
		require.True(t, ok)
		assert.Equal(t, 4, got.ID())
	})

	t.Run("exactly one window apart does not overlap", func(t *testing.T) {
		holders := []*reservation.Reservation{
			builder.NewReservationBuilder().WithID(1).WithTime(17, 0).AsApproved(3).BuildStored(),
			builder.NewReservationBuilder().WithID(2).WithTime(21, 0).AsApproved(4).BuildStored(),
		}
		got, ok := reservation.SelectTable(tables, holders, at, 3, window, 0)
		require.True(t, ok)
		assert.Equal(t, 3, got.ID())
	})

	t.Run("finished and cancelled do not hold", func(t *testing.T) {
		holders := []*reservation.Reservation{
			builder.NewReservationBuilder().WithID(1).WithStatus(reservation.StatusFinished).WithTable(3).BuildStored(),
			builder.NewReservationBuilder().WithID(2).WithStatus(reservation.StatusCancelled).BuildStored(),
		}
		got, ok := reservation.SelectTable(tables, holders, at, 3, window, 0)
		require.True(t, ok)
		assert.Equal(t, 3, got.ID())
	})

	t.Run("excluded reservation does not block itself", func(t *testing.T) {
		holders := []*reservation.Reservation{
			builder.NewReservationBuilder().WithID(8).AsApproved(2).BuildStored(),
		}
		assert.True(t, reservation.TableFree(tables, holders, 2, at, 2, window, 8))
		assert.False(t, reservation.TableFree(tables, holders, 2, at, 2, window, 0))
		assert.False(t, reservation.TableFree(tables, holders, 2, at, 3, window, 8), "too small")
		assert.False(t, reservation.TableFree(tables, holders, 99, at, 2, window, 8), "unknown table")
	})

	t.Run("no fit", func(t *testing.T) {
		_, ok := reservation.SelectTable(tables, nil, at, 7, window, 0)
		assert.False(t, ok)
	})
}
