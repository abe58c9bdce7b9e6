//go:build unit

package hours_test

import (
	"testing"
	"time"

	"bistro/internal/domain/hours"
	"bistro/internal/domain/reservation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tod(h, m int) reservation.TimeOfDay { return reservation.MustTimeOfDay(h, m) }

func TestIsOpen(t *testing.T) {
	cal, err := hours.NewCalendar(
		hours.Rule{Key: "Tuesday", Open: tod(12, 0), Close: tod(23, 0)},
		hours.Rule{Key: "friday", Open: tod(18, 0), Close: tod(2, 0)},
		hours.Rule{Key: "2025-06-10", Open: tod(17, 0), Close: tod(20, 0)},
		hours.Rule{Key: "2025-06-17", Closed: true},
	)
	require.NoError(t, err)

	monday := reservation.NewDate(2025, time.June, 9)
	tuesday := reservation.NewDate(2025, time.June, 3)
	friday := reservation.NewDate(2025, time.June, 6)

	cases := []struct {
		name string
		date reservation.Date
		at   reservation.TimeOfDay
		want bool
	}{
		{"weekday without rule is closed", monday, tod(19, 0), false},
		{"inside weekday hours", tuesday, tod(19, 0), true},
		{"opening minute is open", tuesday, tod(12, 0), true},
		{"closing minute is closed", tuesday, tod(23, 0), false},
		{"past midnight service before close", friday, tod(1, 30), true},
		{"past midnight service late evening", friday, tod(23, 30), true},
		{"past midnight service afternoon", friday, tod(15, 0), false},
		{"friday's late service does not carry into saturday", friday.AddDays(1), tod(1, 0), false},
		{"date override narrows hours", reservation.NewDate(2025, time.June, 10), tod(21, 0), false},
		{"date override allows", reservation.NewDate(2025, time.June, 10), tod(19, 0), true},
		{"closed override", reservation.NewDate(2025, time.June, 17), tod(19, 0), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, hours.IsOpen(cal, c.date, c.at))
		})
	}
}

func TestIsOpen_EarlyHoursUseTheirOwnDate(t *testing.T) {
	cal, err := hours.NewCalendar(
		hours.Rule{Key: "friday", Closed: true},
		hours.Rule{Key: "saturday", Open: tod(18, 0), Close: tod(2, 0)},
	)
	require.NoError(t, err)

	saturday := reservation.NewDate(2025, time.June, 7)
	assert.True(t, hours.IsOpen(cal, saturday, tod(1, 0)), "saturday's own window admits 01:00")
	assert.True(t, hours.IsOpen(cal, saturday, tod(23, 0)))
	assert.False(t, hours.IsOpen(cal, saturday, tod(2, 0)))
	assert.False(t, hours.IsOpen(cal, saturday.AddDays(-1), tod(19, 0)))
}

func TestNormalizeKey(t *testing.T) {
	k, err := hours.NormalizeKey(" SUNDAY ")
	require.NoError(t, err)
	assert.Equal(t, "sunday", k)

	k, err = hours.NormalizeKey("2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", k)

	_, err = hours.NormalizeKey("someday")
	assert.ErrorIs(t, err, hours.ErrInvalidKey)
}
