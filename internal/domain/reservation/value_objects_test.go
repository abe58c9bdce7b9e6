//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"bistro/internal/domain/reservation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	t.Run("parse and format", func(t *testing.T) {
		d, err := reservation.ParseDate(" 2025-06-09 ")
		require.NoError(t, err)

		assert.Equal(t, "2025-06-09", d.String())
		assert.Equal(t, time.Monday, d.Weekday())
		assert.Equal(t, reservation.NewDate(2025, time.June, 10), d.AddDays(1))
		assert.True(t, d.Before(d.AddDays(1)))
	})

	t.Run("invalid", func(t *testing.T) {
		for _, in := range []string{"", "2025-13-01", "09/06/2025", "2025-02-30"} {
			_, err := reservation.ParseDate(in)
			assert.ErrorIs(t, err, reservation.ErrInvalidDate, in)
		}
	})

	t.Run("usable as map key", func(t *testing.T) {
		m := map[reservation.Date]int{reservation.NewDate(2025, time.June, 9): 1}
		d, err := reservation.ParseDate("2025-06-09")
		require.NoError(t, err)
		assert.Equal(t, 1, m[d])
	})

	t.Run("at uses the given location", func(t *testing.T) {
		loc := time.FixedZone("IDT", 3*60*60)
		got := reservation.NewDate(2025, time.June, 9).At(reservation.MustTimeOfDay(19, 30), loc)

		assert.Equal(t, time.Date(2025, time.June, 9, 16, 30, 0, 0, time.UTC), got.UTC())
	})
}

func TestTimeOfDay(t *testing.T) {
	t.Run("parse", func(t *testing.T) {
		cases := map[string]string{
			"19:00":    "19:00",
			"9:05":     "09:05",
			"23:59:59": "23:59",
			"00:00":    "00:00",
		}
		for in, want := range cases {
			got, err := reservation.ParseTimeOfDay(in)
			require.NoError(t, err, in)
			assert.Equal(t, want, got.String())
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, in := range []string{"24:00", "12:60", "noon", ""} {
			_, err := reservation.ParseTimeOfDay(in)
			assert.ErrorIs(t, err, reservation.ErrInvalidTime, in)
		}
	})

	t.Run("offset stays inside the day", func(t *testing.T) {
		late := reservation.MustTimeOfDay(23, 30)

		got, ok := late.Offset(-60)
		assert.True(t, ok)
		assert.Equal(t, reservation.MustTimeOfDay(22, 30), got)

		_, ok = late.Offset(30)
		assert.False(t, ok)

		_, ok = reservation.MustTimeOfDay(0, 15).Offset(-30)
		assert.False(t, ok)
	})

	t.Run("distance is symmetric", func(t *testing.T) {
		a, b := reservation.MustTimeOfDay(18, 0), reservation.MustTimeOfDay(19, 59)
		assert.Equal(t, 119*time.Minute, a.Distance(b))
		assert.Equal(t, a.Distance(b), b.Distance(a))
	})
}

func TestOwnerAndContact(t *testing.T) {
	_, err := reservation.NewSubscriberOwner(0)
	assert.ErrorIs(t, err, reservation.ErrInvalidOwner)

	o, err := reservation.NewSubscriberOwner(7)
	require.NoError(t, err)
	assert.True(t, o.IsValid())
	assert.False(t, o.IsGuest())

	g := reservation.GuestOwner()
	assert.True(t, g.IsValid())
	assert.Zero(t, g.SubscriberID())

	assert.False(t, reservation.Owner{}.IsValid())

	assert.Equal(t, "email", reservation.NewContact("a", "1", " a@b.c ").ChannelHint())
	assert.Equal(t, "sms", reservation.NewContact("a", "050", "").ChannelHint())
	assert.True(t, reservation.NewContact(" ", "", "").IsEmpty())
}
