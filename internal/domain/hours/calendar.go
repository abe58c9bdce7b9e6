package hours

import (
	"errors"
	"strings"
	"time"

	"bistro/internal/domain/reservation"
)

var ErrInvalidKey = errors.New("hours key must be an ISO date or a weekday name")

// Rule is the service window for a weekday or a specific date.
// Close at or before Open means the service runs past midnight.
type Rule struct {
	Key    string
	Open   reservation.TimeOfDay
	Close  reservation.TimeOfDay
	Closed bool
}

type RuleSource interface {
	Lookup(key string) (Rule, bool)
}

// Contains reports whether at falls in the window. For a window past midnight the early
// hours count as the same date: a Saturday 18:00-02:00 rule admits Saturday 01:00, whatever
// Friday's rule says. Slots are always matched against their own date's rule.
func (r Rule) Contains(at reservation.TimeOfDay) bool {
	if r.Closed {
		return false
	}
	if r.Close <= r.Open {
		return at >= r.Open || at < r.Close
	}
	return at >= r.Open && at < r.Close
}

// RuleFor resolves the date override first, then the weekday default.
func RuleFor(src RuleSource, date reservation.Date) (Rule, bool) {
	if r, ok := src.Lookup(DateKey(date)); ok {
		return r, true
	}
	return src.Lookup(WeekdayKey(date.Weekday()))
}

// IsOpen: a date with no applicable rule is closed.
func IsOpen(src RuleSource, date reservation.Date, at reservation.TimeOfDay) bool {
	r, ok := RuleFor(src, date)
	if !ok {
		return false
	}
	return r.Contains(at)
}

func DateKey(d reservation.Date) string { return d.String() }

func WeekdayKey(w time.Weekday) string { return strings.ToLower(w.String()) }

// NormalizeKey lower-cases weekday names and validates date keys.
func NormalizeKey(key string) (string, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	for w := time.Sunday; w <= time.Saturday; w++ {
		if k == WeekdayKey(w) {
			return k, nil
		}
	}
	d, err := reservation.ParseDate(k)
	if err != nil {
		return "", ErrInvalidKey
	}
	return DateKey(d), nil
}

// Calendar is an in-memory RuleSource keyed by normalized key.
type Calendar map[string]Rule

func NewCalendar(rules ...Rule) (Calendar, error) {
	c := make(Calendar, len(rules))
	for _, r := range rules {
		key, err := NormalizeKey(r.Key)
		if err != nil {
			return nil, err
		}
		r.Key = key
		c[key] = r
	}
	return c, nil
}

func (c Calendar) Lookup(key string) (Rule, bool) {
	r, ok := c[key]
	return r, ok
}
