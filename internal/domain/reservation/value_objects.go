package reservation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Date is a civil calendar date without time zone. It is comparable and usable as a map key.
type Date struct {
	year  int
	month time.Month
	day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// DateOf takes the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

func (d Date) Year() int          { return d.year }
func (d Date) Month() time.Month  { return d.month }
func (d Date) Day() int           { return d.day }
func (d Date) IsZero() bool       { return d == Date{} }
func (d Date) Before(o Date) bool { return d.midnight(time.UTC).Before(o.midnight(time.UTC)) }

func (d Date) Weekday() time.Weekday {
	return d.midnight(time.UTC).Weekday()
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.midnight(time.UTC).AddDate(0, 0, n))
}

// At returns the instant of the given time of day on this date in loc.
func (d Date) At(tod TimeOfDay, loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, tod.Hour(), tod.Minute(), 0, 0, loc)
}

// Time is midnight UTC of the date, the representation storage drivers expect for DATE columns.
func (d Date) Time() time.Time {
	return d.midnight(time.UTC)
}

func (d Date) String() string {
	return d.midnight(time.UTC).Format(dateLayout)
}

func (d Date) midnight(loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

const minutesPerDay = 24 * 60

// TimeOfDay is a minute of the day in [00:00, 24:00).
type TimeOfDay int

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, hour, minute)
	}
	return TimeOfDay(hour*60 + minute), nil
}

func MustTimeOfDay(hour, minute int) TimeOfDay {
	t, err := NewTimeOfDay(hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay accepts "HH:MM", "H:MM" and "HH:MM:SS" (seconds are dropped).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimeOfDay(t.Hour(), t.Minute())
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

// TimeOfDayOf truncates t to the minute in t's own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) Hour() int    { return int(t) / 60 }
func (t TimeOfDay) Minute() int  { return int(t) % 60 }
func (t TimeOfDay) Minutes() int { return int(t) }

// Offset shifts by the given number of minutes; ok is false when the result leaves the day.
func (t TimeOfDay) Offset(minutes int) (TimeOfDay, bool) {
	v := int(t) + minutes
	if v < 0 || v >= minutesPerDay {
		return 0, false
	}
	return TimeOfDay(v), true
}

// Distance is the absolute gap between two times of the same day.
func (t TimeOfDay) Distance(o TimeOfDay) time.Duration {
	d := int(t) - int(o)
	if d < 0 {
		d = -d
	}
	return time.Duration(d) * time.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

type Owner struct {
	kind         OwnerKind
	subscriberID int64
}

func NewSubscriberOwner(subscriberID int64) (Owner, error) {
	if subscriberID <= 0 {
		return Owner{}, ErrInvalidOwner
	}
	return Owner{kind: OwnerSubscriber, subscriberID: subscriberID}, nil
}

func GuestOwner() Owner {
	return Owner{kind: OwnerGuest}
}

func (o Owner) Kind() OwnerKind     { return o.kind }
func (o Owner) SubscriberID() int64 { return o.subscriberID }
func (o Owner) IsGuest() bool       { return o.kind == OwnerGuest }

// IsValid: guests carry no id, subscribers need a positive one.
func (o Owner) IsValid() bool {
	switch o.kind {
	case OwnerGuest:
		return o.subscriberID == 0
	case OwnerSubscriber:
		return o.subscriberID > 0
	default:
		return false
	}
}

type Contact struct {
	Name  string
	Phone string
	Email string
}

func NewContact(name, phone, email string) Contact {
	return Contact{
		Name:  strings.TrimSpace(name),
		Phone: strings.TrimSpace(phone),
		Email: strings.TrimSpace(email),
	}
}

func (c Contact) IsEmpty() bool {
	return c.Name == "" && c.Phone == "" && c.Email == ""
}

// ChannelHint names the preferred notification channel for the contact.
func (c Contact) ChannelHint() string {
	switch {
	case c.Email != "":
		return "email"
	case c.Phone != "":
		return "sms"
	default:
		return ""
	}
}

func NewConfirmationCode() string {
	return uuid.NewString()
}
