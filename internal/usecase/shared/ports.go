package shared

import (
	"context"
	"time"

	"bistro/internal/domain/hours"
	"bistro/internal/domain/reservation"
	"bistro/internal/domain/table"
)

// ReservationStore is the single source of truth for reservations.
// Implementations mark failures with errs.ErrReservationNotFound, errs.ErrBookingConflict
// or errs.ErrStoreUnavailable.
type ReservationStore interface {
	FindReservation(ctx context.Context, id int64) (*reservation.Reservation, error)
	// FindReservationsByDate returns the reservations of a date in ascending id order.
	// No statuses means all of them.
	FindReservationsByDate(ctx context.Context, date reservation.Date, statuses ...reservation.Status) ([]*reservation.Reservation, error)
	FindReservationsByOwner(ctx context.Context, owner reservation.Owner) ([]*reservation.Reservation, error)
	FindReservationsByStatus(ctx context.Context, statuses ...reservation.Status) ([]*reservation.Reservation, error)
	FindReservationByConfirmationCode(ctx context.Context, code string) (*reservation.Reservation, error)
	// Save inserts when the id is zero and updates otherwise; it returns the id.
	// A holding write that would share a table with an overlapping holder fails with errs.ErrBookingConflict.
	Save(ctx context.Context, r *reservation.Reservation) (int64, error)
}

type TableInventory interface {
	AllTables(ctx context.Context) ([]table.Table, error)
}

type HoursSource interface {
	hours.RuleSource
}

type Event string

const (
	EventApproved  Event = "reservation.approved"
	EventWaiting   Event = "reservation.waiting"
	EventPromoted  Event = "reservation.promoted"
	EventCancelled Event = "reservation.cancelled"
	EventNoShow    Event = "reservation.no_show"
)

type Notification struct {
	Event            Event
	ReservationID    int64
	ConfirmationCode string
	Date             reservation.Date
	Time             reservation.TimeOfDay
	TableID          int
	Contact          reservation.Contact
	ChannelHint      string
	OccurredAt       time.Time
}

func NewNotification(event Event, r *reservation.Reservation, at time.Time) Notification {
	return Notification{
		Event:            event,
		ReservationID:    r.ID(),
		ConfirmationCode: r.ConfirmationCode(),
		Date:             r.Date(),
		Time:             r.Time(),
		TableID:          r.TableID(),
		Contact:          r.Contact(),
		ChannelHint:      r.Contact().ChannelHint(),
		OccurredAt:       at,
	}
}

// Notifier delivery is best effort; callers log and move on when it fails.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// DateLocker serializes allocation decisions of one date.
type DateLocker interface {
	Lock(ctx context.Context, date reservation.Date) (unlock func(), err error)
}

// Policy holds the temporal rules of the restaurant.
type Policy struct {
	Location        *time.Location
	OccupancyWindow time.Duration
	NoShowGrace     time.Duration
	LeadTime        time.Duration
	BookingHorizon  int // months
	CheckInEarly    time.Duration
	StoreTimeout    time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		Location:        time.UTC,
		OccupancyWindow: 2 * time.Hour,
		NoShowGrace:     15 * time.Minute,
		LeadTime:        time.Hour,
		BookingHorizon:  1,
		CheckInEarly:    30 * time.Minute,
		StoreTimeout:    3 * time.Second,
	}
}

// WithStoreTimeout bounds a store call; a zero timeout leaves ctx untouched.
func (p Policy) WithStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.StoreTimeout)
}
