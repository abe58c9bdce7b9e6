//go:build unit || e2e

package builder

import (
	"time"

	"bistro/internal/domain/reservation"
	reqdto "bistro/internal/handler/dto/request"
)

type ReservationBuilder struct {
	ID           int64
	Date         reservation.Date
	Time         reservation.TimeOfDay
	PartySize    int
	Status       reservation.Status
	TableID      int
	SubscriberID int64
	Guest        bool
	Contact      reservation.Contact
	Code         string
	ArrivalTime  *time.Time
	CreatedAt    time.Time
}

func NewReservationBuilder() *ReservationBuilder {
	return &ReservationBuilder{
		Date:         reservation.NewDate(2025, time.June, 10),
		Time:         reservation.MustTimeOfDay(19, 0),
		PartySize:    2,
		Status:       reservation.StatusPending,
		SubscriberID: 42,
		Contact:      reservation.NewContact("Dana Levi", "050-1234567", "dana@example.com"),
		Code:         "a5a0c2d4-6f1e-4e6b-9a3f-0c7d2b1e9f10",
		CreatedAt:    time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

func (b *ReservationBuilder) owner() reservation.Owner {
	if b.Guest {
		return reservation.GuestOwner()
	}
	o, err := reservation.NewSubscriberOwner(b.SubscriberID)
	if err != nil {
		return reservation.Owner{}
	}
	return o
}

// Build methods
func (b *ReservationBuilder) BuildDomain() (*reservation.Reservation, error) {
	return reservation.NewReservation(b.Date, b.Time, b.PartySize, b.owner(), b.Contact, b.CreatedAt)
}

// BuildStored reconstructs a reservation as a store would return it.
func (b *ReservationBuilder) BuildStored() *reservation.Reservation {
	o := b.owner()
	return reservation.Reconstruct(reservation.Snapshot{
		ID:               b.ID,
		Date:             b.Date,
		Time:             b.Time,
		PartySize:        b.PartySize,
		Status:           b.Status,
		TableID:          b.TableID,
		OwnerKind:        o.Kind(),
		SubscriberID:     o.SubscriberID(),
		Contact:          b.Contact,
		ConfirmationCode: b.Code,
		ArrivalTime:      b.ArrivalTime,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.CreatedAt,
	})
}

func (b *ReservationBuilder) BuildCreateRequestDTO() reqdto.CreateReservationRequest {
	var subscriberID *int64
	if !b.Guest {
		id := b.SubscriberID
		subscriberID = &id
	}
	return reqdto.CreateReservationRequest{
		Date:         b.Date.String(),
		Time:         b.Time.String(),
		PartySize:    b.PartySize,
		SubscriberID: subscriberID,
		ContactName:  b.Contact.Name,
		ContactPhone: b.Contact.Phone,
		ContactEmail: b.Contact.Email,
	}
}

// Fluent builder methods
func (b *ReservationBuilder) WithID(id int64) *ReservationBuilder {
	b.ID = id
	return b
}

func (b *ReservationBuilder) WithDate(d reservation.Date) *ReservationBuilder {
	b.Date = d
	return b
}

func (b *ReservationBuilder) WithTime(hour, minute int) *ReservationBuilder {
	b.Time = reservation.MustTimeOfDay(hour, minute)
	return b
}

func (b *ReservationBuilder) WithPartySize(n int) *ReservationBuilder {
	b.PartySize = n
	return b
}

func (b *ReservationBuilder) WithStatus(s reservation.Status) *ReservationBuilder {
	b.Status = s
	return b
}

func (b *ReservationBuilder) WithTable(id int) *ReservationBuilder {
	b.TableID = id
	return b
}

func (b *ReservationBuilder) WithSubscriber(id int64) *ReservationBuilder {
	b.SubscriberID = id
	b.Guest = false
	return b
}

func (b *ReservationBuilder) AsGuest() *ReservationBuilder {
	b.Guest = true
	b.SubscriberID = 0
	return b
}

func (b *ReservationBuilder) WithCode(code string) *ReservationBuilder {
	b.Code = code
	return b
}

func (b *ReservationBuilder) WithArrival(at time.Time) *ReservationBuilder {
	b.ArrivalTime = &at
	return b
}

func (b *ReservationBuilder) AsApproved(tableID int) *ReservationBuilder {
	b.Status = reservation.StatusApproved
	b.TableID = tableID
	return b
}

func (b *ReservationBuilder) AsActive(tableID int, arrived time.Time) *ReservationBuilder {
	b.Status = reservation.StatusActive
	b.TableID = tableID
	b.ArrivalTime = &arrived
	return b
}

func (b *ReservationBuilder) AsWaiting() *ReservationBuilder {
	b.Status = reservation.StatusWaiting
	b.TableID = 0
	return b
}
