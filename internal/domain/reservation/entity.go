package reservation

import (
	"errors"
	"time"
)

var (
	ErrInvalidStatus     = errors.New("invalid reservation status")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidTime       = errors.New("invalid time of day")
	ErrInvalidPartySize  = errors.New("party size must be positive")
	ErrInvalidOwner      = errors.New("invalid reservation owner")
	ErrTerminalState     = errors.New("reservation is in a terminal state")
	ErrInvalidTransition = errors.New("transition not allowed from current status")
	ErrTableRequired     = errors.New("a table is required")
)

type Reservation struct {
	id               int64
	date             Date
	time             TimeOfDay
	partySize        int
	status           Status
	tableID          int
	owner            Owner
	contact          Contact
	confirmationCode string
	arrivalTime      *time.Time
	departureTime    *time.Time
	createdAt        time.Time
	updatedAt        time.Time
}

// NewReservation builds a PENDING request that has not been decided nor persisted yet.
func NewReservation(date Date, at TimeOfDay, partySize int, owner Owner, contact Contact, now time.Time) (*Reservation, error) {
	if date.IsZero() {
		return nil, ErrInvalidDate
	}
	if at < 0 || at.Minutes() >= minutesPerDay {
		return nil, ErrInvalidTime
	}
	if partySize <= 0 {
		return nil, ErrInvalidPartySize
	}
	if !owner.IsValid() {
		return nil, ErrInvalidOwner
	}

	return &Reservation{
		date:             date,
		time:             at,
		partySize:        partySize,
		status:           StatusPending,
		owner:            owner,
		contact:          contact,
		confirmationCode: NewConfirmationCode(),
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// Snapshot is the flat persistence shape of a reservation.
type Snapshot struct {
	ID               int64
	Date             Date
	Time             TimeOfDay
	PartySize        int
	Status           Status
	TableID          int
	OwnerKind        OwnerKind
	SubscriberID     int64
	Contact          Contact
	ConfirmationCode string
	ArrivalTime      *time.Time
	DepartureTime    *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func Reconstruct(s Snapshot) *Reservation {
	return &Reservation{
		id:               s.ID,
		date:             s.Date,
		time:             s.Time,
		partySize:        s.PartySize,
		status:           s.Status,
		tableID:          s.TableID,
		owner:            Owner{kind: s.OwnerKind, subscriberID: s.SubscriberID},
		contact:          s.Contact,
		confirmationCode: s.ConfirmationCode,
		arrivalTime:      copyTime(s.ArrivalTime),
		departureTime:    copyTime(s.DepartureTime),
		createdAt:        s.CreatedAt,
		updatedAt:        s.UpdatedAt,
	}
}

func (r *Reservation) Snapshot() Snapshot {
	return Snapshot{
		ID:               r.id,
		Date:             r.date,
		Time:             r.time,
		PartySize:        r.partySize,
		Status:           r.status,
		TableID:          r.tableID,
		OwnerKind:        r.owner.kind,
		SubscriberID:     r.owner.subscriberID,
		Contact:          r.contact,
		ConfirmationCode: r.confirmationCode,
		ArrivalTime:      copyTime(r.arrivalTime),
		DepartureTime:    copyTime(r.departureTime),
		CreatedAt:        r.createdAt,
		UpdatedAt:        r.updatedAt,
	}
}

func (r *Reservation) Clone() *Reservation {
	return Reconstruct(r.Snapshot())
}

// AssignID records the id handed out by the store on first insert.
func (r *Reservation) AssignID(id int64) {
	if r.id == 0 {
		r.id = id
	}
}

func (r *Reservation) ID() int64                { return r.id }
func (r *Reservation) Date() Date               { return r.date }
func (r *Reservation) Time() TimeOfDay          { return r.time }
func (r *Reservation) PartySize() int           { return r.partySize }
func (r *Reservation) Status() Status           { return r.status }
func (r *Reservation) TableID() int             { return r.tableID }
func (r *Reservation) HasTable() bool           { return r.tableID > 0 }
func (r *Reservation) Owner() Owner             { return r.owner }
func (r *Reservation) Contact() Contact         { return r.contact }
func (r *Reservation) ConfirmationCode() string { return r.confirmationCode }
func (r *Reservation) ArrivalTime() *time.Time  { return copyTime(r.arrivalTime) }
func (r *Reservation) DepartureTime() *time.Time {
	return copyTime(r.departureTime)
}
func (r *Reservation) CreatedAt() time.Time { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time { return r.updatedAt }

func (r *Reservation) SlotAt(loc *time.Location) time.Time {
	return r.date.At(r.time, loc)
}

// HoldsTable reports whether the reservation currently blocks its table.
func (r *Reservation) HoldsTable() bool {
	return r.status.HoldsTable() && r.HasTable()
}

// Blocks reports whether this reservation occupies its table for a seating at `at` on the same date.
func (r *Reservation) Blocks(at TimeOfDay, window time.Duration) bool {
	return r.HoldsTable() && r.time.Distance(at) < window
}

func (r *Reservation) Approve(tableID int, now time.Time) error {
	if err := r.requireFrom(StatusPending, StatusWaiting); err != nil {
		return err
	}
	if tableID <= 0 {
		return ErrTableRequired
	}
	r.tableID = tableID
	r.touch(StatusApproved, now)
	return nil
}

func (r *Reservation) PutOnWaitlist(now time.Time) error {
	if err := r.requireFrom(StatusPending); err != nil {
		return err
	}
	r.tableID = 0
	r.touch(StatusWaiting, now)
	return nil
}

// Arrive checks the party in; the table may differ from the one approved earlier.
func (r *Reservation) Arrive(tableID int, now time.Time) error {
	if err := r.requireFrom(StatusPending, StatusApproved); err != nil {
		return err
	}
	if tableID <= 0 {
		return ErrTableRequired
	}
	arrived := now
	r.tableID = tableID
	r.arrivalTime = &arrived
	r.touch(StatusActive, now)
	return nil
}

// Finish keeps the table id for audit; FINISHED never holds a table.
func (r *Reservation) Finish(now time.Time) error {
	if err := r.requireFrom(StatusActive); err != nil {
		return err
	}
	departed := now
	r.departureTime = &departed
	r.touch(StatusFinished, now)
	return nil
}

func (r *Reservation) Cancel(now time.Time) error {
	if err := r.requireFrom(StatusPending, StatusApproved, StatusWaiting); err != nil {
		return err
	}
	r.tableID = 0
	r.touch(StatusCancelled, now)
	return nil
}

func (r *Reservation) MarkNoShow(now time.Time) error {
	if err := r.requireFrom(StatusApproved); err != nil {
		return err
	}
	r.tableID = 0
	r.touch(StatusNoShow, now)
	return nil
}

// IsNoShowAt: approved, scheduled today, and more than grace past the slot without check-in.
func (r *Reservation) IsNoShowAt(now time.Time, grace time.Duration, loc *time.Location) bool {
	if r.status != StatusApproved || r.arrivalTime != nil {
		return false
	}
	local := now.In(loc)
	if DateOf(local) != r.date {
		return false
	}
	return r.SlotAt(loc).Add(grace).Before(local)
}

func (r *Reservation) DiningExpiredAt(now time.Time, window time.Duration) bool {
	if r.status != StatusActive || r.arrivalTime == nil {
		return false
	}
	return now.Sub(*r.arrivalTime) > window
}

// CheckInOpenAt allows arrival on the visit date from `early` before the slot until `grace` after it.
// A zero `early` disables the window.
func (r *Reservation) CheckInOpenAt(now time.Time, early, grace time.Duration, loc *time.Location) bool {
	if early <= 0 {
		return true
	}
	local := now.In(loc)
	if DateOf(local) != r.date {
		return false
	}
	slot := r.SlotAt(loc)
	return !local.Before(slot.Add(-early)) && !local.After(slot.Add(grace))
}

// FreesTable reports whether moving from `from` to the current status released a table.
func (r *Reservation) FreesTable(from Status) bool {
	return from.HoldsTable() && !r.status.HoldsTable()
}

func (r *Reservation) requireFrom(allowed ...Status) error {
	for _, s := range allowed {
		if r.status == s {
			return nil
		}
	}
	if r.status.IsTerminal() {
		return ErrTerminalState
	}
	return ErrInvalidTransition
}

func (r *Reservation) touch(status Status, now time.Time) {
	r.status = status
	r.updatedAt = now
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
