package reservation

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusWaiting   Status = "WAITING"
	StatusActive    Status = "ACTIVE"
	StatusFinished  Status = "FINISHED"
	StatusCancelled Status = "CANCELLED"
	StatusNoShow    Status = "NO_SHOW"
)

// HoldingStatuses are the statuses whose reservations occupy their table.
var HoldingStatuses = []Status{StatusApproved, StatusActive}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusWaiting, StatusActive,
		StatusFinished, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusFinished, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

func (s Status) HoldsTable() bool {
	return s == StatusApproved || s == StatusActive
}

func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

type OwnerKind string

const (
	OwnerSubscriber OwnerKind = "subscriber"
	OwnerGuest      OwnerKind = "guest"
)

func (k OwnerKind) IsValid() bool {
	return k == OwnerSubscriber || k == OwnerGuest
}
