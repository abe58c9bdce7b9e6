package request

import (
	"bistro/internal/domain/reservation"
	"bistro/internal/usecase/commands"
)

type CreateReservationRequest struct {
	Date      string `json:"date" binding:"required" example:"2025-06-10"`
	Time      string `json:"time" binding:"required" example:"19:00"`
	PartySize int    `json:"partySize" example:"4"`
	// Absent for walk-in guests.
	SubscriberID *int64 `json:"subscriberId,omitempty"`
	ContactName  string `json:"contactName,omitempty" binding:"max=120"`
	ContactPhone string `json:"contactPhone,omitempty" binding:"max=40"`
	ContactEmail string `json:"contactEmail,omitempty" binding:"omitempty,email"`
}

// ToDecideRequest parses the calendar fields. Party size and owner are left for the
// allocation engine to judge so that they surface as rejection reasons.
func (r CreateReservationRequest) ToDecideRequest(bypassLeadTime bool) (commands.DecideRequest, error) {
	date, err := reservation.ParseDate(r.Date)
	if err != nil {
		return commands.DecideRequest{}, err
	}
	at, err := reservation.ParseTimeOfDay(r.Time)
	if err != nil {
		return commands.DecideRequest{}, err
	}

	return commands.DecideRequest{
		Date:           date,
		Time:           at,
		PartySize:      r.PartySize,
		Owner:          r.owner(),
		Contact:        reservation.NewContact(r.ContactName, r.ContactPhone, r.ContactEmail),
		BypassLeadTime: bypassLeadTime,
	}, nil
}

func (r CreateReservationRequest) owner() reservation.Owner {
	if r.SubscriberID == nil {
		return reservation.GuestOwner()
	}
	owner, err := reservation.NewSubscriberOwner(*r.SubscriberID)
	if err != nil {
		return reservation.Owner{} // rejected downstream as an invalid owner
	}
	return owner
}

type AlternativesQuery struct {
	Date      string `form:"date" binding:"required"`
	Time      string `form:"time" binding:"required"`
	PartySize int    `form:"partySize" binding:"required,min=1"`
}

type ListQuery struct {
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=200"`
}
