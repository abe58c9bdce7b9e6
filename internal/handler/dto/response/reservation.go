package response

import (
	"time"

	"bistro/internal/domain/reservation"
	"bistro/internal/usecase/commands"
	"bistro/internal/usecase/queries"
)

type ReservationResponse struct {
	ID               int64      `json:"id"`
	Date             string     `json:"date"`
	Time             string     `json:"time"`
	PartySize        int        `json:"partySize"`
	Status           string     `json:"status"`
	TableID          *int       `json:"tableId,omitempty"`
	SubscriberID     *int64     `json:"subscriberId,omitempty"`
	Guest            bool       `json:"guest"`
	ContactName      string     `json:"contactName,omitempty"`
	ContactPhone     string     `json:"contactPhone,omitempty"`
	ContactEmail     string     `json:"contactEmail,omitempty"`
	ConfirmationCode string     `json:"confirmationCode"`
	ArrivalTime      *time.Time `json:"arrivalTime,omitempty"`
	DepartureTime    *time.Time `json:"departureTime,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type DecisionResponse struct {
	Outcome      string               `json:"outcome"`
	TableID      *int                 `json:"tableId,omitempty"`
	Reason       string               `json:"reason,omitempty"`
	Reservation  *ReservationResponse `json:"reservation,omitempty"`
	Alternatives []string             `json:"alternatives,omitempty"`
}

type ReservationListResponse struct {
	Items      []*ReservationResponse `json:"items"`
	NextCursor string                 `json:"nextCursor,omitempty"`
}

type AlternativesResponse struct {
	Alternatives []string `json:"alternatives"`
}

type TableResponse struct {
	ID    int `json:"id"`
	Seats int `json:"seats"`
}

func FromReservationView(v *queries.ReservationView) *ReservationResponse {
	return &ReservationResponse{
		ID:               v.ID,
		Date:             v.Date,
		Time:             v.Time,
		PartySize:        v.PartySize,
		Status:           v.Status,
		TableID:          v.TableID,
		SubscriberID:     v.SubscriberID,
		Guest:            v.Guest,
		ContactName:      v.ContactName,
		ContactPhone:     v.ContactPhone,
		ContactEmail:     v.ContactEmail,
		ConfirmationCode: v.ConfirmationCode,
		ArrivalTime:      v.ArrivalTime,
		DepartureTime:    v.DepartureTime,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

func FromReservation(r *reservation.Reservation) *ReservationResponse {
	return FromReservationView(queries.NewReservationView(r))
}

func FromReservationViews(views []*queries.ReservationView) []*ReservationResponse {
	out := make([]*ReservationResponse, len(views))
	for i, v := range views {
		out[i] = FromReservationView(v)
	}
	return out
}

func FromOutcome(o *commands.Outcome, alternatives []reservation.TimeOfDay) *DecisionResponse {
	resp := &DecisionResponse{
		Outcome:      string(o.Kind),
		Reason:       o.Reason,
		Alternatives: FormatTimes(alternatives),
	}
	if o.TableID > 0 {
		id := o.TableID
		resp.TableID = &id
	}
	if o.Reservation != nil {
		resp.Reservation = FromReservation(o.Reservation)
	}
	return resp
}

func FormatTimes(ts []reservation.TimeOfDay) []string {
	if len(ts) == 0 {
		return nil
	}
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}

func FromTableViews(views []*queries.TableView) []*TableResponse {
	out := make([]*TableResponse, len(views))
	for i, v := range views {
		out[i] = &TableResponse{ID: v.ID, Seats: v.Seats}
	}
	return out
}
