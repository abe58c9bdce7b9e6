package notify

import (
	"time"

	"bistro/internal/usecase/shared"
)

// ReservationEvent is the message body published to the broker. It carries enough to
// reach the guest without querying the store.
type ReservationEvent struct {
	Event            string `json:"event"`
	ReservationID    int64  `json:"reservation_id"`
	ConfirmationCode string `json:"confirmation_code"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	TableID          int    `json:"table_id,omitempty"`
	ContactName      string `json:"contact_name,omitempty"`
	ContactPhone     string `json:"contact_phone,omitempty"`
	ContactEmail     string `json:"contact_email,omitempty"`
	Channel          string `json:"channel,omitempty"`
	OccurredAt       string `json:"occurred_at"`
}

func NewReservationEvent(n shared.Notification) ReservationEvent {
	return ReservationEvent{
		Event:            string(n.Event),
		ReservationID:    n.ReservationID,
		ConfirmationCode: n.ConfirmationCode,
		Date:             n.Date.String(),
		Time:             n.Time.String(),
		TableID:          n.TableID,
		ContactName:      n.Contact.Name,
		ContactPhone:     n.Contact.Phone,
		ContactEmail:     n.Contact.Email,
		Channel:          n.ChannelHint,
		OccurredAt:       n.OccurredAt.UTC().Format(time.RFC3339),
	}
}
