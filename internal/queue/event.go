// Package queue defines the booking events exchanged over RabbitMQ and the
// consumer that records them.
package queue

// BookingQueue is the durable queue carrying booking events.
const BookingQueue = "booking.events"

// Event types.
const (
	EventTableCreated       = "table.created"
	EventReservationCreated = "reservation.created"
)

// BookingEvent is published after a table or reservation is stored.  It
// carries enough for consumers to log or notify without reading the store.
type BookingEvent struct {
	Type          string `json:"type"`
	TableID       int    `json:"table_id,omitempty"`
	TableNumber   int    `json:"table_number"`
	ReservationID string `json:"reservation_id,omitempty"`
	ClientName    string `json:"client_name,omitempty"`
	Date          string `json:"date,omitempty"`
	SlotTimeStart string `json:"slot_time_start,omitempty"`
	SlotTimeEnd   string `json:"slot_time_end,omitempty"`
	Subject       string `json:"subject,omitempty"` // token subject of the caller
	OccurredAt    string `json:"occurred_at"`       // RFC3339, UTC
}
