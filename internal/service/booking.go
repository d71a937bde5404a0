package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-booking/internal/queue"
	"github.com/iliyamo/restaurant-booking/internal/repository"
)

const publishTimeout = 3 * time.Second

// Booking creates tables and reservations and announces them on the event
// publisher.  A failed publish is logged and never fails the write.
type Booking struct {
	Tables       *repository.TableRepo
	Reservations *repository.ReservationRepo
	Events       EventPublisher
	Log          logrus.FieldLogger
}

// CreateTable stores the table and publishes table.created.
func (b *Booking) CreateTable(ctx context.Context, req repository.CreateTableRequest, subject string) (int, error) {
	id, err := b.Tables.Create(ctx, req)
	if err != nil {
		return 0, err
	}
	b.publish(ctx, queue.BookingEvent{
		Type:        queue.EventTableCreated,
		TableID:     id,
		TableNumber: *req.Number,
		Subject:     subject,
	})
	return id, nil
}

// CreateReservation stores the reservation and publishes reservation.created.
func (b *Booking) CreateReservation(ctx context.Context, req repository.CreateReservationRequest, subject string) (string, error) {
	id, err := b.Reservations.Create(ctx, req)
	if err != nil {
		return "", err
	}
	b.publish(ctx, queue.BookingEvent{
		Type:          queue.EventReservationCreated,
		ReservationID: id,
		TableNumber:   *req.TableNumber,
		ClientName:    req.ClientName,
		Date:          req.Date,
		SlotTimeStart: req.SlotTimeStart,
		SlotTimeEnd:   req.SlotTimeEnd,
		Subject:       subject,
	})
	return id, nil
}

func (b *Booking) publish(ctx context.Context, ev queue.BookingEvent) {
	if b.Events == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := b.Events.Publish(ctx, ev); err != nil {
		b.Log.WithError(err).WithField("event", ev.Type).Warn("booking event not published")
	}
}
