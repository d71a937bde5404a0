package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Consumer reads booking events and appends one line per event to a log file.
type Consumer struct {
	URL     string // AMQP URL
	LogPath string // e.g. logs/booking.log
	Log     logrus.FieldLogger
}

// Run connects, declares the durable queue and consumes until ctx is done.
// Broker failures are retried with exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err == nil {
			backoff = time.Second
			err = c.consume(ctx, conn)
			_ = conn.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		c.Log.WithError(err).WithField("retry_in", backoff).Warn("booking consumer disconnected")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.WithError(err).Warn("set QoS failed")
	}
	if _, err := ch.QueueDeclare(BookingQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, BookingQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.Log.WithField("queue", BookingQueue).Info("booking consumer started")

	for d := range msgs {
		if err := HandleMessage(d.Body, c.LogPath); err != nil {
			c.Log.WithError(err).Error("handle booking event failed")
			_ = d.Nack(false, false) // drop, requeueing a bad message would loop
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// HandleMessage decodes one event and appends it to the file at path.
func HandleMessage(body []byte, path string) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line, err := formatEvent(ev)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatEvent(ev BookingEvent) (string, error) {
	switch ev.Type {
	case EventTableCreated:
		return fmt.Sprintf("[%s] Table created | id=%d | number=%d\n",
			ev.OccurredAt, ev.TableID, ev.TableNumber), nil
	case EventReservationCreated:
		return fmt.Sprintf("[%s] Reservation created | reservation_id=%s | table=%d | date=%s | slot=%s-%s | client=%q\n",
			ev.OccurredAt, ev.ReservationID, ev.TableNumber, ev.Date, ev.SlotTimeStart, ev.SlotTimeEnd, ev.ClientName), nil
	default:
		return "", fmt.Errorf("unknown event type %q", ev.Type)
	}
}
