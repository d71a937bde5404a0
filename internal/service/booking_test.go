package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-booking/internal/queue"
	"github.com/iliyamo/restaurant-booking/internal/repository"
	"github.com/iliyamo/restaurant-booking/internal/store"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func intPtr(i int) *int    { return &i }
func boolPtr(b bool) *bool { return &b }

func newBooking(pub EventPublisher) (*Booking, *test.Hook) {
	s := store.NewMemoryStore(nil)
	tables := repository.NewTableRepo(s, "tables")
	log, hook := test.NewNullLogger()
	return &Booking{
		Tables:       tables,
		Reservations: repository.NewReservationRepo(s, store.NewMemoryLocker(), tables, "reservations"),
		Events:       pub,
		Log:          log,
	}, hook
}

func TestBookingPublishesEvents(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(ev queue.BookingEvent) bool {
		return ev.Type == queue.EventTableCreated && ev.TableID == 1 && ev.TableNumber == 5 && ev.OccurredAt != ""
	})).Return(nil).Once()
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(ev queue.BookingEvent) bool {
		return ev.Type == queue.EventReservationCreated && ev.ReservationID != "" && ev.Subject == "user-1"
	})).Return(nil).Once()

	b, _ := newBooking(pub)
	ctx := context.Background()
	_, err := b.CreateTable(ctx, repository.CreateTableRequest{
		ID: intPtr(1), Number: intPtr(5), Places: intPtr(4), IsVip: boolPtr(false),
	}, "user-1")
	require.NoError(t, err)
	_, err = b.CreateReservation(ctx, repository.CreateReservationRequest{
		TableNumber: intPtr(5), ClientName: "Jane", PhoneNumber: "1",
		Date: "2024-06-01", SlotTimeStart: "10:00", SlotTimeEnd: "11:00",
	}, "user-1")
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestBookingIgnoresPublishFailure(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	b, hook := newBooking(pub)
	id, err := b.CreateTable(context.Background(), repository.CreateTableRequest{
		ID: intPtr(2), Number: intPtr(6), Places: intPtr(2), IsVip: boolPtr(true),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, id)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "booking event not published", hook.LastEntry().Message)
}

func TestBookingDoesNotPublishFailedWrites(t *testing.T) {
	pub := new(mockPublisher)
	b, _ := newBooking(pub)
	_, err := b.CreateReservation(context.Background(), repository.CreateReservationRequest{
		TableNumber: intPtr(99), ClientName: "Jane", PhoneNumber: "1",
		Date: "2024-06-01", SlotTimeStart: "10:00", SlotTimeEnd: "11:00",
	}, "")
	assert.ErrorIs(t, err, repository.ErrUnknownTable)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
