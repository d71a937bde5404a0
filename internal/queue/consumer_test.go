package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessageAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "booking.log")

	table, _ := json.Marshal(BookingEvent{Type: EventTableCreated, TableID: 1, TableNumber: 5, OccurredAt: "2024-06-01T10:00:00Z"})
	res, _ := json.Marshal(BookingEvent{
		Type: EventReservationCreated, ReservationID: "r-1", TableNumber: 5, ClientName: "Jane Doe",
		Date: "2024-06-01", SlotTimeStart: "10:00", SlotTimeEnd: "11:00", OccurredAt: "2024-06-01T10:01:00Z",
	})
	require.NoError(t, HandleMessage(table, path))
	require.NoError(t, HandleMessage(res, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[2024-06-01T10:00:00Z] Table created | id=1 | number=5", lines[0])
	assert.Contains(t, lines[1], "reservation_id=r-1")
	assert.Contains(t, lines[1], "slot=10:00-11:00")
	assert.Contains(t, lines[1], `client="Jane Doe"`)
}

func TestHandleMessageRejectsBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "booking.log")
	assert.Error(t, HandleMessage([]byte("{"), path))
	assert.ErrorContains(t, HandleMessage([]byte(`{"type":"seat.held"}`), path), "unknown event type")
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing written for rejected messages")
}
