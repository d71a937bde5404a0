package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotsOverlap(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 string
		want           bool
	}{
		{"back to back", "10:00", "11:00", "11:00", "12:00", false},
		{"back to back reversed", "11:00", "12:00", "10:00", "11:00", false},
		{"partial overlap", "10:00", "11:30", "11:00", "12:00", true},
		{"identical", "10:00", "11:00", "10:00", "11:00", true},
		{"contained", "09:00", "13:00", "10:00", "11:00", true},
		{"disjoint", "08:00", "09:00", "10:00", "11:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SlotsOverlap(tc.s1, tc.e1, tc.s2, tc.e2))
		})
	}
}

func TestReservationConflictsWith(t *testing.T) {
	base := Reservation{TableNumber: 5, Date: "2024-06-01", SlotTimeStart: "10:00", SlotTimeEnd: "11:00"}

	other := base
	other.SlotTimeStart, other.SlotTimeEnd = "10:30", "11:30"
	assert.True(t, base.ConflictsWith(other))

	other.TableNumber = 6
	assert.False(t, base.ConflictsWith(other))

	other.TableNumber = 5
	other.Date = "2024-06-02"
	assert.False(t, base.ConflictsWith(other))
}
