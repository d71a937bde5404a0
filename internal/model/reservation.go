package model

// Reservation records a client's booking of a table for a time slot on a
// given date.  Reservations are immutable once stored.
//
// Fields:
//  ID            – generated UUID, storage key.  Not exposed in listings.
//  TableNumber   – references Table.Number (not Table.ID).
//  ClientName    – name the booking is under.
//  PhoneNumber   – contact number.
//  Date          – calendar date, YYYY-MM-DD.
//  SlotTimeStart – slot start, HH:MM.
//  SlotTimeEnd   – slot end, HH:MM, exclusive.
type Reservation struct {
	ID            string `json:"-"`             // reservations.id (S)
	TableNumber   int    `json:"tableNumber"`   // reservations.tableNumber (N)
	ClientName    string `json:"clientName"`    // reservations.clientName (S)
	PhoneNumber   string `json:"phoneNumber"`   // reservations.phoneNumber (S)
	Date          string `json:"date"`          // reservations.date (S)
	SlotTimeStart string `json:"slotTimeStart"` // reservations.slotTimeStart (S)
	SlotTimeEnd   string `json:"slotTimeEnd"`   // reservations.slotTimeEnd (S)
}

// SlotsOverlap reports whether the half-open slots [s1,e1) and [s2,e2)
// intersect.  Times are fixed-width HH:MM strings so lexical order equals
// chronological order.  Back-to-back slots (e1 == s2) do not overlap.
func SlotsOverlap(s1, e1, s2, e2 string) bool {
	return s1 < e2 && e1 > s2
}

// ConflictsWith reports whether r and other book the same table on the same
// date with overlapping slots.
func (r Reservation) ConflictsWith(other Reservation) bool {
	return r.TableNumber == other.TableNumber &&
		r.Date == other.Date &&
		SlotsOverlap(r.SlotTimeStart, r.SlotTimeEnd, other.SlotTimeStart, other.SlotTimeEnd)
}
