package model

// Table represents a restaurant table that guests can book.  Tables are
// created by staff and never mutated afterwards.  The Number is what
// clients refer to when booking; ID is only the storage key.
//
// Fields:
//  ID       – caller supplied identifier, stored as a string-encoded integer.
//  Number   – business identifier printed on the table, unique per restaurant.
//  Places   – seating capacity.
//  IsVip    – whether the table is in the VIP area.
//  MinOrder – minimum order amount, only present for VIP tables.
type Table struct {
	ID       int  `json:"id"`                 // tables.id (S)
	Number   int  `json:"number"`             // tables.number (N)
	Places   int  `json:"places"`             // tables.places (N)
	IsVip    bool `json:"isVip"`              // tables.isVip (BOOL)
	MinOrder *int `json:"minOrder,omitempty"` // tables.minOrder (N, optional)
}
