// Package attribute implements the tagged value format used by the item
// store.  A Value carries one of a closed set of variants (string, number,
// bool, null, list, map, string set, number set, binary set) and is
// serialised in the store's own wire shape, e.g. {"S":"abc"} or {"N":"42"}.
//
// Conversion between Values and plain JSON-like Go values lives in codec.go.
package attribute

import (
	"encoding/json"
	"strconv"
)

// Kind identifies which variant a Value resolves to.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindMap
	KindList
	KindStringSet
	KindNumberSet
	KindBinarySet
)

var kindNames = [...]string{
	KindNull:      "NULL",
	KindString:    "S",
	KindNumber:    "N",
	KindBool:      "BOOL",
	KindMap:       "M",
	KindList:      "L",
	KindStringSet: "SS",
	KindNumberSet: "NS",
	KindBinarySet: "BS",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// Value is a single tagged attribute as it travels to and from the store.
// Only one field is expected to be populated, but values read back from a
// store may carry several; Kind decides which one wins.
//
// Fields:
//
//	S    – string
//	N    – number, kept in its decimal string form
//	BOOL – boolean
//	M    – map of nested values
//	L    – ordered list of nested values
//	SS   – string set
//	NS   – number set (decimal strings)
//	BS   – binary set
//	NULL – explicit null marker
type Value struct {
	S    *string          `json:"S,omitempty"`
	N    *string          `json:"N,omitempty"`
	BOOL *bool            `json:"BOOL,omitempty"`
	M    map[string]Value `json:"M,omitempty"`
	L    []Value          `json:"L,omitempty"`
	SS   []string         `json:"SS,omitempty"`
	NS   []string         `json:"NS,omitempty"`
	BS   [][]byte         `json:"BS,omitempty"`
	NULL *bool            `json:"NULL,omitempty"`
}

// Item is a full record keyed by attribute name.
type Item map[string]Value

// Kind resolves the variant using a fixed precedence: string, number, bool,
// map, list, string set, number set, binary set, explicit null.  A value with
// nothing populated is Null.  Containers count as present when non-nil, so an
// empty list is still a list.
func (v Value) Kind() Kind {
	switch {
	case v.S != nil:
		return KindString
	case v.N != nil:
		return KindNumber
	case v.BOOL != nil:
		return KindBool
	case v.M != nil:
		return KindMap
	case v.L != nil:
		return KindList
	case v.SS != nil:
		return KindStringSet
	case v.NS != nil:
		return KindNumberSet
	case v.BS != nil:
		return KindBinarySet
	default:
		return KindNull
	}
}

// MarshalJSON emits only the populated fields.  The default encoder would
// drop empty containers under omitempty, turning an empty list into null.
func (v Value) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 1)
	if v.S != nil {
		out["S"] = *v.S
	}
	if v.N != nil {
		out["N"] = *v.N
	}
	if v.BOOL != nil {
		out["BOOL"] = *v.BOOL
	}
	if v.M != nil {
		out["M"] = v.M
	}
	if v.L != nil {
		out["L"] = v.L
	}
	if v.SS != nil {
		out["SS"] = v.SS
	}
	if v.NS != nil {
		out["NS"] = v.NS
	}
	if v.BS != nil {
		out["BS"] = v.BS
	}
	if v.NULL != nil {
		out["NULL"] = *v.NULL
	}
	if len(out) == 0 {
		out["NULL"] = true
	}
	return json.Marshal(out)
}

// String builds an S value.
func String(s string) Value { return Value{S: &s} }

// Number builds an N value from its decimal representation.
func Number(n string) Value { return Value{N: &n} }

// Int builds an N value from an integer.
func Int(i int64) Value { return Number(strconv.FormatInt(i, 10)) }

// Bool builds a BOOL value.
func Bool(b bool) Value { return Value{BOOL: &b} }

// Null builds an explicit NULL value.
func Null() Value {
	t := true
	return Value{NULL: &t}
}

// List builds an L value.  A nil argument still yields an empty list.
func List(vs ...Value) Value {
	if vs == nil {
		vs = []Value{}
	}
	return Value{L: vs}
}

// Map builds an M value.
func Map(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{M: m}
}

// StringSet builds an SS value.
func StringSet(ss ...string) Value {
	if ss == nil {
		ss = []string{}
	}
	return Value{SS: ss}
}

// NumberSet builds an NS value.
func NumberSet(ns ...string) Value {
	if ns == nil {
		ns = []string{}
	}
	return Value{NS: ns}
}

// BinarySet builds a BS value.
func BinarySet(bs ...[]byte) Value {
	if bs == nil {
		bs = [][]byte{}
	}
	return Value{BS: bs}
}
