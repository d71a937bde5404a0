package attribute

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// ErrUnsupportedType is returned by ToWire for Go values that have no JSON
// counterpart (structs, channels, times, ...).
var ErrUnsupportedType = errors.New("unsupported value type")

// ToWire converts a JSON-like Go value into a tagged Value.  Accepted inputs
// are nil, string, bool, json.Number, the built-in integer and float kinds,
// []any and map[string]any, nested arbitrarily.  Dates and other rich types
// are rejected; callers keep them as strings.
func ToWire(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		if _, err := strconv.ParseFloat(t.String(), 64); err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t.String(), ErrUnsupportedType)
		}
		return Number(t.String()), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Number(strconv.FormatUint(uint64(t), 10)), nil
	case uint8:
		return Number(strconv.FormatUint(uint64(t), 10)), nil
	case uint16:
		return Number(strconv.FormatUint(uint64(t), 10)), nil
	case uint32:
		return Number(strconv.FormatUint(uint64(t), 10)), nil
	case uint64:
		return Number(strconv.FormatUint(t, 10)), nil
	case float32:
		return floatValue(float64(t))
	case float64:
		return floatValue(t)
	case []any:
		out := make([]Value, 0, len(t))
		for i, e := range t {
			w, err := ToWire(e)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			out = append(out, w)
		}
		return List(out...), nil
	case map[string]any:
		out := make(map[string]Value, len(t))
		for k, e := range t {
			w, err := ToWire(e)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = w
		}
		return Map(out), nil
	default:
		return Value{}, fmt.Errorf("%s: %w", reflect.TypeOf(v), ErrUnsupportedType)
	}
}

func floatValue(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("non-finite number: %w", ErrUnsupportedType)
	}
	return Number(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

// ToJSON converts a tagged Value back into a plain Go value.  The variant is
// chosen by Kind, so a value carrying both S and N decodes as the string.
// Numbers become int64 when integral and float64 otherwise.  Binary set
// members are returned as UTF-8 strings.
func ToJSON(v Value) any {
	switch v.Kind() {
	case KindString:
		return *v.S
	case KindNumber:
		return parseNumber(*v.N)
	case KindBool:
		return *v.BOOL
	case KindMap:
		out := make(map[string]any, len(v.M))
		for k, e := range v.M {
			out[k] = ToJSON(e)
		}
		return out
	case KindList:
		out := make([]any, 0, len(v.L))
		for _, e := range v.L {
			out = append(out, ToJSON(e))
		}
		return out
	case KindStringSet:
		out := make([]any, 0, len(v.SS))
		for _, s := range v.SS {
			out = append(out, s)
		}
		return out
	case KindNumberSet:
		out := make([]any, 0, len(v.NS))
		for _, n := range v.NS {
			out = append(out, parseNumber(n))
		}
		return out
	case KindBinarySet:
		out := make([]any, 0, len(v.BS))
		for _, b := range v.BS {
			out = append(out, string(b))
		}
		return out
	default:
		return nil
	}
}

// parseNumber keeps integers exact and falls back to float64.  A malformed
// number string decodes as the raw string rather than losing the data.
func parseNumber(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// ItemToJSON converts every attribute of an item.
func ItemToJSON(item Item) map[string]any {
	out := make(map[string]any, len(item))
	for k, v := range item {
		out[k] = ToJSON(v)
	}
	return out
}

// ItemFromJSON converts a JSON object into an item.
func ItemFromJSON(m map[string]any) (Item, error) {
	out := make(Item, len(m))
	for k, v := range m {
		w, err := ToWire(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = w
	}
	return out, nil
}

// DecodeJSON parses raw JSON with number precision preserved, ready for
// ToWire.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
