package attribute

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMissingAttribute is returned by the Item getters when the attribute is
// absent or has an unexpected variant.
var ErrMissingAttribute = errors.New("missing attribute")

// GetString returns the string stored under key.
func (item Item) GetString(key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ErrMissingAttribute)
	}
	s, ok := ToJSON(v).(string)
	if !ok {
		return "", fmt.Errorf("%s is %s, want S: %w", key, v.Kind(), ErrMissingAttribute)
	}
	return s, nil
}

// GetInt returns the integer stored under key.  Numbers are read from N;
// string-encoded integers (S) are accepted too since some keys are stored
// that way.
func (item Item) GetInt(key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("%s: %w", key, ErrMissingAttribute)
	}
	switch t := ToJSON(v).(type) {
	case int64:
		return int(t), nil
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not an integer: %w", key, t, ErrMissingAttribute)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s is %s, want integer: %w", key, v.Kind(), ErrMissingAttribute)
	}
}

// GetBool returns the boolean stored under key.
func (item Item) GetBool(key string) (bool, error) {
	v, ok := item[key]
	if !ok {
		return false, fmt.Errorf("%s: %w", key, ErrMissingAttribute)
	}
	b, ok := ToJSON(v).(bool)
	if !ok {
		return false, fmt.Errorf("%s is %s, want BOOL: %w", key, v.Kind(), ErrMissingAttribute)
	}
	return b, nil
}

// Has reports whether the item carries key.
func (item Item) Has(key string) bool {
	_, ok := item[key]
	return ok
}
