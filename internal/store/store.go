// Package store defines the boundary to the item store that holds tables,
// reservations, users and weather snapshots.  Items are attribute.Item
// records addressed by a table name and a partition key attribute.  Three
// drivers are provided: an in-process map (tests and local runs), MySQL and
// Redis.  Each driver also provides a Locker used to serialise
// check-then-act sequences such as the reservation conflict check.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/restaurant-booking/internal/attribute"
)

// ErrItemNotFound is returned by GetItem when no item matches the key.
var ErrItemNotFound = errors.New("item not found")

// ErrMissingKey is returned when an item or key lacks the table's
// partition key attribute.
var ErrMissingKey = errors.New("missing partition key")

// ErrLockTimeout is returned by Locker.Lock when the lock could not be
// acquired before the context deadline or the driver's wait limit.
var ErrLockTimeout = errors.New("lock wait timeout")

// ItemStore is the item store contract consumed by the repositories.
type ItemStore interface {
	// PutItem writes item, replacing any existing item with the same key.
	PutItem(ctx context.Context, table string, item attribute.Item) error
	// GetItem fetches the item whose partition key matches key.
	GetItem(ctx context.Context, table string, key attribute.Item) (attribute.Item, error)
	// Scan returns every item of the table.  Order is driver-defined.
	Scan(ctx context.Context, table string) ([]attribute.Item, error)
}

// Locker provides named mutual exclusion across every process sharing the
// same backend.  The returned release function must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, name string) (release func(), err error)
}

// DefaultLockWait bounds how long a Lock call waits when the context has no
// deadline.
const DefaultLockWait = 5 * time.Second

// Schema maps table names to their partition key attribute.  Tables not
// listed use "id".
type Schema map[string]string

// KeyAttr returns the partition key attribute name for table.
func (s Schema) KeyAttr(table string) string {
	if k, ok := s[table]; ok && k != "" {
		return k
	}
	return "id"
}

// keyOf extracts the partition key of item as a string.  Only S and N keys
// are supported, mirroring the store's scalar key types.
func (s Schema) keyOf(table string, item attribute.Item) (string, error) {
	attr := s.KeyAttr(table)
	v, ok := item[attr]
	if !ok {
		return "", fmt.Errorf("%s.%s: %w", table, attr, ErrMissingKey)
	}
	switch v.Kind() {
	case attribute.KindString:
		return *v.S, nil
	case attribute.KindNumber:
		return *v.N, nil
	default:
		return "", fmt.Errorf("%s.%s has type %s: %w", table, attr, v.Kind(), ErrMissingKey)
	}
}

// lockWait returns the wait budget for a lock call.
func lockWait(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
		return 0
	}
	return DefaultLockWait
}
