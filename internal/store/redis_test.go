package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-booking/internal/attribute"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	s := NewRedisStore(rdb, Schema{"users": "email"}, "booking")

	item := attribute.Item{
		"id":       attribute.String("1"),
		"number":   attribute.Int(5),
		"isVip":    attribute.Bool(false),
		"features": attribute.StringSet("window"),
	}
	require.NoError(t, s.PutItem(ctx, "tables", item))
	assert.True(t, mr.Exists("booking:tables"))

	got, err := s.GetItem(ctx, "tables", attribute.Item{"id": attribute.String("1")})
	require.NoError(t, err)
	assert.Equal(t, attribute.ItemToJSON(item), attribute.ItemToJSON(got))

	_, err = s.GetItem(ctx, "tables", attribute.Item{"id": attribute.String("2")})
	assert.ErrorIs(t, err, ErrItemNotFound)

	require.NoError(t, s.PutItem(ctx, "tables", attribute.Item{"id": attribute.String("0")}))
	items, err := s.Scan(ctx, "tables")
	require.NoError(t, err)
	require.Len(t, items, 2)
	first, _ := items[0].GetString("id")
	assert.Equal(t, "0", first)
}

func TestRedisLocker(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewRedisLocker(rdb, "lock")
	l.Retry = 5 * time.Millisecond

	release, err := l.Lock(context.Background(), "reservation:5:2024-06-01")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:reservation:5:2024-06-01"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "reservation:5:2024-06-01")
	assert.ErrorIs(t, err, ErrLockTimeout)

	release()
	assert.False(t, mr.Exists("lock:reservation:5:2024-06-01"))

	again, err := l.Lock(context.Background(), "reservation:5:2024-06-01")
	require.NoError(t, err)
	again()
}

func TestRedisLockerReleaseKeepsForeignLock(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewRedisLocker(rdb, "lock")

	release, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	// Simulate expiry followed by another holder taking the key.
	require.NoError(t, mr.Set("lock:k", "someone-else"))
	release()

	v, err := mr.Get("lock:k")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v)
}

func TestRedisLockerExpiryCoversCallerDeadline(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewRedisLocker(rdb, "lock")

	release, err := l.Lock(context.Background(), "short")
	require.NoError(t, err)
	assert.Equal(t, l.TTL, mr.TTL("lock:short"))
	release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	release, err = l.Lock(ctx, "long")
	require.NoError(t, err)
	defer release()
	assert.Greater(t, mr.TTL("lock:long"), 50*time.Second)
	assert.LessOrEqual(t, mr.TTL("lock:long"), time.Minute+lockHoldMargin)
}
