package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-booking/internal/attribute"
	"github.com/iliyamo/restaurant-booking/internal/utils"
)

// RedisStore keeps each logical table in one Redis hash: field = partition
// key, value = item wire JSON.
type RedisStore struct {
	rdb    *redis.Client
	schema Schema
	prefix string
}

// NewRedisStore returns a store using keys "<prefix>:<table>".
func NewRedisStore(rdb *redis.Client, schema Schema, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "items"
	}
	return &RedisStore{rdb: rdb, schema: schema, prefix: prefix}
}

func (s *RedisStore) hashKey(table string) string { return s.prefix + ":" + table }

func (s *RedisStore) PutItem(ctx context.Context, table string, item attribute.Item) error {
	key, err := s.schema.keyOf(table, item)
	if err != nil {
		return err
	}
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode item: %w", err)
	}
	return s.rdb.HSet(ctx, s.hashKey(table), key, body).Err()
}

func (s *RedisStore) GetItem(ctx context.Context, table string, key attribute.Item) (attribute.Item, error) {
	k, err := s.schema.keyOf(table, key)
	if err != nil {
		return nil, err
	}
	body, err := s.rdb.HGet(ctx, s.hashKey(table), k).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return decodeItem(body)
}

// Scan reads the whole hash.  Items come back ordered by key.
func (s *RedisStore) Scan(ctx context.Context, table string) ([]attribute.Item, error) {
	all, err := s.rdb.HGetAll(ctx, s.hashKey(table)).Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	items := make([]attribute.Item, 0, len(keys))
	for _, k := range keys {
		item, err := decodeItem([]byte(all[k]))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// releaseScript deletes the lock only when it still carries our token, so
// an expired lock re-acquired by someone else is left alone.
var releaseScript = redis.NewScript(`
    if redis.call('GET', KEYS[1]) == ARGV[1] then
        return redis.call('DEL', KEYS[1])
    end
    return 0
`)

// RedisLocker implements Locker with SET NX PX plus a token-checked release.
// TTL bounds how long a crashed holder can block others.  The lock is never
// renewed, so a holder whose context outlives TTL gets an expiry stretched to
// its deadline plus lockHoldMargin; without a deadline the holder must finish
// within TTL.
type RedisLocker struct {
	rdb    *redis.Client
	prefix string
	TTL    time.Duration
	Retry  time.Duration
}

// NewRedisLocker returns a locker using keys "<prefix>:<name>".
func NewRedisLocker(rdb *redis.Client, prefix string) *RedisLocker {
	if prefix == "" {
		prefix = "lock"
	}
	return &RedisLocker{rdb: rdb, prefix: prefix, TTL: 10 * time.Second, Retry: 25 * time.Millisecond}
}

// lockHoldMargin covers the release round trip after the holder's deadline.
const lockHoldMargin = time.Second

func (l *RedisLocker) holdTTL(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl) + lockHoldMargin; d > l.TTL {
			return d
		}
	}
	return l.TTL
}

func (l *RedisLocker) Lock(ctx context.Context, name string) (func(), error) {
	key := l.prefix + ":" + name
	token, err := utils.RandomHex(16)
	if err != nil {
		return nil, err
	}
	ttl := l.holdTTL(ctx)

	ctx, cancel := context.WithTimeout(ctx, lockWait(ctx))
	defer cancel()
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%s: %w", name, ErrLockTimeout)
			}
			return nil, err
		}
		if ok {
			return func() {
				_ = releaseScript.Run(context.Background(), l.rdb, []string{key}, token).Err()
			}, nil
		}
		select {
		case <-time.After(l.Retry):
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", name, ErrLockTimeout)
		}
	}
}
