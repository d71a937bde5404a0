package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/iliyamo/restaurant-booking/internal/attribute"
)

// itemsDDL creates the single table backing every logical item table.  The
// item body is stored as its wire-format JSON.
const itemsDDL = `CREATE TABLE IF NOT EXISTS items (
    table_name VARCHAR(128) NOT NULL,
    item_key   VARCHAR(255) NOT NULL,
    body       JSON         NOT NULL,
    updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    PRIMARY KEY (table_name, item_key)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// MySQLStore keeps items in a MySQL "items" table.
type MySQLStore struct {
	db     *sql.DB
	schema Schema
}

// NewMySQLStore returns a store bound to db.  Call EnsureSchema once at
// startup.
func NewMySQLStore(db *sql.DB, schema Schema) *MySQLStore {
	return &MySQLStore{db: db, schema: schema}
}

// EnsureSchema creates the items table when missing.
func (s *MySQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, itemsDDL)
	return err
}

func (s *MySQLStore) PutItem(ctx context.Context, table string, item attribute.Item) error {
	key, err := s.schema.keyOf(table, item)
	if err != nil {
		return err
	}
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode item: %w", err)
	}
	const q = `INSERT INTO items (table_name, item_key, body) VALUES (?, ?, ?)
               ON DUPLICATE KEY UPDATE body = VALUES(body)`
	_, err = s.db.ExecContext(ctx, q, table, key, body)
	return err
}

func (s *MySQLStore) GetItem(ctx context.Context, table string, key attribute.Item) (attribute.Item, error) {
	k, err := s.schema.keyOf(table, key)
	if err != nil {
		return nil, err
	}
	const q = `SELECT body FROM items WHERE table_name = ? AND item_key = ?`
	var body []byte
	if err := s.db.QueryRowContext(ctx, q, table, k).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return decodeItem(body)
}

func (s *MySQLStore) Scan(ctx context.Context, table string) ([]attribute.Item, error) {
	const q = `SELECT body FROM items WHERE table_name = ? ORDER BY item_key`
	rows, err := s.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []attribute.Item{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		item, err := decodeItem(body)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// MySQLLocker uses MySQL named locks.  GET_LOCK is scoped to a session, so
// each held lock pins one pooled connection until it is released.
type MySQLLocker struct {
	db *sql.DB
}

// NewMySQLLocker returns a locker backed by db.
func NewMySQLLocker(db *sql.DB) *MySQLLocker { return &MySQLLocker{db: db} }

func (l *MySQLLocker) Lock(ctx context.Context, name string) (func(), error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	// GET_LOCK takes whole seconds; round up so short deadlines still wait.
	secs := int(math.Ceil(lockWait(ctx).Seconds()))
	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", name, secs).Scan(&got); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if !got.Valid || got.Int64 != 1 {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", name, ErrLockTimeout)
	}
	return func() {
		// The request context may already be done; release regardless.
		var released sql.NullInt64
		_ = conn.QueryRowContext(context.Background(), "SELECT RELEASE_LOCK(?)", name).Scan(&released)
		_ = conn.Close()
	}, nil
}
