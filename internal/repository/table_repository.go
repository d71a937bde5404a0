package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/iliyamo/restaurant-booking/internal/attribute"
	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/store"
)

// CreateTableRequest is the body accepted when creating a table.  Pointers
// distinguish an absent field from its zero value.
type CreateTableRequest struct {
	ID       *int  `json:"id" validate:"required,gte=0"`
	Number   *int  `json:"number" validate:"required"`
	Places   *int  `json:"places" validate:"required,gt=0"`
	IsVip    *bool `json:"isVip" validate:"required"`
	MinOrder *int  `json:"minOrder,omitempty" validate:"omitempty,gte=0"`
}

// UnmarshalJSON accepts id either as a JSON integer or as a string holding
// one, since the store keeps ids as strings and clients echo them back.
func (r *CreateTableRequest) UnmarshalJSON(b []byte) error {
	type plain CreateTableRequest
	var aux struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = CreateTableRequest(aux.plain)
	r.ID = nil
	raw := bytes.TrimSpace(aux.ID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var id int
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("id %q is not an integer", s)
		}
		id = n
	} else if err := json.Unmarshal(raw, &id); err != nil {
		return err
	}
	r.ID = &id
	return nil
}

// TableRepo translates tables to and from store items.  The item store
// table name is configured at startup.
type TableRepo struct {
	store store.ItemStore
	table string
}

// NewTableRepo returns a TableRepo writing to the given store table.
func NewTableRepo(s store.ItemStore, table string) *TableRepo {
	return &TableRepo{store: s, table: table}
}

// Create validates req and writes the table keyed by its caller supplied
// id.  An existing table with the same id is overwritten.
func (r *TableRepo) Create(ctx context.Context, req CreateTableRequest) (int, error) {
	if err := validateStruct(req); err != nil {
		return 0, err
	}
	t := model.Table{
		ID:       *req.ID,
		Number:   *req.Number,
		Places:   *req.Places,
		IsVip:    *req.IsVip,
		MinOrder: req.MinOrder,
	}
	if err := r.store.PutItem(ctx, r.table, tableToItem(t)); err != nil {
		return 0, upstream("put table", err)
	}
	return t.ID, nil
}

// GetByID returns the table stored under id, or ErrNotFound.
func (r *TableRepo) GetByID(ctx context.Context, id string) (model.Table, error) {
	item, err := r.store.GetItem(ctx, r.table, attribute.Item{"id": attribute.String(id)})
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return model.Table{}, fmt.Errorf("table %s: %w", id, ErrNotFound)
		}
		return model.Table{}, upstream("get table", err)
	}
	return tableFromItem(item)
}

// ListAll scans every table and returns them sorted by numeric id.
func (r *TableRepo) ListAll(ctx context.Context) ([]model.Table, error) {
	items, err := r.store.Scan(ctx, r.table)
	if err != nil {
		return nil, upstream("scan tables", err)
	}
	tables := make([]model.Table, 0, len(items))
	for _, item := range items {
		t, err := tableFromItem(item)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].ID < tables[j].ID })
	return tables, nil
}

// FindByNumber returns the table carrying the business number n, or
// ErrUnknownTable.
func (r *TableRepo) FindByNumber(ctx context.Context, n int) (model.Table, error) {
	tables, err := r.ListAll(ctx)
	if err != nil {
		return model.Table{}, err
	}
	for _, t := range tables {
		if t.Number == n {
			return t, nil
		}
	}
	return model.Table{}, fmt.Errorf("table number %d: %w", n, ErrUnknownTable)
}

func tableToItem(t model.Table) attribute.Item {
	item := attribute.Item{
		"id":     attribute.String(strconv.Itoa(t.ID)),
		"number": attribute.Int(int64(t.Number)),
		"places": attribute.Int(int64(t.Places)),
		"isVip":  attribute.Bool(t.IsVip),
	}
	if t.MinOrder != nil {
		item["minOrder"] = attribute.Int(int64(*t.MinOrder))
	}
	return item
}

func tableFromItem(item attribute.Item) (model.Table, error) {
	var (
		t   model.Table
		err error
	)
	if t.ID, err = item.GetInt("id"); err != nil {
		return t, fmt.Errorf("decode table: %w", err)
	}
	if t.Number, err = item.GetInt("number"); err != nil {
		return t, fmt.Errorf("decode table: %w", err)
	}
	if t.Places, err = item.GetInt("places"); err != nil {
		return t, fmt.Errorf("decode table: %w", err)
	}
	if t.IsVip, err = item.GetBool("isVip"); err != nil {
		return t, fmt.Errorf("decode table: %w", err)
	}
	if item.Has("minOrder") {
		m, err := item.GetInt("minOrder")
		if err != nil {
			return t, fmt.Errorf("decode table: %w", err)
		}
		t.MinOrder = &m
	}
	return t, nil
}
