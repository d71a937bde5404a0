package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-booking/internal/attribute"
	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/store"
)

// CreateReservationRequest is the body accepted when booking a table.
// Slot times must be zero-padded HH:MM so that string comparison matches
// time order.
type CreateReservationRequest struct {
	TableNumber   *int   `json:"tableNumber" validate:"required"`
	ClientName    string `json:"clientName" validate:"required"`
	PhoneNumber   string `json:"phoneNumber" validate:"required"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	SlotTimeStart string `json:"slotTimeStart" validate:"required,len=5,datetime=15:04"`
	SlotTimeEnd   string `json:"slotTimeEnd" validate:"required,len=5,datetime=15:04"`
}

// ReservationRepo stores reservations and enforces that no two bookings
// of the same table on the same date overlap.  The overlap check and the
// write run under a lock named after the table number and date, so
// concurrent writers for the same table and day are serialised while
// unrelated bookings proceed in parallel.
type ReservationRepo struct {
	store  store.ItemStore
	locker store.Locker
	tables *TableRepo
	table  string
	newID  func() string
}

// NewReservationRepo returns a ReservationRepo.  tables resolves table
// numbers; locker must be shared by every process writing reservations.
func NewReservationRepo(s store.ItemStore, locker store.Locker, tables *TableRepo, table string) *ReservationRepo {
	return &ReservationRepo{store: s, locker: locker, tables: tables, table: table, newID: uuid.NewString}
}

// LockName is the lock guarding bookings of one table on one date.
func LockName(tableNumber int, date string) string {
	return "reservation:" + strconv.Itoa(tableNumber) + ":" + date
}

// Create validates req, checks the table exists, rejects overlaps with
// existing bookings and stores the reservation.  It returns the new
// reservation id.  Nothing is written unless every check passes.
func (r *ReservationRepo) Create(ctx context.Context, req CreateReservationRequest) (string, error) {
	if err := validateStruct(req); err != nil {
		return "", err
	}
	if req.SlotTimeStart >= req.SlotTimeEnd {
		return "", fmt.Errorf("%w: slotTimeStart must be before slotTimeEnd", ErrInvalidInput)
	}
	if _, err := r.tables.FindByNumber(ctx, *req.TableNumber); err != nil {
		return "", err
	}

	candidate := model.Reservation{
		TableNumber:   *req.TableNumber,
		ClientName:    req.ClientName,
		PhoneNumber:   req.PhoneNumber,
		Date:          req.Date,
		SlotTimeStart: req.SlotTimeStart,
		SlotTimeEnd:   req.SlotTimeEnd,
	}

	release, err := r.locker.Lock(ctx, LockName(candidate.TableNumber, candidate.Date))
	if err != nil {
		return "", upstream("lock reservations", err)
	}
	defer release()

	existing, err := r.scan(ctx)
	if err != nil {
		return "", err
	}
	for _, e := range existing {
		if candidate.ConflictsWith(e) {
			return "", fmt.Errorf("%w exists for table %d", ErrConflictingReservation, candidate.TableNumber)
		}
	}

	candidate.ID = r.newID()
	if err := r.store.PutItem(ctx, r.table, reservationToItem(candidate)); err != nil {
		return "", upstream("put reservation", err)
	}
	return candidate.ID, nil
}

// ListAll returns every reservation sorted by table number.  Reservations
// of the same table keep their scan order.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	list, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].TableNumber < list[j].TableNumber })
	return list, nil
}

func (r *ReservationRepo) scan(ctx context.Context) ([]model.Reservation, error) {
	items, err := r.store.Scan(ctx, r.table)
	if err != nil {
		return nil, upstream("scan reservations", err)
	}
	list := make([]model.Reservation, 0, len(items))
	for _, item := range items {
		res, err := reservationFromItem(item)
		if err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	return list, nil
}

func reservationToItem(res model.Reservation) attribute.Item {
	return attribute.Item{
		"id":            attribute.String(res.ID),
		"tableNumber":   attribute.Int(int64(res.TableNumber)),
		"clientName":    attribute.String(res.ClientName),
		"phoneNumber":   attribute.String(res.PhoneNumber),
		"date":          attribute.String(res.Date),
		"slotTimeStart": attribute.String(res.SlotTimeStart),
		"slotTimeEnd":   attribute.String(res.SlotTimeEnd),
	}
}

func reservationFromItem(item attribute.Item) (model.Reservation, error) {
	var (
		res model.Reservation
		err error
	)
	fields := []struct {
		key string
		dst *string
	}{
		{"id", &res.ID},
		{"clientName", &res.ClientName},
		{"phoneNumber", &res.PhoneNumber},
		{"date", &res.Date},
		{"slotTimeStart", &res.SlotTimeStart},
		{"slotTimeEnd", &res.SlotTimeEnd},
	}
	for _, f := range fields {
		if *f.dst, err = item.GetString(f.key); err != nil {
			return res, fmt.Errorf("decode reservation: %w", err)
		}
	}
	if res.TableNumber, err = item.GetInt("tableNumber"); err != nil {
		return res, fmt.Errorf("decode reservation: %w", err)
	}
	return res, nil
}
