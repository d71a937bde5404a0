package handler

import (
	"context"
	"net/http"

	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/repository"
	"github.com/iliyamo/restaurant-booking/internal/service"
)

// ReservationHandler serves /reservations.
type ReservationHandler struct {
	Reservations *repository.ReservationRepo
	Booking      *service.Booking
}

func NewReservationHandler(reservations *repository.ReservationRepo, booking *service.Booking) *ReservationHandler {
	return &ReservationHandler{Reservations: reservations, Booking: booking}
}

type reservationsResp struct {
	Reservations []model.Reservation `json:"reservations"`
}

type createReservationResp struct {
	ReservationID string `json:"reservationId"`
}

// Create books a slot and returns the new reservation id.
func (h *ReservationHandler) Create(ctx context.Context, req Request) (Response, error) {
	var body repository.CreateReservationRequest
	if err := decodeBody(req, &body); err != nil {
		return Response{}, err
	}
	id, err := h.Booking.CreateReservation(ctx, body, subjectOf(ctx))
	if err != nil {
		return Response{}, err
	}
	return JSON(http.StatusOK, createReservationResp{ReservationID: id})
}

// List returns every reservation ordered by table number.  Reservation ids
// are not part of the listing.
func (h *ReservationHandler) List(ctx context.Context, _ Request) (Response, error) {
	list, err := h.Reservations.ListAll(ctx)
	if err != nil {
		return Response{}, err
	}
	return JSON(http.StatusOK, reservationsResp{Reservations: list})
}
