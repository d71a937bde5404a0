package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/repository"
	"github.com/iliyamo/restaurant-booking/internal/service"
)

// TableHandler serves /tables and /tables/{id}.
type TableHandler struct {
	Tables  *repository.TableRepo
	Booking *service.Booking
}

func NewTableHandler(tables *repository.TableRepo, booking *service.Booking) *TableHandler {
	return &TableHandler{Tables: tables, Booking: booking}
}

type tablesResp struct {
	Tables []model.Table `json:"tables"`
}

type createTableResp struct {
	ID int `json:"id"`
}

// List returns every table sorted by id.
func (h *TableHandler) List(ctx context.Context, _ Request) (Response, error) {
	tables, err := h.Tables.ListAll(ctx)
	if err != nil {
		return Response{}, err
	}
	return JSON(http.StatusOK, tablesResp{Tables: tables})
}

// Create stores the table from the request body and echoes its id.
func (h *TableHandler) Create(ctx context.Context, req Request) (Response, error) {
	var body repository.CreateTableRequest
	if err := decodeBody(req, &body); err != nil {
		return Response{}, err
	}
	id, err := h.Booking.CreateTable(ctx, body, subjectOf(ctx))
	if err != nil {
		return Response{}, err
	}
	return JSON(http.StatusOK, createTableResp{ID: id})
}

// Get returns the table whose id is the last path segment.
func (h *TableHandler) Get(ctx context.Context, req Request) (Response, error) {
	id := req.Path[strings.LastIndexByte(req.Path, '/')+1:]
	t, err := h.Tables.GetByID(ctx, id)
	if err != nil {
		return Response{}, err
	}
	return JSON(http.StatusOK, t)
}
