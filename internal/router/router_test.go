package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/restaurant-booking/internal/attribute"
	"github.com/iliyamo/restaurant-booking/internal/config"
	"github.com/iliyamo/restaurant-booking/internal/handler"
	"github.com/iliyamo/restaurant-booking/internal/identity"
	"github.com/iliyamo/restaurant-booking/internal/queue"
	"github.com/iliyamo/restaurant-booking/internal/repository"
	"github.com/iliyamo/restaurant-booking/internal/service"
	"github.com/iliyamo/restaurant-booking/internal/store"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
	return m.Called(ctx, ev).Error(0)
}

type fixture struct {
	router *Router
	store  *store.MemoryStore
	events *mockPublisher
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	s := store.NewMemoryStore(store.Schema{"users": "email"})
	return newFixtureOn(t, s, s)
}

func newFixtureOn(t *testing.T, items store.ItemStore, mem *store.MemoryStore) fixture {
	t.Helper()
	log, _ := test.NewNullLogger()
	tables := repository.NewTableRepo(items, "tables")
	reservations := repository.NewReservationRepo(items, store.NewMemoryLocker(), tables, "reservations")
	events := new(mockPublisher)
	events.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	booking := &service.Booking{Tables: tables, Reservations: reservations, Events: events, Log: log}
	provider := identity.NewLocalProvider(repository.NewUserRepo(items, "users"), identity.Options{
		TokenSecret: "secret", BcryptCost: bcrypt.MinCost,
	})
	r := New(Handlers{
		Auth:         handler.NewAuthHandler(provider, log),
		Tables:       handler.NewTableHandler(tables, booking),
		Reservations: handler.NewReservationHandler(reservations, booking),
	}, log)
	return fixture{router: r, store: mem, events: events}
}

func token(t *testing.T, sub string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func (f fixture) call(method, path, tok string, body string) handler.Response {
	req := handler.Request{Path: path, HTTPMethod: method, Headers: map[string]string{}}
	if tok != "" {
		req.Headers["Authorization"] = "Bearer " + tok
	}
	if body != "" {
		req.Body = &body
	}
	return f.router.Handle(context.Background(), req)
}

func bodyOf(t *testing.T, resp handler.Response) map[string]any {
	t.Helper()
	require.NotNil(t, resp.Body)
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(*resp.Body), &m))
	return m
}

func TestEndToEndBooking(t *testing.T) {
	f := newFixture(t)
	tok := token(t, "user-1")

	resp := f.call("POST", "/tables", tok, `{"id":"1","number":5,"places":4,"isVip":false}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, *resp.Body)
	assert.JSONEq(t, `{"id":1}`, *resp.Body)

	resp = f.call("GET", "/tables", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"tables":[{"id":1,"number":5,"places":4,"isVip":false}]}`, *resp.Body)

	resp = f.call("POST", "/reservations", tok, `{"tableNumber":5,"clientName":"Jane Doe","phoneNumber":"0123",
		"date":"2024-06-01","slotTimeStart":"10:00","slotTimeEnd":"11:00"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, *resp.Body)
	assert.NotEmpty(t, bodyOf(t, resp)["reservationId"])

	resp = f.call("POST", "/reservations", tok, `{"tableNumber":5,"clientName":"John Roe","phoneNumber":"0456",
		"date":"2024-06-01","slotTimeStart":"10:30","slotTimeEnd":"11:30"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, bodyOf(t, resp)["message"], "conflicting reservation exists for table 5")
	assert.Equal(t, 1, f.store.Len("reservations"))

	resp = f.call("GET", "/reservations", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"reservations":[{"tableNumber":5,"clientName":"Jane Doe","phoneNumber":"0123",
		"date":"2024-06-01","slotTimeStart":"10:00","slotTimeEnd":"11:00"}]}`, *resp.Body)

	f.events.AssertNumberOfCalls(t, "Publish", 2)
}

func TestEnvelopeHeaders(t *testing.T) {
	f := newFixture(t)
	for _, resp := range []handler.Response{
		f.call("GET", "/tables", token(t, "u"), ""),
		f.call("GET", "/tables", "", ""),
		f.call("DELETE", "/tables", token(t, "u"), ""),
	} {
		assert.False(t, resp.IsBase64Encoded)
		assert.Equal(t, "application/json", resp.Headers["Content-Type"])
		assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
		assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Methods"])
		assert.Equal(t, "*", resp.Headers["Accept-Version"])
		assert.Contains(t, resp.Headers["Access-Control-Allow-Headers"], "Authorization")
	}
}

func TestGateShortCircuits(t *testing.T) {
	f := newFixture(t)
	body := `{"id":1,"number":5,"places":4,"isVip":false}`

	for name, headers := range map[string]map[string]string{
		"missing":   {},
		"bad scheme": {"Authorization": "Token abc"},
		"malformed": {"Authorization": "Bearer not-a-jwt"},
	} {
		t.Run(name, func(t *testing.T) {
			resp := f.router.Handle(context.Background(), handler.Request{
				Path: "/tables", HTTPMethod: "POST", Headers: headers, Body: &body,
			})
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.NotEmpty(t, bodyOf(t, resp)["message"])
		})
	}
	assert.Equal(t, 0, f.store.Len("tables"), "no handler ran")
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestUnknownRoutes(t *testing.T) {
	f := newFixture(t)
	tok := token(t, "u")

	for _, c := range []struct{ method, path string }{
		{"DELETE", "/tables"},
		{"GET", "/tables/abc"},
		{"GET", "/tables/1/extra"},
		{"PUT", "/reservations"},
		{"GET", "/signup"},
		{"GET", "/nowhere"},
	} {
		resp := f.call(c.method, c.path, tok, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, c.method+" "+c.path)
		assert.Equal(t, "Endpoint not found", bodyOf(t, resp)["message"])
	}

	resp := f.call("GET", "/nowhere", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "gate runs before route resolution")
}

func TestMethodMatchingIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	resp := f.call("get", "/tables", token(t, "u"), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetTableByID(t *testing.T) {
	f := newFixture(t)
	tok := token(t, "u")
	require.Equal(t, http.StatusOK, f.call("POST", "/tables", tok, `{"id":3,"number":7,"places":2,"isVip":true,"minOrder":500}`).StatusCode)

	resp := f.call("GET", "/tables/3", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":3,"number":7,"places":2,"isVip":true,"minOrder":500}`, *resp.Body)

	resp = f.call("GET", "/tables/999", tok, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1, f.store.Len("tables"))
}

func TestBadInputIs400(t *testing.T) {
	f := newFixture(t)
	tok := token(t, "u")

	for _, c := range []struct{ path, body string }{
		{"/tables", ""},
		{"/tables", "{"},
		{"/tables", `{"number":1}`},
		{"/reservations", `{"tableNumber":1}`},
		{"/reservations", `{"tableNumber":42,"clientName":"a","phoneNumber":"1","date":"2024-06-01","slotTimeStart":"10:00","slotTimeEnd":"11:00"}`},
	} {
		resp := f.call("POST", c.path, tok, c.body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, c.body)
		assert.NotEmpty(t, bodyOf(t, resp)["message"])
	}
}

func TestSignupSigninTokenPassesGate(t *testing.T) {
	f := newFixture(t)

	resp := f.call("POST", "/signup", "", `{"firstName":"Jane","lastName":"Doe","email":"jane@example.com","password":"Passw0rd!"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, resp.Body)

	resp = f.call("POST", "/signin", "", `{"email":"jane@example.com","password":"Passw0rd!"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	idToken, _ := bodyOf(t, resp)["idToken"].(string)
	require.NotEmpty(t, idToken)

	resp = f.call("GET", "/tables", idToken, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.call("POST", "/signin", "", `{"email":"jane@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.call("POST", "/signup", "", `{"firstName":"Jane","lastName":"Doe","email":"jane@example.com","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "duplicate signup")

	resp = f.call("POST", "/signup", "", `{"email":"jane@example.com","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "missing names")
}

type panickingStore struct{ store.ItemStore }

func (panickingStore) Scan(context.Context, string) ([]attribute.Item, error) {
	panic("scan exploded")
}

func TestPanicsBecome400(t *testing.T) {
	mem := store.NewMemoryStore(nil)
	f := newFixtureOn(t, panickingStore{mem}, mem)

	resp := f.call("GET", "/tables", token(t, "u"), "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "scan exploded", bodyOf(t, resp)["message"])
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(repository.ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, StatusFor(repository.ErrConflictingReservation))
	assert.Equal(t, http.StatusBadRequest, StatusFor(repository.ErrUnknownTable))
	assert.Equal(t, http.StatusBadRequest, StatusFor(repository.ErrUpstream))
	assert.Equal(t, http.StatusBadRequest, StatusFor(assert.AnError))
}

func TestEchoAdapter(t *testing.T) {
	f := newFixture(t)
	log, _ := test.NewNullLogger()
	e := echo.New()
	RegisterRoutes(e, Deps{Router: f.router, Log: log, RateLimit: config.RateLimitConfig{}, Cache: config.CacheConfig{}})

	serve := func(method, target, tok, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := serve(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(http.MethodPost, "/tables", token(t, "u"), `{"id":1,"number":5,"places":4,"isVip":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"id":1}`, rec.Body.String())

	rec = serve(http.MethodGet, "/tables/1", token(t, "u"), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(http.MethodGet, "/tables", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(http.MethodGet, "/missing", token(t, "u"), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Endpoint not found"}`, rec.Body.String())
}

func TestRequestFromHTTP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/tables?x=1", http.NoBody)
	got, err := RequestFromHTTP(req)
	require.NoError(t, err)
	assert.Equal(t, "/tables", got.Path)
	assert.Nil(t, got.Body)

	req = httptest.NewRequest(http.MethodPost, "/tables", strings.NewReader(strings.Repeat("x", maxBodyBytes+1)))
	_, err = RequestFromHTTP(req)
	assert.Error(t, err)
}
