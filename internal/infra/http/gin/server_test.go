package ginserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeboard/internal/app/bootstrap"
	"tradeboard/internal/app/dto"
	"tradeboard/internal/app/reservation"
	"tradeboard/internal/app/uow"
	"tradeboard/internal/domain/transactions"
	"tradeboard/internal/infra/obs"
	"tradeboard/internal/infra/storage/memory"
	"tradeboard/internal/infra/validation"
)

var testSecret = []byte("test-secret")

type testServer struct {
	router   *gin.Engine
	payments *memory.Payments
	outbox   *memory.Outbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	factory := memory.NewFactory()
	payments := memory.NewPayments(logger)
	box := memory.NewOutbox(logger)
	metrics := obs.NewMetrics()
	app, err := bootstrap.Build(bootstrap.Dependencies{
		UoWFactory:  factory,
		Calendars:   factory.CalendarsRepo,
		Outbox:      box,
		Idempotency: memory.NewIdempotencyStore(time.Hour),
		Validator:   validation.New(),
		Payments:    payments,
		Metrics:     metrics,
		Policy:      transactions.PolicyPermissive,
		LockWait:    reservation.DefaultLockWait,
		Logger:      logger,
		Now:         func() time.Time { return time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)

	router := NewRouter(obs.Middleware{Logger: logger, Metrics: metrics}, obs.HealthHandlers{}, Handlers{
		Announcements:  AnnouncementHandler{Commands: app.Commands, Queries: app.Queries, DefaultCurrency: "EUR"},
		Calendar:       CalendarHandler{Commands: app.Commands, Queries: app.Queries},
		Transactions:   TransactionHandler{Commands: app.Commands, Queries: app.Queries},
		AuthMiddleware: AuthMiddleware{Secret: testSecret, Logger: logger}.Handle,
		Metrics:        metrics.Handler(),
	})
	return &testServer{router: router, payments: payments, outbox: box}
}

func signToken(t *testing.T, customerID string) string {
	t.Helper()
	claims := Claims{
		ID: customerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, customerID string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if customerID != "" {
		req.Header.Set("Authorization", "Bearer "+signToken(t, customerID))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, rec)["code"]
}

func (s *testServer) createRental(t *testing.T, owner string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/announcements", owner, map[string]any{
		"kind":        "RENTAL",
		"title":       "Camping tent",
		"daily_price": map[string]any{"amount": 5000},
		"deposit":     map[string]any{"amount": 10000},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[dto.Announcement](t, rec).ID
	rec = s.do(t, http.MethodPost, "/api/v1/announcements/"+id+"/calendar/open", owner, map[string]any{
		"dates": []string{"2024-06-01", "2024-06-02", "2024-06-03", "2024-06-04", "2024-06-05"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return id
}

func TestRentalLifecycle(t *testing.T) {
	s := newTestServer(t)
	id := s.createRental(t, "owner")

	rec := s.do(t, http.MethodPost, "/api/v1/transactions", "buyer", map[string]any{
		"announcement_id": id,
		"start_date":      "2024-06-02",
		"end_date":        "2024-06-03",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tx := decode[dto.Transaction](t, rec)
	assert.Equal(t, "CONFIRMED", tx.Status)
	assert.Equal(t, int64(10000), tx.TotalPrice.Amount)
	assert.Equal(t, "EUR", tx.TotalPrice.Currency)
	assert.Equal(t, 2, tx.Days)
	require.NotNil(t, tx.Deposit)
	assert.Equal(t, int64(10000), tx.Deposit.Amount)
	require.Len(t, s.payments.Requests(), 1)

	rec = s.do(t, http.MethodPost, "/api/v1/transactions", "other", map[string]any{
		"announcement_id": id,
		"start_date":      "2024-06-03",
		"end_date":        "2024-06-04",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, codeDatesUnavailable, errorCode(t, rec))

	rec = s.do(t, http.MethodGet, "/api/v1/announcements/"+id+"/calendar", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cal := decode[dto.Calendar](t, rec)
	assert.Equal(t, []string{"2024-06-02", "2024-06-03"}, cal.RentedDates)
	assert.Equal(t, []string{"2024-06-01", "2024-06-04", "2024-06-05"}, cal.BookableDates)

	rec = s.do(t, http.MethodPost, "/api/v1/transactions/"+tx.ID+"/cancel", "buyer", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "CANCELLED", decode[dto.Transaction](t, rec).Status)

	rec = s.do(t, http.MethodGet, "/api/v1/announcements/"+id+"/calendar", "", nil)
	cal = decode[dto.Calendar](t, rec)
	assert.Empty(t, cal.RentedDates)
	assert.Len(t, cal.BookableDates, 5)

	rec = s.do(t, http.MethodGet, "/api/v1/transactions", "buyer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[dto.TransactionCollection](t, rec).Items, 1)

	assert.Contains(t, s.outbox.Published(), "calendar.range_reserved")
	assert.Contains(t, s.outbox.Published(), "calendar.range_released")
}

func TestSaleTransactionIgnoresDates(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/v1/announcements", "owner", map[string]any{
		"kind":                "SALE",
		"title":               "Bike",
		"sale_price":          map[string]any{"amount": 25000, "currency": "usd"},
		"manual_confirmation": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[dto.Announcement](t, rec).ID

	rec = s.do(t, http.MethodPost, "/api/v1/transactions", "buyer", map[string]any{"announcement_id": id})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tx := decode[dto.Transaction](t, rec)
	assert.Equal(t, "PENDING_CONFIRMATION", tx.Status)
	assert.Equal(t, int64(25000), tx.TotalPrice.Amount)
	assert.Equal(t, "USD", tx.TotalPrice.Currency)
	assert.Empty(t, tx.StartDate)
	assert.Nil(t, tx.Deposit)
	assert.Empty(t, s.payments.Requests())

	rec = s.do(t, http.MethodPatch, "/api/v1/transactions/"+tx.ID+"/status", "owner", map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "CONFIRMED", decode[dto.Transaction](t, rec).Status)
	assert.Len(t, s.payments.Requests(), 1)

	rec = s.do(t, http.MethodGet, "/api/v1/transactions/"+tx.ID, "stranger", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTransactionErrors(t *testing.T) {
	s := newTestServer(t)
	id := s.createRental(t, "owner")

	tests := []struct {
		name   string
		user   string
		body   map[string]any
		status int
		code   string
	}{
		{"unauthenticated", "", map[string]any{"announcement_id": id}, http.StatusUnauthorized, codeUnauthenticated},
		{"unknown announcement", "buyer", map[string]any{"announcement_id": "missing", "start_date": "2024-06-01", "end_date": "2024-06-01"}, http.StatusNotFound, codeNotFound},
		{"missing period", "buyer", map[string]any{"announcement_id": id}, http.StatusBadRequest, codeInvalidRange},
		{"inverted range", "buyer", map[string]any{"announcement_id": id, "start_date": "2024-06-03", "end_date": "2024-06-01"}, http.StatusBadRequest, codeInvalidRange},
		{"past start", "buyer", map[string]any{"announcement_id": id, "start_date": "2024-05-01", "end_date": "2024-06-01"}, http.StatusBadRequest, codeInvalidRange},
		{"malformed date", "buyer", map[string]any{"announcement_id": id, "start_date": "June 1", "end_date": "2024-06-01"}, http.StatusBadRequest, codeInvalidRange},
		{"dates not opened", "buyer", map[string]any{"announcement_id": id, "start_date": "2024-06-05", "end_date": "2024-06-06"}, http.StatusConflict, codeDatesUnavailable},
		{"missing announcement id", "buyer", map[string]any{}, http.StatusBadRequest, codeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/v1/transactions", tt.user, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestIdempotentCreateReplaysFirstResult(t *testing.T) {
	s := newTestServer(t)
	id := s.createRental(t, "owner")
	body := map[string]any{"announcement_id": id, "start_date": "2024-06-01", "end_date": "2024-06-01"}

	first := s.do(t, http.MethodPost, "/api/v1/transactions", "buyer", body, "Idempotency-Key", "abc")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := s.do(t, http.MethodPost, "/api/v1/transactions", "buyer", body, "Idempotency-Key", "abc")
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())

	assert.Equal(t, decode[dto.Transaction](t, first).ID, decode[dto.Transaction](t, second).ID)
	rec := s.do(t, http.MethodGet, "/api/v1/transactions", "buyer", nil)
	assert.Len(t, decode[dto.TransactionCollection](t, rec).Items, 1)
}

func TestOwnerOnlyCalendarAndAnnouncementEdits(t *testing.T) {
	s := newTestServer(t)
	id := s.createRental(t, "owner")

	rec := s.do(t, http.MethodPost, "/api/v1/announcements/"+id+"/calendar/open", "intruder", map[string]any{"dates": []string{"2024-07-01"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/v1/announcements/"+id, "intruder", map[string]any{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/v1/announcements/"+id, "owner", map[string]any{"kind": "SALE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeInvalidTerms, errorCode(t, rec))

	rec = s.do(t, http.MethodPost, "/api/v1/announcements/"+id+"/calendar/open", "owner", map[string]any{"dates": []string{"2024-05-19"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeInvalidRange, errorCode(t, rec))
}

func TestDeleteAnnouncementRemovesCalendar(t *testing.T) {
	s := newTestServer(t)
	id := s.createRental(t, "owner")

	rec := s.do(t, http.MethodDelete, "/api/v1/announcements/"+id, "owner", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/announcements/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/announcements/"+id+"/calendar", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidTokenIsRejected(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubjectClaimFallback(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "cust-7"}}
	assert.Equal(t, "cust-7", claims.CustomerID())
	claims.ID = "cust-8"
	assert.Equal(t, "cust-8", claims.CustomerID())
}

func TestBusyResponseCarriesRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for name, err := range map[string]error{
		"lock wait":       reservation.ErrBusy,
		"commit conflict": fmt.Errorf("commit unit of work: %w", fmt.Errorf("%w: WriteConflict", uow.ErrCommitConflict)),
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			writeError(c, err)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			assert.Equal(t, codeBusy, errorCode(t, rec))
		})
	}
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	s := newTestServer(t)
	s.createRental(t, "owner")

	rec := s.do(t, http.MethodGet, "/livez", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tradeboard_http_request_duration_seconds")
}
