package bookings_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/bookings"
	"turfbook/internal/shared/identity"
)

// fakeAuth stands in for the JWT middleware.
func fakeAuth(id identity.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func newEngine(f *fixture, as identity.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	bookings.SetupBookingRoutes(engine.Group("/api/v1"), bookings.NewController(f.svc), fakeAuth(as))
	return engine
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  any             `json:"errors"`
}

func do(t *testing.T, engine *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (e envelope) kind() string {
	m, _ := e.Errors.(map[string]any)
	k, _ := m["kind"].(string)
	return k
}

func TestCreateBookingEndpoint(t *testing.T) {
	f := newFixture(t)
	engine := newEngine(f, organizer)

	body := `{"turf_id":` + strconv.FormatInt(f.turf.ID, 10) + `,"date":"2025-06-01","start_time":"18:00","end_time":"19:00"}`
	w, env := do(t, engine, http.MethodPost, "/api/v1/bookings", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	var b bookings.Booking
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.Equal(t, bookings.StatusPending, b.Status)

	w, env = do(t, engine, http.MethodPost, "/api/v1/bookings", `{"turf_id":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", env.Status)
}

func TestOwnerRoutesRequireRole(t *testing.T) {
	f := newFixture(t)
	engine := newEngine(f, organizer)

	w, _ := do(t, engine, http.MethodPost, "/api/v1/owner/bookings/5/approve", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
	f := newFixture(t)
	engine := newEngine(f, organizer)

	w, env := do(t, engine, http.MethodGet, "/api/v1/turfs/"+strconv.FormatInt(f.turf.ID, 10)+"/availability?date=2025-06-01", "")
	require.Equal(t, http.StatusOK, w.Code)

	var a bookings.Availability
	require.NoError(t, json.Unmarshal(env.Data, &a))
	assert.Len(t, a.Slots, 34)

	w, env = do(t, engine, http.MethodGet, "/api/v1/turfs/1/availability?date=June-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", env.kind())
}

func TestCashEndpointMapsAlreadyPaid(t *testing.T) {
	f := newFixture(t)
	engine := newEngine(f, organizer)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	b, err := f.svc.CreateBooking(ctx, organizer, f.request("18:00", "19:00"))
	require.NoError(t, err)

	w, env := do(t, engine, http.MethodPost, "/api/v1/bookings/"+strconv.FormatInt(b.ID, 10)+"/cash", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_OR_ALREADY_PAID", env.kind())
}
