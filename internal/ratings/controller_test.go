package ratings_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"turfbook/internal/bookings"
	"turfbook/internal/ratings"
	"turfbook/internal/shared/apperror"
	"turfbook/internal/shared/identity"
)

func rateOverHTTP(f *fixture, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), organizer))
		c.Next()
	})
	engine.PUT("/turfs/:id/ratings", ratings.NewController(f.svc).Rate)

	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/turfs/%d/ratings", f.turf.ID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRateHandlerRejectsFractionalRating(t *testing.T) {
	f := newFixture(t)
	b := f.booking(organizerID, bookings.PaymentStatusPaid)

	w := rateOverHTTP(f, fmt.Sprintf(`{"booking_id":%d,"rating":4.5}`, b.ID))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), string(apperror.KindInvalidRating))
	assert.Empty(t, f.repo.rows)
}

func TestRateHandlerAcceptsWholeRating(t *testing.T) {
	f := newFixture(t)
	b := f.booking(organizerID, bookings.PaymentStatusPaid)

	w := rateOverHTTP(f, fmt.Sprintf(`{"booking_id":%d,"rating":4}`, b.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, f.repo.rows, 1)
}
