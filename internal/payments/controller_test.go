package payments_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"turfbook/internal/payments"
	"turfbook/internal/shared/identity"
)

type recordingService struct {
	calls []payments.ReconcileRequest
}

func (s *recordingService) Reconcile(_ context.Context, _ identity.Identity, _ int64, req payments.ReconcileRequest) (*payments.Receipt, error) {
	s.calls = append(s.calls, req)
	return &payments.Receipt{}, nil
}

func reconcileWithKey(svc payments.Service, key string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), organizer))
		c.Next()
	})
	engine.POST("/bookings/:id/payments", payments.NewController(svc).Reconcile)

	req := httptest.NewRequest(http.MethodPost, "/bookings/7/payments", strings.NewReader(`{"reference":"ord-1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(payments.IdempotencyHeader, key)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestReconcileHandlerRejectsOversizedIdempotencyKey(t *testing.T) {
	svc := &recordingService{}

	w := reconcileWithKey(svc, strings.Repeat("k", payments.MaxIdempotencyKeyLength+1))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), payments.IdempotencyHeader)
	assert.Empty(t, svc.calls)
}

func TestReconcileHandlerPassesIdempotencyKey(t *testing.T) {
	svc := &recordingService{}
	key := strings.Repeat("k", payments.MaxIdempotencyKeyLength)

	w := reconcileWithKey(svc, key)

	assert.Equal(t, http.StatusOK, w.Code)
	if assert.Len(t, svc.calls, 1) {
		assert.Equal(t, key, svc.calls[0].IdempotencyKey)
		assert.Equal(t, "ord-1", svc.calls[0].Reference)
	}
}
