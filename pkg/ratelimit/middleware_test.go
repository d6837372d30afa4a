package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetRateLimitType(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   RateLimitType
	}{
		{http.MethodGet, "/health", RateLimitTypeHealth},
		{http.MethodPost, "/api/v1/admin/sweeps", RateLimitTypeAdmin},
		{http.MethodPost, "/api/v1/auth/login", RateLimitTypeAuth},
		{http.MethodPost, "/api/v1/bookings/:id/payments", RateLimitTypeBookingCritical},
		{http.MethodPost, "/api/v1/owner/bookings/:id/cancel", RateLimitTypeBookingCritical},
		{http.MethodPost, "/api/v1/bookings", RateLimitTypeBookingCritical},
		{http.MethodGet, "/api/v1/bookings", RateLimitTypeBooking},
		{http.MethodGet, "/api/v1/turfs/:id/availability", RateLimitTypePublic},
		{http.MethodGet, "/swagger/*any", RateLimitTypeDefault},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, getRateLimitType(tt.method, tt.path))
		})
	}
}

func TestIsAllowedWhenDisabled(t *testing.T) {
	limiter := NewRateLimiter(nil, &Config{Enabled: false, PublicRequests: 5})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	result, err := limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypePublic)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 5, result.Limit)
}

func TestWhitelistedClientSkipsRedis(t *testing.T) {
	limiter := NewRateLimiter(nil, &Config{Enabled: true, AuthRequests: 3, WhitelistedIPs: []string{"10.0.0.9"}})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	result, err := limiter.IsAllowed(ctx, "10.0.0.9", RateLimitTypeAuth)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 3, result.Remaining)
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "192.168.1.4:5555"
	assert.Equal(t, "192.168.1.4", getClientIP(c))

	c.Request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", getClientIP(c))
}
