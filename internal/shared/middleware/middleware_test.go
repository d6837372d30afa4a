package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/shared/config"
	"turfbook/internal/users"
)

const testSecret = "middleware-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Minute).Unix()
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func newEngine(roles ...users.Role) *gin.Engine {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
	engine := gin.New()
	engine.GET("/guarded", JWTAuthWithConfig(cfg), RequireRoles(roles...), func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.UserID})
	})
	return engine
}

func call(engine *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestJWTAuthAndRoles(t *testing.T) {
	engine := newEngine(users.RoleTurfOwner)

	owner := signed(t, jwt.MapClaims{"user_id": 7, "role": "turf_owner", "type": "access"})
	organizer := signed(t, jwt.MapClaims{"user_id": "8", "role": "team_organizer", "type": "access"})
	refresh := signed(t, jwt.MapClaims{"user_id": 7, "role": "turf_owner", "type": "refresh"})
	unknownRole := signed(t, jwt.MapClaims{"user_id": 7, "role": "superuser", "type": "access"})
	expired := signed(t, jwt.MapClaims{"user_id": 7, "role": "turf_owner", "type": "access", "exp": time.Now().Add(-time.Minute).Unix()})

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"owner", owner, http.StatusOK},
		{"organizer", organizer, http.StatusForbidden},
		{"no header", "", http.StatusUnauthorized},
		{"refresh token", refresh, http.StatusUnauthorized},
		{"unknown role", unknownRole, http.StatusUnauthorized},
		{"expired", expired, http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(engine, "/guarded", tt.token)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	w := call(engine, "/guarded", owner)
	assert.JSONEq(t, `{"user_id":7}`, w.Body.String())
}

func TestClaimInt64(t *testing.T) {
	v, err := claimInt64(float64(42))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = claimInt64("43")
	require.NoError(t, err)
	assert.Equal(t, int64(43), v)

	_, err = claimInt64(true)
	assert.Error(t, err)
}
