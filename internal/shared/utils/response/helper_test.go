package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/shared/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/bookings/1/cancel", nil)

	RespondError(c, apperror.Wrap(apperror.KindTransactionFailed, "Could not cancel booking", errors.New("pq: deadlock detected")))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body StandardApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Could not cancel booking", body.Message)
	assert.NotContains(t, w.Body.String(), "deadlock")
}

func TestRespondErrorStatusFromKind(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondError(c, apperror.New(apperror.KindPastDeadline, "Booking has already started"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), string(apperror.KindPastDeadline))
}
