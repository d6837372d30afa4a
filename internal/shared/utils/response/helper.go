package response

import (
	"turfbook/internal/shared/apperror"
	"turfbook/pkg/logger"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError writes a classified service error. The kind is exposed to the
// client, the internal cause only reaches the log.
func RespondError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	code := apperror.HTTPStatus(kind)
	if code >= 500 {
		logger.GetDefault().LogHTTPError(c, err, code)
	}
	c.JSON(code, StandardApiResponse{
		Status:     "error",
		StatusCode: code,
		Message:    apperror.PublicMessage(err),
		Errors:     map[string]string{"kind": string(kind)},
	})
}
