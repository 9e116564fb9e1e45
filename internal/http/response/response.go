package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/productintel-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAppError maps an application error to its HTTP shape. The wrapped
// cause never reaches the client, only the curated message does.
func RespondAppError(c *gin.Context, err error) {
	if ae := apierr.From(err); ae != nil {
		c.JSON(ae.Status, ErrorEnvelope{
			Error: APIError{
				Message: ae.Message(),
				Code:    ae.Code,
			},
		})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorEnvelope{
		Error: APIError{
			Message: "internal error",
			Code:    "internal_error",
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
