package httpkit

import (
	"net/http"

	"marketing_dashboard_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error response format. Code is the stable
// machine-readable apperr kind.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// HandleError maps domain errors to HTTP responses. Typed apperr errors keep
// their kind anywhere in the wrap chain; anything else is a 500 with a
// generic message. Returns true if an error was handled.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if domainErr, ok := apperr.As(err); ok {
		message := domainErr.Message
		if domainErr.Kind == apperr.KindInternal || domainErr.Kind == apperr.KindIsolation {
			message = publicMessage(domainErr.Kind)
		}
		c.JSON(domainErr.HTTPStatus(), ErrorResponse{
			Error:   message,
			Code:    domainErr.Kind.String(),
			Details: domainErr.Details,
		})
		return true
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
		Code:  apperr.KindInternal.String(),
	})
	return true
}

func publicMessage(kind apperr.Kind) string {
	if kind == apperr.KindIsolation {
		return "records outside the active client were detected; the request was rejected"
	}
	return "internal server error"
}
