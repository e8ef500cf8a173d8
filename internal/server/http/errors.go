package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/savethatagain/internal/common"
	"github.com/gin-gonic/gin"
)

const msgInternal = "Internal server error"

// errorStatus maps a service error to the response sent to the client.
// Unknown errors become a generic 500.
func errorStatus(err error) (int, string) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Msg
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, common.ErrGoogleOnlyAccount):
		return http.StatusUnauthorized, "This account uses Google Sign-In. Please login with Google."
	case errors.Is(err, common.ErrEmailRegisteredWithPassword):
		return http.StatusUnauthorized, "Email already registered with email/password. Please login with your password."
	case errors.Is(err, common.ErrEmailLinkedToOtherGoogle):
		return http.StatusUnauthorized, "Email already linked to a different Google account."
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// fail writes the mapped error response. Server errors are logged with the
// underlying cause, which never reaches the client.
func (h *Handler) fail(c *gin.Context, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
