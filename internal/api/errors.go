package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gmail-analytics/internal/apperr"
)

// statusFor is the only place error kinds become HTTP status codes.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindUnauthenticated, apperr.KindInvalidCredential:
		return http.StatusUnauthorized
	case apperr.KindExchangeFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes {"detail": prefix + err} with the status of err's kind.
func abortWithError(c *gin.Context, prefix string, err error) {
	abortWithStatus(c, statusFor(err), prefix, err)
}

func abortWithStatus(c *gin.Context, status int, prefix string, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"detail": prefix + err.Error()})
}
