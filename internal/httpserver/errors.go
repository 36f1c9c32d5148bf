package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"eventhub/internal/domain"
	authsvc "eventhub/internal/service/auth"
	"github.com/gin-gonic/gin"
)

// writeError maps domain error kinds to HTTP statuses. Unknown errors are
// logged and reported as a generic 500.
func (h *handlers) writeError(c *gin.Context, err error) {
	var status int
	msg := domain.Message(err)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidOperation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, authsvc.ErrInvalidCredentials), errors.Is(err, authsvc.ErrInvalidToken):
		status = http.StatusUnauthorized
		msg = err.Error()
	default:
		h.logger.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": msg})
}

func (h *handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
