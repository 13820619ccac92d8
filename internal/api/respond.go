package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pbaille/focusflow/internal/domain"
	"github.com/pbaille/focusflow/internal/features"
	"github.com/pbaille/focusflow/internal/ingest"
	"github.com/pbaille/focusflow/internal/logging"
	"github.com/pbaille/focusflow/internal/store"
)

const (
	userHeader = "X-User-ID"
	userKey    = "userID"
)

// requireUser rejects requests that do not name a user
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(userHeader))
		if id == "" {
			writeError(c, http.StatusUnauthorized, "missing "+userHeader+" header")
			c.Abort()
			return
		}
		c.Set(userKey, id)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userKey)
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// fail maps err onto a status code and writes it
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrEmailTaken), errors.Is(err, store.ErrSessionEnded):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, features.ErrInvalidInput),
		errors.Is(err, ingest.ErrBadPayload),
		errors.Is(err, errBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		logging.FromContext(c.Request.Context()).Error("request failed", "error", err)
		writeError(c, http.StatusInternalServerError, "internal server error")
	}
}

var errBadRequest = errors.New("bad request")

// bind decodes the JSON body into dst and validates it
func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return domain.Validate(dst)
}
