package http

import (
	"net/http"

	"market-service/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

func ok(c *gin.Context, message string, data any) {
	respond(c, http.StatusOK, message, data)
}

func created(c *gin.Context, message string, data any) {
	respond(c, http.StatusCreated, message, data)
}

func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message, Error: code})
}

// respondError converts err into the envelope. Unexpected errors are logged
// and answered with fallback only.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.requestLog(c).WithError(err).Error(fallback)
	}
	fail(c, status, apperr.CodeOf(err), apperr.PublicMessage(err, fallback))
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, apperr.CodeInvalidInput, message)
}

func (h *Handler) requestLog(c *gin.Context) *logrus.Entry {
	entry := h.log.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	})
	if id := c.GetString(requestIDKey); id != "" {
		entry = entry.WithField("request_id", id)
	}
	return entry
}
