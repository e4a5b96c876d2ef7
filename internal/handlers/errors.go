package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/go-quote-service/internal/logger"
	"github.com/imrishuroy/go-quote-service/internal/validation"
)

// NotFoundError reports a missing resource by name.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// errorResponder turns handler failures into JSON responses and logs them.
type errorResponder struct {
	log        *logger.Logger
	production bool
}

// respond writes the response for err and aborts the chain. op names the
// failing operation in the log line.
func (e errorResponder) respond(c *gin.Context, op string, err error) {
	var ve *validation.ValidationError
	var nf *NotFoundError
	isValidation := errors.As(err, &ve)
	isNotFound := !isValidation && errors.As(err, &nf)

	var ev *zerolog.Event
	if isValidation || isNotFound {
		ev = e.log.Warn()
	} else {
		ev = e.log.Error()
	}
	if isValidation {
		ev = ev.Interface("fields", ve.Fields)
	}
	ev = ev.Err(err).
		Str("operation", op).
		Str("request_id", requestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path)
	if id := c.Param("id"); id != "" {
		ev = ev.Str("quote_id", id)
	}
	ev.Msg("request failed")

	switch {
	case isValidation:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message": "Validation error",
			"errors":  ve.Fields,
		})
	case isNotFound:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": nf.Error()})
	default:
		body := gin.H{"message": "Internal server error"}
		if !e.production {
			body["error"] = err.Error()
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	}
}
