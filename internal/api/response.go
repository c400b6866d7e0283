package api

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AssQ222/PDRPG/internal/engine"
)

// Envelope is the body of every /api response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Date    string `json:"date,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// list writes data with its length. Nil slices are sent as [].
func list(c *gin.Context, data any) {
	n := 0
	if v := reflect.ValueOf(data); v.Kind() == reflect.Slice {
		n = v.Len()
		if v.IsNil() {
			data = []struct{}{}
		}
	}
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Count: &n})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: msg})
}

// respondError maps engine errors onto HTTP statuses. Anything untyped is a 500
// and only its summary reaches the client.
func respondError(c *gin.Context, log *zap.Logger, action string, err error) {
	var (
		verr engine.ValidationError
		nerr engine.NotFoundError
		serr engine.StateError
	)
	switch {
	case errors.As(err, &verr):
		fail(c, http.StatusBadRequest, verr.Error())
	case errors.As(err, &nerr):
		fail(c, http.StatusNotFound, nerr.Error())
	case errors.As(err, &serr):
		fail(c, http.StatusConflict, serr.Error())
	default:
		log.Error("request failed",
			zap.String("action", action),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		fail(c, http.StatusInternalServerError, "failed to "+action)
	}
}
