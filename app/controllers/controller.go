// Package controllers adapts HTTP requests to the services.
package controllers

import (
	"errors"
	"net/http"

	"github.com/ruizhu/shopapi/app/services"
	"github.com/ruizhu/shopapi/pkg/ctx"
)

// fail writes the response for a service error. Unclassified errors are
// logged and reported as 500 without detail.
func fail(c *ctx.Context, err error) {
	var se *services.Error
	if !errors.As(err, &se) {
		c.Log().Error("request failed", "error", err)
		c.Error(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	switch {
	case errors.Is(se, services.ErrNotFound):
		c.NotFound(se.Message)
	case errors.Is(se, services.ErrConflict):
		c.Error(http.StatusBadRequest, se.Message)
	case errors.Is(se, services.ErrInvalid):
		c.Error(http.StatusUnprocessableEntity, se.Message)
	case errors.Is(se, services.ErrUnauthorized):
		c.Unauthorized(se.Message)
	default:
		c.Error(http.StatusInternalServerError, se.Message)
	}
}
