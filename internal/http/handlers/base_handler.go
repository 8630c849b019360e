// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental/internal/modules/booking"
	"carrental/internal/modules/fleet"
	"carrental/internal/modules/notification"
	"carrental/internal/modules/pricing"
	"carrental/internal/modules/profile"
	"carrental/internal/modules/review"
	"carrental/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// pathID reads the :id parameter, answering 404 itself when it is not a UUID.
func pathID(c *gin.Context) (types.ID, bool) {
	id := types.ID(c.Param("id"))
	if !id.Valid() {
		writeError(c, http.StatusNotFound, "not found")
		return "", false
	}
	return id, true
}

// writeServiceError maps module errors to status codes. Unknown errors are
// logged through gin and answered with a generic 500.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, fleet.ErrBadRequest),
		errors.Is(err, fleet.ErrInvalidRange),
		errors.Is(err, pricing.ErrInvalidDuration),
		errors.Is(err, pricing.ErrInvalidDistance),
		errors.Is(err, pricing.ErrInvalidBasePrice),
		errors.Is(err, pricing.ErrAmountTooLarge),
		errors.Is(err, booking.ErrBadRequest),
		errors.Is(err, review.ErrBadRequest),
		errors.Is(err, notification.ErrBadRequest),
		errors.Is(err, profile.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, fleet.ErrNotFound),
		errors.Is(err, booking.ErrNotFound),
		errors.Is(err, review.ErrNotFound),
		errors.Is(err, notification.ErrNotFound),
		errors.Is(err, profile.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrCarUnavailable),
		errors.Is(err, booking.ErrInvalidState),
		errors.Is(err, booking.ErrConflict),
		errors.Is(err, review.ErrAlreadyReviewed):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, review.ErrNotCompleted):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
