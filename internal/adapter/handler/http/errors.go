package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/servease/payout-service/internal/domain/errors"
)

// respondError translates domain errors into HTTP responses. Anything
// unrecognized is a 500 with the detail kept server-side.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	var (
		cfgErr   *domainErrors.InvalidConfigurationError
		dupErr   *domainErrors.DuplicateBookingPayoutError
		stateErr *domainErrors.InvalidStateTransitionError
		retryErr *domainErrors.MaxRetriesExceededError
	)

	switch {
	case errors.As(err, &cfgErr):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": cfgErr.Error(),
			"code":  "INVALID_CONFIGURATION",
		})
	case errors.As(err, &dupErr):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":      dupErr.Error(),
			"code":       "DUPLICATE_BOOKING_PAYOUT",
			"booking_id": dupErr.BookingID,
		})
	case errors.As(err, &stateErr):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":  stateErr.Error(),
			"code":   "INVALID_STATE_TRANSITION",
			"status": stateErr.From,
		})
	case errors.As(err, &retryErr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":       retryErr.Error(),
			"code":        "MAX_RETRIES_EXCEEDED",
			"retry_count": retryErr.RetryCount,
		})
	case errors.Is(err, domainErrors.ErrPayoutNotFound),
		errors.Is(err, domainErrors.ErrBatchNotFound),
		errors.Is(err, domainErrors.ErrTransactionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": err.Error(),
			"code":  "NOT_FOUND",
		})
	}

	logger.Error("Request failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"error": "Internal server error",
		"code":  "INTERNAL_ERROR",
	})
}
