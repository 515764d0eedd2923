package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/servease/payout-service/internal/domain/dto"
	"github.com/servease/payout-service/internal/domain/model"
	"github.com/servease/payout-service/internal/middleware/auth"
	"github.com/servease/payout-service/internal/usecase"
)

type PayoutHandler struct {
	payouts *usecase.PayoutService
	logger  *zap.Logger
}

func NewPayoutHandler(payouts *usecase.PayoutService, logger *zap.Logger) *PayoutHandler {
	return &PayoutHandler{
		payouts: payouts,
		logger:  logger,
	}
}

// CreatePayout computes and records a pending payout for a provider
func (h *PayoutHandler) CreatePayout(c echo.Context) error {
	var req dto.CreatePayoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
			"code":  "INVALID_BODY",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
			"code":  "VALIDATION_FAILED",
		})
	}

	payout, err := h.payouts.CreatePayout(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, payout)
}

// GetPayout retrieves a payout by id
func (h *PayoutHandler) GetPayout(c echo.Context) error {
	payout, err := h.payouts.GetPayout(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, payout)
}

// ListPayouts lists payouts with optional provider and status filters
func (h *PayoutHandler) ListPayouts(c echo.Context) error {
	filters := dto.PayoutFilters{
		ProviderID: c.QueryParam("provider_id"),
		Status:     model.PayoutStatus(c.QueryParam("status")),
	}
	filters.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	filters.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	resp, err := h.payouts.ListPayouts(c.Request().Context(), filters)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// ProcessPayout releases a pending payout through the payment rail
func (h *PayoutHandler) ProcessPayout(c echo.Context) error {
	if _, err := auth.RequireAdmin(c); err != nil {
		return err
	}

	payout, err := h.payouts.ProcessPayout(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, payout)
}

// RetryPayout re-runs disbursement for a failed payout
func (h *PayoutHandler) RetryPayout(c echo.Context) error {
	if _, err := auth.RequireAdmin(c); err != nil {
		return err
	}

	payout, err := h.payouts.RetryFailedPayout(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, payout)
}

// ApprovePayout records admin sign-off on a payout
func (h *PayoutHandler) ApprovePayout(c echo.Context) error {
	admin, err := auth.RequireAdmin(c)
	if err != nil {
		return err
	}

	var req dto.ApprovePayoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
			"code":  "INVALID_BODY",
		})
	}
	if req.ApprovedBy == "" {
		req.ApprovedBy = admin.UserID
	}

	payout, err := h.payouts.ApprovePayout(c.Request().Context(), c.Param("id"), req.ApprovedBy)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, payout)
}

// SchedulePayout sets a future release date on a payout
func (h *PayoutHandler) SchedulePayout(c echo.Context) error {
	if _, err := auth.RequireAdmin(c); err != nil {
		return err
	}

	var req dto.SchedulePayoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
			"code":  "INVALID_BODY",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
			"code":  "VALIDATION_FAILED",
		})
	}

	payout, err := h.payouts.SchedulePayout(c.Request().Context(), c.Param("id"), req.ScheduledDate)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, payout)
}
