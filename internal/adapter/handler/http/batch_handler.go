package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/servease/payout-service/internal/domain/dto"
	"github.com/servease/payout-service/internal/domain/model"
	"github.com/servease/payout-service/internal/middleware/auth"
	"github.com/servease/payout-service/internal/usecase"
)

// BatchHandler exposes the batch lifecycle to admin operators. Every
// endpoint requires the admin role.
type BatchHandler struct {
	batches *usecase.PayoutBatchService
	logger  *zap.Logger
}

func NewBatchHandler(batches *usecase.PayoutBatchService, logger *zap.Logger) *BatchHandler {
	return &BatchHandler{
		batches: batches,
		logger:  logger,
	}
}

// CreateBatch groups pending payouts into a new draft batch
func (h *BatchHandler) CreateBatch(c echo.Context) error {
	admin, err := auth.RequireAdmin(c)
	if err != nil {
		return err
	}

	var req dto.CreateBatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
			"code":  "INVALID_BODY",
		})
	}
	if req.CreatedBy == "" {
		req.CreatedBy = admin.UserID
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
			"code":  "VALIDATION_FAILED",
		})
	}

	batch, err := h.batches.CreateBatch(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, batch)
}

// GetBatch retrieves a batch with its member payouts
func (h *BatchHandler) GetBatch(c echo.Context) error {
	if _, err := auth.RequireAdmin(c); err != nil {
		return err
	}

	batch, err := h.batches.GetBatch(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, batch)
}

// ListBatches lists batches with an optional status filter
func (h *BatchHandler) ListBatches(c echo.Context) error {
	if _, err := auth.RequireAdmin(c); err != nil {
		return err
	}

	filters := dto.BatchFilters{
		Status: model.BatchStatus(c.QueryParam("status")),
	}
	filters.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	filters.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	resp, err := h.batches.ListBatches(c.Request().Context(), filters)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// SubmitBatch moves a draft batch into the approval queue
func (h *BatchHandler) SubmitBatch(c echo.Context) error {
	return h.lifecycle(c, h.batches.SubmitBatch)
}

// ApproveBatch records admin sign-off on a submitted batch
func (h *BatchHandler) ApproveBatch(c echo.Context) error {
	return h.lifecycle(c, h.batches.ApproveBatch)
}

// ProcessBatch starts disbursing an approved batch
func (h *BatchHandler) ProcessBatch(c echo.Context) error {
	if _, err := auth.RequireAdmin(c); err != nil {
		return err
	}

	batch, err := h.batches.ProcessBatch(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	// Processing continues in the background; the caller polls GetBatch.
	return c.JSON(http.StatusAccepted, batch)
}

// PauseBatch reverts a processing batch to draft
func (h *BatchHandler) PauseBatch(c echo.Context) error {
	return h.lifecycle(c, h.batches.PauseBatch)
}

// CancelBatch fails a processing batch
func (h *BatchHandler) CancelBatch(c echo.Context) error {
	return h.lifecycle(c, h.batches.CancelBatch)
}

// RetryBatch resets a failed batch for another run
func (h *BatchHandler) RetryBatch(c echo.Context) error {
	return h.lifecycle(c, h.batches.RetryBatch)
}

// lifecycle handles the single-id batch transitions that share a shape
func (h *BatchHandler) lifecycle(c echo.Context, op func(ctx context.Context, id string) (*model.PayoutBatch, error)) error {
	if _, err := auth.RequireAdmin(c); err != nil {
		return err
	}

	batch, err := op(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, batch)
}
