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

type TransactionHandler struct {
	transactions *usecase.PendingTransactionService
	logger       *zap.Logger
}

func NewTransactionHandler(transactions *usecase.PendingTransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		logger:       logger,
	}
}

// CreateTransaction records a customer's bank deposit claim
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req dto.CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
			"code":  "INVALID_BODY",
		})
	}
	// The deposit always belongs to the caller, whatever the body says.
	req.UserID = user.UserID
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
			"code":  "VALIDATION_FAILED",
		})
	}

	tx, err := h.transactions.CreateTransaction(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, tx)
}

// GetTransaction retrieves a transaction by id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	tx, err := h.transactions.GetTransaction(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if tx.UserID != user.UserID && user.Role != auth.RoleAdmin {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "pending transaction not found",
			"code":  "NOT_FOUND",
		})
	}
	return c.JSON(http.StatusOK, tx)
}

// GetTransactionByReference looks a transaction up by the reference
// number written on the transfer slip. Admin only: bank statement
// reconciliation works from references, not ids.
func (h *TransactionHandler) GetTransactionByReference(c echo.Context) error {
	if _, err := auth.RequireAdmin(c); err != nil {
		return err
	}

	tx, err := h.transactions.GetTransactionByReference(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, tx)
}

// ListTransactions lists transactions. Admins see everyone's; other
// callers are scoped to their own.
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	filters := dto.TransactionFilters{
		UserID: c.QueryParam("user_id"),
		Status: model.TransactionStatus(c.QueryParam("status")),
	}
	filters.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	filters.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	if user.Role != auth.RoleAdmin {
		filters.UserID = user.UserID
	}

	resp, err := h.transactions.ListTransactions(c.Request().Context(), filters)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// ApproveTransaction confirms the deposit arrived
func (h *TransactionHandler) ApproveTransaction(c echo.Context) error {
	return h.review(c, h.transactions.ApproveTransaction)
}

// DeclineTransaction rejects the deposit claim
func (h *TransactionHandler) DeclineTransaction(c echo.Context) error {
	return h.review(c, h.transactions.DeclineTransaction)
}

type reviewOp func(ctx context.Context, id string, req dto.ReviewTransactionRequest) (*model.PendingTransaction, error)

// review handles the shared shape of approve and decline
func (h *TransactionHandler) review(c echo.Context, op reviewOp) error {
	admin, err := auth.RequireAdmin(c)
	if err != nil {
		return err
	}

	var req dto.ReviewTransactionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
			"code":  "INVALID_BODY",
		})
	}
	if req.DecidedBy == "" {
		req.DecidedBy = admin.UserID
	}

	tx, err := op(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, tx)
}
