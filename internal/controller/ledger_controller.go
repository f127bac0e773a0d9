package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"baryabazaar-api/internal/ledger"
	"baryabazaar-api/internal/middleware"
	"baryabazaar-api/internal/models"
	"baryabazaar-api/internal/repository"
	"baryabazaar-api/internal/service"
	"baryabazaar-api/internal/validation"
)

// LedgerController serves the transaction and balance endpoints.
type LedgerController struct {
	ledgerService service.LedgerService
}

func NewLedgerController(ledgerService service.LedgerService) *LedgerController {
	return &LedgerController{
		ledgerService: ledgerService,
	}
}

func (c *LedgerController) RecordTrade(ctx *gin.Context) {
	var req RecordTradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	input := &models.TransactionInput{
		Type:       req.Type,
		UserID:     req.UserID,
		UserName:   req.UserName,
		USDTAmount: req.USDTAmount,
		PHPAmount:  req.PHPAmount,
		Platform:   req.Platform,
		Bank:       req.Bank,
		Rate:       req.Rate,
		Fee:        req.Fee,
		Note:       req.Note,
	}

	tx, result, err := c.ledgerService.RecordTrade(ctx.Request.Context(), input, req.AcknowledgeWarnings)
	if err != nil {
		if errors.Is(err, service.ErrWarningsNotAcknowledged) {
			ctx.JSON(http.StatusConflict, RecordTradeResponse{Validation: result})
			return
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to record transaction",
			Message: err.Error(),
		})
		return
	}

	if !result.Valid {
		ctx.JSON(http.StatusUnprocessableEntity, RecordTradeResponse{Validation: result})
		return
	}

	ctx.JSON(http.StatusCreated, RecordTradeResponse{
		Transaction: tx,
		Validation:  result,
	})
}

func (c *LedgerController) ValidateTrade(ctx *gin.Context) {
	var req RecordTradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	input := &models.TransactionInput{
		Type:       req.Type,
		UserID:     req.UserID,
		UserName:   req.UserName,
		USDTAmount: req.USDTAmount,
		PHPAmount:  req.PHPAmount,
		Platform:   req.Platform,
		Bank:       req.Bank,
		Rate:       req.Rate,
		Fee:        req.Fee,
		Note:       req.Note,
	}

	result, err := c.ledgerService.ValidateTrade(ctx.Request.Context(), input)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to validate transaction",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (c *LedgerController) RecordTransfer(ctx *gin.Context) {
	var req service.TransferInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	tx, err := c.ledgerService.RecordTransfer(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Failed to record transfer",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, tx)
}

func (c *LedgerController) GetTransactions(ctx *gin.Context) {
	period := ctx.Query("period")
	if period != "" {
		c.getTransactionsByPeriod(ctx, period)
		return
	}

	limit, offset := paginationParams(ctx)
	txs, err := c.ledgerService.GetTransactions(ctx.Request.Context(), limit, offset)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list transactions",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, TransactionListResponse{
		Transactions: txs,
		Count:        len(txs),
	})
}

func (c *LedgerController) getTransactionsByPeriod(ctx *gin.Context, period string) {
	var start, end time.Time
	if period == ledger.PeriodCustom {
		var err error
		start, end, err = customWindowParams(ctx)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid custom period",
				Message: err.Error(),
			})
			return
		}
	}

	txs, err := c.ledgerService.GetTransactionsByPeriod(ctx.Request.Context(), period, start, end)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list transactions",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, TransactionListResponse{
		Transactions: txs,
		Count:        len(txs),
	})
}

func (c *LedgerController) GetTransaction(ctx *gin.Context) {
	tx, err := c.ledgerService.GetTransaction(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "Transaction not found",
				Message: err.Error(),
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to get transaction",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, tx)
}

func (c *LedgerController) GetUserTransactions(ctx *gin.Context) {
	limit, offset := paginationParams(ctx)
	txs, err := c.ledgerService.GetUserTransactions(ctx.Request.Context(), ctx.Param("id"), limit, offset)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list user transactions",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, TransactionListResponse{
		Transactions: txs,
		Count:        len(txs),
	})
}

func (c *LedgerController) UpdateTransaction(ctx *gin.Context) {
	var req UpdateTransactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	tx, err := c.ledgerService.UpdateTransaction(
		ctx.Request.Context(), ctx.Param("id"), &req.Patch, middleware.ActorName(ctx), req.Reason)
	if err != nil {
		if errors.Is(err, service.ErrReasonRequired) {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Reason required",
				Message: err.Error(),
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to update transaction",
			Message: err.Error(),
		})
		return
	}
	if tx == nil {
		ctx.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Transaction not found",
			Message: "no transaction with id " + ctx.Param("id"),
		})
		return
	}

	ctx.JSON(http.StatusOK, tx)
}

func (c *LedgerController) DeleteTransaction(ctx *gin.Context) {
	var req ReasonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	tx, err := c.ledgerService.DeleteTransaction(
		ctx.Request.Context(), ctx.Param("id"), middleware.ActorName(ctx), req.Reason)
	if err != nil {
		if errors.Is(err, service.ErrReasonRequired) {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Reason required",
				Message: err.Error(),
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to delete transaction",
			Message: err.Error(),
		})
		return
	}
	if tx == nil {
		ctx.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Transaction not found",
			Message: "no transaction with id " + ctx.Param("id"),
		})
		return
	}

	ctx.JSON(http.StatusOK, tx)
}

func (c *LedgerController) AdjustUserBalance(ctx *gin.Context) {
	var req AdjustBalanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	err := c.ledgerService.AdjustUserBalance(
		ctx.Request.Context(), ctx.Param("id"), ctx.Param("bank"), req.Amount,
		middleware.ActorName(ctx), req.Reason)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrReasonRequired):
			status = http.StatusBadRequest
		case errors.Is(err, repository.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, repository.ErrVersionConflict):
			status = http.StatusConflict
		}
		ctx.JSON(status, ErrorResponse{
			Error:   "Failed to adjust balance",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *LedgerController) AdjustPlatformBalance(ctx *gin.Context) {
	var req AdjustBalanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	err := c.ledgerService.AdjustPlatformBalance(
		ctx.Request.Context(), ctx.Param("name"), req.Amount,
		middleware.ActorName(ctx), req.Reason)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrReasonRequired):
			status = http.StatusBadRequest
		case errors.Is(err, repository.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, repository.ErrVersionConflict):
			status = http.StatusConflict
		}
		ctx.JSON(status, ErrorResponse{
			Error:   "Failed to adjust balance",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *LedgerController) GetUserBalances(ctx *gin.Context) {
	balances, err := c.ledgerService.UserBalances(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to get user balances",
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, balances)
}

func (c *LedgerController) GetPlatformBalances(ctx *gin.Context) {
	platforms, err := c.ledgerService.PlatformBalances(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to get platform balances",
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, platforms)
}

func (c *LedgerController) GetTotalCompanyUSDT(ctx *gin.Context) {
	total, err := c.ledgerService.TotalCompanyUSDT(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to get company balance",
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"total_usdt": total})
}

func paginationParams(ctx *gin.Context) (int, int) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func customWindowParams(ctx *gin.Context) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, ctx.Query("start"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(time.RFC3339, ctx.Query("end"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// Request/response DTOs

type RecordTradeRequest struct {
	Type                string          `json:"type" binding:"required,txtype"`
	UserID              string          `json:"user_id" binding:"required"`
	UserName            string          `json:"user_name"`
	USDTAmount          decimal.Decimal `json:"usdt_amount" binding:"required"`
	PHPAmount           decimal.Decimal `json:"php_amount" binding:"required"`
	Platform            string          `json:"platform"`
	Bank                string          `json:"bank"`
	Rate                decimal.Decimal `json:"rate"`
	Fee                 decimal.Decimal `json:"fee"`
	Note                string          `json:"note"`
	AcknowledgeWarnings bool            `json:"acknowledge_warnings"`
}

type RecordTradeResponse struct {
	Transaction *models.Transaction `json:"transaction,omitempty"`
	Validation  validation.Result   `json:"validation"`
}

type UpdateTransactionRequest struct {
	Patch  models.TransactionPatch `json:"patch" binding:"required"`
	Reason string                  `json:"reason" binding:"required"`
}

type ReasonRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type AdjustBalanceRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Reason string          `json:"reason" binding:"required"`
}

type TransactionListResponse struct {
	Transactions []*models.Transaction `json:"transactions"`
	Count        int                   `json:"count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
