package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"seedworks/internal/services"
)

// WalletHandler serves recharge and withdrawal endpoints
type WalletHandler struct {
	walletService *services.WalletService
}

func NewWalletHandler(walletService *services.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// Recharge submits a deposit claim
// POST /api/recharge
func (h *WalletHandler) Recharge(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount"`
		UTR    string          `json:"utr" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recharge, err := h.walletService.Recharge(c.Request.Context(), id, req.Amount, req.UTR)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": recharge})
}

// GetRecharges lists the account's recharge requests
// GET /api/recharge?status=
func (h *WalletHandler) GetRecharges(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	page := pageFromQuery(c)
	rows, total, err := h.walletService.ListRecharges(c.Request.Context(), id, c.Query("status"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, rows, total, page)
}

// QuoteWithdrawal previews tax and payout
// GET /api/withdraw/quote?amount=
func (h *WalletHandler) QuoteWithdrawal(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	quote, err := h.walletService.QuoteWithdrawal(amount)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, quote)
}

// Withdraw files a withdrawal request
// POST /api/withdraw
func (h *WalletHandler) Withdraw(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	var req struct {
		Amount        decimal.Decimal `json:"amount"`
		TradePassword string          `json:"trade_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	withdrawal, err := h.walletService.Withdraw(c.Request.Context(), id, req.Amount, req.TradePassword)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": withdrawal})
}

// GetWithdrawals lists the account's withdrawal requests
// GET /api/withdraw?status=
func (h *WalletHandler) GetWithdrawals(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	page := pageFromQuery(c)
	rows, total, err := h.walletService.ListWithdrawals(c.Request.Context(), id, c.Query("status"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, rows, total, page)
}
