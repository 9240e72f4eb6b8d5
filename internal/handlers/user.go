package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"seedworks/internal/models"
	"seedworks/internal/services"
)

// UserHandler handles profile, bank card, ledger and support endpoints
type UserHandler struct {
	accountService *services.AccountService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(accountService *services.AccountService) *UserHandler {
	return &UserHandler{
		accountService: accountService,
	}
}

// GetProfile returns the current account with tier and roles
// GET /api/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	profile, err := h.accountService.GetProfile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, profile)
}

// SetTradePassword sets or changes the withdrawal password
// POST /api/user/trade-password
func (h *UserHandler) SetTradePassword(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.accountService.SetTradePassword(c.Request.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Transaction password updated"})
}

// GetBankCard returns the payout card
// GET /api/user/bank-card
func (h *UserHandler) GetBankCard(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	card, err := h.accountService.GetBankCard(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNoBankCard) {
			respondOK(c, nil)
			return
		}
		respondError(c, err)
		return
	}
	respondOK(c, card)
}

// SaveBankCard creates or replaces the payout card
// PUT /api/user/bank-card
func (h *UserHandler) SaveBankCard(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	var req struct {
		HolderName    string `json:"holder_name" binding:"required"`
		BankName      string `json:"bank_name" binding:"required"`
		AccountNumber string `json:"account_number" binding:"required"`
		IFSC          string `json:"ifsc" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := h.accountService.SaveBankCard(c.Request.Context(), id, services.BankCardInput{
		HolderName:    req.HolderName,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		IFSC:          req.IFSC,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, card)
}

// GetTransactions returns the account's ledger
// GET /api/user/transactions?type=&balance=&limit=&offset=
func (h *UserHandler) GetTransactions(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	page := pageFromQuery(c)
	txs, total, err := h.accountService.ListTransactions(c.Request.Context(), id,
		c.Query("type"), models.BalanceType(c.Query("balance")), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, txs, total, page)
}

// SubmitSupport opens a support ticket
// POST /api/support
func (h *UserHandler) SubmitSupport(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.accountService.SubmitSupportMessage(c.Request.Context(), id, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": msg})
}

// GetSupport lists the account's tickets and replies
// GET /api/support
func (h *UserHandler) GetSupport(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	msgs, err := h.accountService.ListSupportMessages(c.Request.Context(), id, pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, msgs)
}
