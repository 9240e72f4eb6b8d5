package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"seedworks/internal/models"
	"seedworks/internal/services"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// AdminMiddleware re-reads the role table on every request
func (h *AdminHandler) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := accountID(c)
		if !ok {
			c.Abort()
			return
		}

		isAdmin, err := h.adminService.IsAdmin(c.Request.Context(), id)
		if err != nil {
			log.Printf("[Admin] role lookup for %d failed: %v", id, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": services.ErrForbidden.Error()})
			return
		}

		c.Next()
	}
}

// GetDashboard returns admin dashboard data
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	stats, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats)
}

// GetWithdrawals lists withdrawal requests, optionally by status
func (h *AdminHandler) GetWithdrawals(c *gin.Context) {
	page := pageFromQuery(c)
	rows, total, err := h.adminService.ListWithdrawals(c.Request.Context(), c.Query("status"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, rows, total, page)
}

// ReviewWithdrawal moves a withdrawal to processing, success or rejected
func (h *AdminHandler) ReviewWithdrawal(c *gin.Context) {
	adminID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.adminService.ReviewWithdrawal(c.Request.Context(), adminID, id, req.Status, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, w)
}

// GetRecharges lists recharge requests, optionally by status
func (h *AdminHandler) GetRecharges(c *gin.Context) {
	page := pageFromQuery(c)
	rows, total, err := h.adminService.ListRecharges(c.Request.Context(), c.Query("status"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, rows, total, page)
}

// ReviewRecharge approves or rejects a recharge request
func (h *AdminHandler) ReviewRecharge(c *gin.Context) {
	adminID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Approve bool `json:"approve"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recharge, err := h.adminService.ReviewRecharge(c.Request.Context(), adminID, id, req.Approve)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, recharge)
}

// GetUsers lists accounts, searching by mobile prefix
func (h *AdminHandler) GetUsers(c *gin.Context) {
	page := pageFromQuery(c)
	users, total, err := h.adminService.ListUsers(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, users, total, page)
}

// GetUser returns one account with roles and bank card
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := h.adminService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, detail)
}

// ResetTradePassword clears a user's trade password
func (h *AdminHandler) ResetTradePassword(c *gin.Context) {
	adminID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.adminService.ResetTradePassword(c.Request.Context(), adminID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Trade password reset"})
}

// SetAdmin grants or revokes the admin role
func (h *AdminHandler) SetAdmin(c *gin.Context) {
	adminID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Admin bool `json:"admin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.adminService.SetAdmin(c.Request.Context(), adminID, id, req.Admin); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "admin": req.Admin})
}

// GrantBonus credits a system bonus by mobile number
func (h *AdminHandler) GrantBonus(c *gin.Context) {
	adminID, ok := accountID(c)
	if !ok {
		return
	}

	var req struct {
		Mobile  string          `json:"mobile" binding:"required"`
		Amount  decimal.Decimal `json:"amount"`
		Balance string          `json:"balance" binding:"required"`
		Note    string          `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.adminService.GrantBonus(c.Request.Context(), adminID, req.Mobile, req.Amount, models.BalanceType(req.Balance), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tx)
}

// GetSupport lists support messages, optionally by status
func (h *AdminHandler) GetSupport(c *gin.Context) {
	msgs, err := h.adminService.ListSupportMessages(c.Request.Context(), c.Query("status"), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, msgs)
}

// ReplySupport answers a support message
func (h *AdminHandler) ReplySupport(c *gin.Context) {
	adminID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reply string `json:"reply" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.adminService.ReplySupportMessage(c.Request.Context(), adminID, id, req.Reply); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Reconcile checks stored balances against the ledger
func (h *AdminHandler) Reconcile(c *gin.Context) {
	adminID, ok := accountID(c)
	if !ok {
		return
	}
	drifts, err := h.adminService.Reconcile(c.Request.Context(), adminID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"consistent": len(drifts) == 0,
		"data":       drifts,
	})
}

// GetLogs returns the admin audit trail
func (h *AdminHandler) GetLogs(c *gin.Context) {
	logs, err := h.adminService.ListLogs(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, logs)
}
