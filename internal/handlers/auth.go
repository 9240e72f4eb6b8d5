package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"seedworks/internal/services"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates an account and returns a token
// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Mobile      string `json:"mobile" binding:"required"`
		Password    string `json:"password" binding:"required"`
		DisplayName string `json:"display_name"`
		InviteCode  string `json:"invite_code"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Mobile:      req.Mobile,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		InviteCode:  req.InviteCode,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":   res.Token,
		"account": res.Account,
	})
}

// Login authenticates by mobile and password
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Mobile   string `json:"mobile" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Mobile, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   res.Token,
		"account": res.Account,
	})
}

// Logout handles user logout (stateless JWT, client-side only)
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully logged out",
	})
}
