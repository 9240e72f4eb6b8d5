package handlers

import (
	"github.com/gin-gonic/gin"

	"seedworks/internal/services"
)

type ReferralHandler struct {
	referralService *services.ReferralService
}

func NewReferralHandler(referralService *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{referralService: referralService}
}

// GetTeam returns per-level referral stats
// GET /api/team?members=true
func (h *ReferralHandler) GetTeam(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	team, err := h.referralService.GetTeam(c.Request.Context(), id, c.Query("members") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, team)
}
