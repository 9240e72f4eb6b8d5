package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"seedworks/internal/services"
)

// RewardHandler serves check-in, wheel, tasks, blog and income collection
type RewardHandler struct {
	rewardService *services.RewardService
}

func NewRewardHandler(rewardService *services.RewardService) *RewardHandler {
	return &RewardHandler{rewardService: rewardService}
}

// Checkin claims today's check-in reward
// POST /api/checkin
func (h *RewardHandler) Checkin(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	res, err := h.rewardService.Checkin(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, res)
}

// GetWheel returns wheel segments and remaining chances
// GET /api/spin
func (h *RewardHandler) GetWheel(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	wheel, err := h.rewardService.GetWheel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, wheel)
}

// Spin draws a prize
// POST /api/spin
func (h *RewardHandler) Spin(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	prize, err := h.rewardService.Spin(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, prize)
}

// GetPrizes lists past spins
// GET /api/prizes
func (h *RewardHandler) GetPrizes(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	prizes, err := h.rewardService.ListPrizes(c.Request.Context(), id, pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, prizes)
}

// GetTasks lists referral tasks with unlock and claim state
// GET /api/tasks
func (h *RewardHandler) GetTasks(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	board, err := h.rewardService.ListTasks(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, board)
}

// ClaimTask claims a task reward
// POST /api/tasks/:id/claim
func (h *RewardHandler) ClaimTask(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	claim, err := h.rewardService.ClaimTask(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, claim)
}

// PublishBlog posts a testimonial
// POST /api/blog
func (h *RewardHandler) PublishBlog(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	var req struct {
		Content  string `json:"content"`
		ImageURL string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.rewardService.PublishBlog(c.Request.Context(), id, services.BlogInput{
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": post})
}

// GetBlog returns the public testimonial feed
// GET /api/blog
func (h *RewardHandler) GetBlog(c *gin.Context) {
	posts, err := h.rewardService.ListBlogPosts(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, posts)
}

// CollectIncome moves product income to the withdrawal balance
// POST /api/income/collect
func (h *RewardHandler) CollectIncome(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	amount, err := h.rewardService.CollectIncome(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"collected": amount})
}
