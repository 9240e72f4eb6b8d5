package handlers

import (
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"seedworks/internal/services"
)

// JobTokenHeader carries the shared secret of internal job endpoints
const JobTokenHeader = "X-Job-Token"

// JobHandler exposes batch jobs to external schedulers
type JobHandler struct {
	accrualService *services.AccrualService
	token          string
}

func NewJobHandler(accrualService *services.AccrualService, token string) *JobHandler {
	return &JobHandler{accrualService: accrualService, token: token}
}

// RequireJobToken rejects requests without the configured shared secret.
// An empty secret disables the endpoints.
func (h *JobHandler) RequireJobToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(JobTokenHeader)
		if h.token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid job token"})
			return
		}
		c.Next()
	}
}

// RunDailyAccrual runs the daily income accrual. Safe to call repeatedly.
// POST /internal/jobs/daily-accrual
func (h *JobHandler) RunDailyAccrual(c *gin.Context) {
	res, err := h.accrualService.RunDaily(c.Request.Context())
	if err != nil {
		log.Printf("[Jobs] daily accrual failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "daily accrual completed",
		"result":  res,
	})
}
