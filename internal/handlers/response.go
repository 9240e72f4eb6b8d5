package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"seedworks/internal/auth"
	"seedworks/internal/lock"
	"seedworks/internal/repository"
	"seedworks/internal/services"
)

// badRequest lists errors a client can fix by changing its input
var badRequest = []error{
	services.ErrInsufficientBalance,
	services.ErrBelowMinimum,
	services.ErrAboveMaximum,
	services.ErrInvalidAmount,
	repository.ErrInvalidAmount,
	services.ErrInvalidMobile,
	services.ErrWeakPassword,
	services.ErrInvalidInviteCode,
	services.ErrInvalidTradePassword,
	services.ErrTradePasswordNotSet,
	services.ErrNoBankCard,
	services.ErrWithdrawalLimit,
	services.ErrInvalidUTR,
	services.ErrAlreadyCheckedIn,
	services.ErrNoSpinChances,
	services.ErrTaskLocked,
	services.ErrWithdrawalRequired,
	services.ErrNothingToCollect,
	services.ErrProductUnavailable,
	services.ErrInvalidQuantity,
	services.ErrQuantityExceeded,
	services.ErrTierTooLow,
	services.ErrWelfareLocked,
	services.ErrAlreadyOwned,
	services.ErrInvalidStatus,
	services.ErrMissingFields,
	services.ErrSelfRevoke,
}

var conflict = []error{
	services.ErrMobileTaken,
	services.ErrDuplicateUTR,
	services.ErrTaskClaimed,
	services.ErrBlogRewarded,
	lock.ErrLockFailed,
}

var notFound = []error{
	services.ErrNotFound,
	services.ErrProductNotFound,
	services.ErrTaskNotFound,
	repository.ErrAccountNotFound,
}

func matches(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError maps service errors to status codes. Unknown errors are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case matches(err, notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case matches(err, conflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case matches(err, badRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondList(c *gin.Context, data interface{}, total int64, page repository.Page) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"total":   total,
		"limit":   page.Limit,
		"offset":  page.Offset,
	})
}

// pageFromQuery reads ?limit=&offset=
func pageFromQuery(c *gin.Context) repository.Page {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// accountID reads the authenticated account or writes a 401
func accountID(c *gin.Context) (uint, bool) {
	id, exists := auth.GetAccountID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return id, true
}
