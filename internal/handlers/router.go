package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"seedworks/internal/auth"
	"seedworks/internal/config"
	"seedworks/internal/services"
)

// Services bundles what the HTTP layer calls into
type Services struct {
	Auth     *services.AuthService
	Account  *services.AccountService
	Referral *services.ReferralService
	Reward   *services.RewardService
	Product  *services.ProductService
	Wallet   *services.WalletService
	Accrual  *services.AccrualService
	Admin    *services.AdminService
}

// NewRouter wires middleware and routes. redisClient may be nil.
func NewRouter(cfg *config.Config, svc Services, redisClient *redis.Client) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(Timeout(cfg.Server.RequestTimeout))

	authHandler := NewAuthHandler(svc.Auth)
	userHandler := NewUserHandler(svc.Account)
	referralHandler := NewReferralHandler(svc.Referral)
	rewardHandler := NewRewardHandler(svc.Reward)
	productHandler := NewProductHandler(svc.Product)
	walletHandler := NewWalletHandler(svc.Wallet)
	adminHandler := NewAdminHandler(svc.Admin)
	jobHandler := NewJobHandler(svc.Accrual, cfg.App.JobToken)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	authRoutes.Use(RateLimit(redisClient, cfg.Server.AuthRateLimit))
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Public catalogue
	router.GET("/api/products", productHandler.GetProducts)
	router.GET("/api/products/:id", productHandler.GetProduct)
	router.GET("/api/blog", rewardHandler.GetBlog)
	router.GET("/api/withdraw/quote", walletHandler.QuoteWithdrawal)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware(), RateLimit(redisClient, cfg.Server.APIRateLimit))
	{
		userRoutes := api.Group("/user")
		{
			userRoutes.GET("/profile", userHandler.GetProfile)
			userRoutes.POST("/trade-password", userHandler.SetTradePassword)
			userRoutes.GET("/bank-card", userHandler.GetBankCard)
			userRoutes.PUT("/bank-card", userHandler.SaveBankCard)
			userRoutes.GET("/transactions", userHandler.GetTransactions)
		}

		api.GET("/support", userHandler.GetSupport)
		api.POST("/support", userHandler.SubmitSupport)

		api.POST("/checkin", rewardHandler.Checkin)
		api.GET("/spin", rewardHandler.GetWheel)
		api.POST("/spin", rewardHandler.Spin)
		api.GET("/prizes", rewardHandler.GetPrizes)
		api.GET("/tasks", rewardHandler.GetTasks)
		api.POST("/tasks/:id/claim", rewardHandler.ClaimTask)
		api.POST("/blog", rewardHandler.PublishBlog)
		api.POST("/income/collect", rewardHandler.CollectIncome)

		api.POST("/products/:id/purchase", productHandler.Purchase)
		api.GET("/orders", productHandler.GetOrders)

		api.GET("/team", referralHandler.GetTeam)

		api.POST("/recharge", walletHandler.Recharge)
		api.GET("/recharge", walletHandler.GetRecharges)
		api.POST("/withdraw", walletHandler.Withdraw)
		api.GET("/withdraw", walletHandler.GetWithdrawals)
	}

	// Admin routes
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware(), adminHandler.AdminMiddleware())
	{
		admin.GET("/dashboard", adminHandler.GetDashboard)
		admin.GET("/withdrawals", adminHandler.GetWithdrawals)
		admin.POST("/withdrawals/:id/review", adminHandler.ReviewWithdrawal)
		admin.GET("/recharges", adminHandler.GetRecharges)
		admin.POST("/recharges/:id/review", adminHandler.ReviewRecharge)
		admin.GET("/users", adminHandler.GetUsers)
		admin.GET("/users/:id", adminHandler.GetUser)
		admin.POST("/users/:id/reset-trade-password", adminHandler.ResetTradePassword)
		admin.POST("/users/:id/admin", adminHandler.SetAdmin)
		admin.POST("/bonus", adminHandler.GrantBonus)
		admin.GET("/support", adminHandler.GetSupport)
		admin.POST("/support/:id/reply", adminHandler.ReplySupport)
		admin.POST("/reconcile", adminHandler.Reconcile)
		admin.GET("/logs", adminHandler.GetLogs)
	}

	// Internal job triggers
	jobs := router.Group("/internal/jobs")
	jobs.Use(jobHandler.RequireJobToken())
	{
		jobs.POST("/daily-accrual", jobHandler.RunDailyAccrual)
	}

	return router
}
