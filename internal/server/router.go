package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
  "github.com/realblock/realblock-backend/internal/handlers"
  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/middleware"
)

type RouterConfig struct {
  Log               *logger.Logger
  AuthMiddleware    *middleware.AuthMiddleware
  AuthHandler       *handlers.AuthHandler
  UserHandler       *handlers.UserHandler
  PropertyHandler   *handlers.PropertyHandler
  WalletHandler     *handlers.WalletHandler
  TokenHandler      *handlers.TokenHandler
  KycHandler        *handlers.KycHandler
  WebhookHandler    *handlers.WebhookHandler
  ChatHandler       *handlers.ChatHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.New()
  router.Use(gin.Recovery())
  router.Use(otelgin.Middleware("realblock-backend"))
  router.Use(middleware.RequestLogger(cfg.Log))

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5173",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/health", handlers.HealthCheck)
  router.POST("/webhooks/cashfree/kyc", cfg.WebhookHandler.HandleKycWebhook)

  api := router.Group("/api")
  {
    api.POST("/auth/signup", cfg.AuthHandler.Signup)
    api.POST("/auth/login", cfg.AuthHandler.Login)
    api.POST("/auth/refresh", cfg.AuthHandler.Refresh)
    api.GET("/properties", cfg.PropertyHandler.GetAll)
    api.GET("/properties/featured", cfg.PropertyHandler.GetFeatured)
    api.GET("/properties/:id", cfg.PropertyHandler.GetByID)
  }

// ===============
// || Protected ||
// ===============
  protected := router.Group("/api")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Auth
  protected.POST("/auth/logout", cfg.AuthHandler.Logout)
  // Chat
  protected.POST("/chat", cfg.ChatHandler.Chat)
  // KYC
  protected.POST("/kyc/pan-verify", cfg.KycHandler.VerifyPan)
  protected.POST("/kyc/aadhaar-initiate", cfg.KycHandler.InitiateAadhaar)
  protected.POST("/kyc/aadhaar-confirm", cfg.KycHandler.ConfirmAadhaar)
  protected.POST("/kyc/bank-verify", cfg.KycHandler.VerifyBank)
  protected.GET("/kyc/status", cfg.KycHandler.GetStatus)
  // User
  protected.GET("/user/me", cfg.UserHandler.GetMe)
  protected.GET("/user/dashboard", cfg.UserHandler.GetDashboard)
  // Wallet
  protected.GET("/wallet", cfg.WalletHandler.GetWallet)
  protected.POST("/wallet/deposit", cfg.WalletHandler.Deposit)
  protected.POST("/wallet/withdraw", cfg.WalletHandler.Withdraw)
  // Tokens
  protected.POST("/token/purchase", cfg.TokenHandler.Purchase)

  return router
}
