package main

import (
  "context"
  "fmt"
  "os"
  "github.com/joho/godotenv"
  "github.com/redis/go-redis/v9"
  "github.com/realblock/realblock-backend/internal/agents"
  "github.com/realblock/realblock-backend/internal/db"
  "github.com/realblock/realblock-backend/internal/handlers"
  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/middleware"
  "github.com/realblock/realblock-backend/internal/observability"
  "github.com/realblock/realblock-backend/internal/repos"
  "github.com/realblock/realblock-backend/internal/server"
  "github.com/realblock/realblock-backend/internal/services"
  "github.com/realblock/realblock-backend/internal/utils"
)

func main() {
  _ = godotenv.Load()

  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Tracing
  ctx := context.Background()
  otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
    ServiceName: "realblock-backend",
    Environment: utils.GetEnv("APP_ENV", "development", log),
    Version:     utils.GetEnv("APP_VERSION", "dev", log),
  })
  if otelShutdown != nil {
    defer otelShutdown(ctx)
  }

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Redis (optional; the property cache degrades to direct reads)
  var redisClient *redis.Client
  if redisAddr := utils.GetEnv("REDIS_ADDR", "", log); redisAddr != "" {
    redisClient = redis.NewClient(&redis.Options{
      Addr:     redisAddr,
      Password: utils.GetEnv("REDIS_PASSWORD", "", log),
    })
    if err := redisClient.Ping(ctx).Err(); err != nil {
      log.Warn("Redis unreachable, property cache disabled", "error", err)
      redisClient = nil
    }
  }

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  kycProfileRepo := repos.NewKycProfileRepo(thePG, log)
  kycVerificationRepo := repos.NewKycVerificationRepo(thePG, log)
  propertyRepo := repos.NewPropertyRepo(thePG, log)
  transactionRepo := repos.NewTransactionRepo(thePG, log)
  walletRepo := repos.NewWalletRepo(thePG, log)

  // Services
  log.Info("Setting up Services from main...")
  authService := services.NewAuthService(userRepo, userTokenRepo, log)
  kycProvider := services.NewCashfreeProvider(log)
  kycService := services.NewKycService(kycProvider, userRepo, kycProfileRepo, kycVerificationRepo, log)
  propertyService := services.NewPropertyService(propertyRepo, redisClient, log)
  walletService := services.NewWalletService(thePG, walletRepo, log)
  tokenService := services.NewTokenService(thePG, userRepo, propertyRepo, transactionRepo, log)
  userService := services.NewUserService(userRepo, transactionRepo, walletRepo, log)

  // Agent graph
  var graph *agents.Graph
  openaiClient, err := services.NewOpenAIClient(log)
  if err != nil {
    log.Warn("OpenAI client unavailable, chat disabled", "error", err)
  } else {
    graph = agents.NewGraph(agents.Deps{
      AI:           openaiClient,
      Properties:   propertyRepo,
      Transactions: transactionRepo,
      Wallets:      walletRepo,
      Log:          log,
    })
  }

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  userHandler := handlers.NewUserHandler(userService)
  propertyHandler := handlers.NewPropertyHandler(propertyService)
  walletHandler := handlers.NewWalletHandler(walletService)
  tokenHandler := handlers.NewTokenHandler(tokenService)
  kycHandler := handlers.NewKycHandler(kycService)
  webhookHandler := handlers.NewWebhookHandler(kycService, kycVerificationRepo, log)
  chatHandler := handlers.NewChatHandler(graph, log)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    Log:             log,
    AuthMiddleware:  authMiddleware,
    AuthHandler:     authHandler,
    UserHandler:     userHandler,
    PropertyHandler: propertyHandler,
    WalletHandler:   walletHandler,
    TokenHandler:    tokenHandler,
    KycHandler:      kycHandler,
    WebhookHandler:  webhookHandler,
    ChatHandler:     chatHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Error("Server failed", "error", err)
  }
}
