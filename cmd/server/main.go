package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"mulmarket/internal/cache"
	"mulmarket/internal/config"
	"mulmarket/internal/database"
	"mulmarket/internal/handlers"
	"mulmarket/internal/monitoring"
	"mulmarket/internal/referral"
	"mulmarket/internal/registry"
)

const AppVersion = "1.0.0"

// Build timestamp - set at compile time or use current time
var buildTimestamp = time.Now().Unix()

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	logger.Info(fmt.Sprintf("Mulmarket Server v%s (build: %d)", AppVersion, buildTimestamp))

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = generateRandomSecret()
		logger.Warn("JWT_SECRET not set, generated an ephemeral secret; sessions will not survive a restart")
	}

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		return
	}

	var earnings *cache.EarningsCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis unavailable, earnings snapshots disabled", "error", err)
		} else {
			earnings = cache.NewEarningsCache(rdb)
			logger.Info("connected to redis", "addr", cfg.RedisAddr)
		}
	}

	members := registry.NewGormRegistry(db)
	ledger := registry.NewGormLedger(db)
	trees := referral.NewTreeBuilder(members, ledger, logger)
	aggregator := referral.NewAggregator(ledger, logger)

	h := handlers.New(db, cfg, logger, members, ledger, trees, aggregator, earnings)

	router := setupRouter(h, cfg, logger)
	startHTTP(router, cfg, logger)
}

func setupRouter(h *handlers.Handlers, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	if os.Getenv("GIN_MODE") == "" && cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(slogGinLogger(logger))
	router.Use(monitoring.Middleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/check-transaction", h.AuthMiddleware(), h.CheckTransaction)
	}

	member := api.Group("/member")
	member.Use(h.AuthMiddleware())
	{
		member.POST("/join", h.JoinMembership)
		member.GET("/referral-tree", h.GetReferralTree)
		member.GET("/view-referrals", h.ViewReferrals)
		member.GET("/wallet", h.Wallet)
	}

	golden := api.Group("/golden")
	{
		golden.GET("/golden-seats", h.ListGoldenSeats)
		golden.GET("/golden-seats/view", h.ViewGoldenSeats)
	}

	item := api.Group("/item")
	{
		item.GET("/items", h.ListItems)
		item.GET("/items/:id", h.GetItem)

		admin := item.Group("")
		admin.Use(h.AuthMiddleware(), h.AdminMiddleware())
		{
			admin.POST("/items", h.CreateItem)
			admin.PUT("/items/:id", h.UpdateItem)
			admin.DELETE("/items/:id", h.DeleteItem)
		}
	}

	cart := api.Group("/cart")
	cart.Use(h.AuthMiddleware())
	{
		cart.GET("", h.GetCart)
		cart.POST("", h.AddToCart)
		cart.DELETE("/:id", h.RemoveFromCart)
		cart.POST("/checkout", h.Checkout)
	}

	trans := api.Group("/trans")
	trans.Use(h.AuthMiddleware())
	{
		trans.GET("/transaction", h.GetTransactions)
		trans.GET("/commisions", h.GetCommissions)
	}

	user := api.Group("/user")
	{
		user.GET("/all-users", h.AuthMiddleware(), h.AdminMiddleware(), h.AllUsers)
		user.GET("/user-details/:referralCode", h.MemberReferral)
	}

	router.GET("/metrics", monitoring.Handler())

	return router
}

func startHTTP(router *gin.Engine, cfg *config.Config, logger *slog.Logger) {
	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Starting HTTP server", "port", cfg.HTTPPort)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to start HTTP server", "error", err)
	}
}

func generateRandomSecret() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return base64.URLEncoding.EncodeToString(bytes)
}
