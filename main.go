package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/swapnilgarg7/sync-sure/config"
	"github.com/swapnilgarg7/sync-sure/handler"
	"github.com/swapnilgarg7/sync-sure/middleware"
	"github.com/swapnilgarg7/sync-sure/pkg/logger"
	"github.com/swapnilgarg7/sync-sure/pkg/vectorstore"
	"github.com/swapnilgarg7/sync-sure/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	if cfg.Oracle.APIKey == "" {
		slog.Warn("no oracle API key configured, analysis requests will fail")
	}

	// Initialize services
	oracleSvc := service.NewOracleService(&cfg.Oracle)
	store := service.NewAnalysisStore(&cfg.Store)

	var archiveSvc *service.ArchiveService
	if cfg.Archive.Enabled {
		archiveSvc, err = service.NewArchiveService(&cfg.Archive)
		if err != nil {
			slog.Error("failed to initialize archive service", "error", err)
			os.Exit(1)
		}
		if err := archiveSvc.EnsureBucket(context.Background()); err != nil {
			slog.Error("failed to ensure archive bucket", "error", err)
			os.Exit(1)
		}
	}

	analyzer := service.NewAnalyzer(cfg, oracleSvc, store, archiveSvc)

	// Build the similarity index before serving traffic; once the server is
	// up the index is only read.
	var indexSvc *service.IndexService
	if cfg.Index.Enabled {
		indexSvc = service.NewIndexService(&cfg.Index, oracleSvc, vectorstore.New(cfg.Index.QdrantURL))
		if err := indexSvc.BuildIfMissing(context.Background()); err != nil {
			slog.Error("failed to build similarity index", "error", err)
			os.Exit(1)
		}
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg)
	analyzeHandler := handler.NewAnalyzeHandler(analyzer)

	var docArchive handler.DocumentArchive
	if archiveSvc != nil {
		docArchive = archiveSvc
	}
	analysisHandler := handler.NewAnalysisHandler(store, docArchive)
	botHandler := handler.NewBotHandler(&cfg.Bot)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(corsMiddleware())
	router.Use(middleware.RateLimit(100, time.Minute))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/messages", botHandler.Messages)
	}

	// Analysis routes; token-protected only when users are configured
	protected := api.Group("/")
	if cfg.AuthEnabled() {
		protected.Use(middleware.AuthMiddleware(&cfg.Auth))
		protected.GET("/auth/me", authHandler.GetCurrentUser)
	}
	{
		protected.POST("/analyze-invoice", analyzeHandler.AnalyzeInvoice)
		protected.GET("/analyses", analysisHandler.List)
		protected.GET("/analyses/:id", analysisHandler.Get)
		protected.GET("/analyses/:id/download", analysisHandler.Download)
		protected.DELETE("/analyses/:id", analysisHandler.Delete)
		if indexSvc != nil {
			indexHandler := handler.NewIndexHandler(indexSvc)
			protected.GET("/index/search", indexHandler.Search)
		}
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-Analysis-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
