// dashboard-api serves the carbon intelligence dashboard endpoints and
// the admin CRI weight configuration API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/PranavNaik-adage/CarbonReady/internal/config"
	"github.com/PranavNaik-adage/CarbonReady/internal/cri"
	"github.com/PranavNaik-adage/CarbonReady/internal/dashboard"
	"github.com/PranavNaik-adage/CarbonReady/internal/farms"
	"github.com/PranavNaik-adage/CarbonReady/internal/storage/dynamo"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	client, err := dynamo.NewClient(ctx, cfg.AWS.Region)
	if err != nil {
		logger.Fatal("Failed to create DynamoDB client", zap.Error(err))
	}

	profileStore := dynamo.NewFarmProfileStore(client, cfg.Tables.FarmMetadata)
	calculationStore := dynamo.NewCalculationStore(client, cfg.Tables.CarbonCalculations)
	weightStore := dynamo.NewWeightStore(client, cfg.Tables.CRIWeights)
	weightManager := cri.NewWeightManager(weightStore, logger)

	dashboardHandler := dashboard.NewHandler(calculationStore, weightManager, logger)
	farmsHandler := farms.NewHandler(profileStore, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requestor-Role, X-Requestor-Id")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	api := router.Group("/api/v1")
	{
		dashboardHandler.RegisterRoutes(api)
		farmsHandler.RegisterRoutes(api)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Dashboard API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
}
