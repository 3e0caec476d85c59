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
	"github.com/nomadlab/seoulbang/internal/cache"
	"github.com/nomadlab/seoulbang/internal/config"
	"github.com/nomadlab/seoulbang/internal/database"
	"github.com/nomadlab/seoulbang/internal/enrich"
	"github.com/nomadlab/seoulbang/internal/geocode"
	"github.com/nomadlab/seoulbang/internal/handlers"
	"github.com/nomadlab/seoulbang/internal/logger"
	"github.com/nomadlab/seoulbang/internal/middleware"
	"github.com/nomadlab/seoulbang/internal/models"
	"github.com/nomadlab/seoulbang/internal/registry"
	"github.com/nomadlab/seoulbang/internal/repository"
	"github.com/nomadlab/seoulbang/internal/scheduler"
	"github.com/nomadlab/seoulbang/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting Seoulbang API", map[string]interface{}{
		"version":     "0.1.0",
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	// Initialize repositories and upstream clients
	listingRepo := repository.NewListingRepository(db)
	facilityRepo := repository.NewFacilityRepository(db)
	geocoder := geocode.NewClient(cfg.Kakao)
	registryClient := registry.NewClient(cfg.Registry)

	// Initialize enrichment jobs and their scheduler
	buildingJob := enrich.NewBuildingInfoJob(
		listingRepo,
		registryClient,
		cache.New[models.BuildingAttributes](),
		cfg.Jobs.BuildingBatchSize,
		log,
	)
	addressJob := enrich.NewAddressJob(
		listingRepo,
		geocoder,
		cache.New[geocode.AddressResult](),
		cfg.Jobs.BatchSize,
		log,
	)
	residentialJob := enrich.NewResidentialAreaJob(listingRepo, cfg.Jobs.BatchSize, log)

	sched := scheduler.New(log)
	sched.Register(scheduler.Job{Name: "building_info", Interval: cfg.Jobs.BuildingInterval, Run: buildingJob.Run})
	sched.Register(scheduler.Job{Name: "address", Interval: cfg.Jobs.AddressInterval, Run: addressJob.Run})
	sched.Register(scheduler.Job{Name: "residential_area", Interval: cfg.Jobs.ResidentialInterval, Run: residentialJob.Run})
	for _, class := range models.FacilityClasses {
		linkJob := enrich.NewFacilityLinkJob(
			facilityRepo,
			class,
			cfg.Jobs.BoundingBoxExpansion,
			cfg.Jobs.ProximityMeters,
			log,
		)
		sched.Register(scheduler.Job{
			Name:     "facility_links_" + class.Name,
			Interval: cfg.Jobs.FacilityInterval,
			Run:      linkJob.Run,
		})
	}

	jobCtx, stopJobs := context.WithCancel(ctx)
	sched.Start(jobCtx)

	// Initialize services
	listingService := services.NewListingService(listingRepo, log)
	recommendService := services.NewRecommendService(cfg.Recommend, geocoder, log)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize handlers
	listingHandler := handlers.NewListingHandler(listingService)
	recommendHandler := handlers.NewRecommendHandler(recommendService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/listings/:id", listingHandler.Detail)

		recommend := v1.Group("/recommend")
		{
			recommend.POST("/area", recommendHandler.Area)
			recommend.POST("/property", recommendHandler.Property)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown: stop taking requests, then wait for running jobs
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	stopJobs()
	sched.Stop()

	log.Info("Server exited", nil)
}
