package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netops/internal/config"
	"netops/internal/handlers"
	"netops/internal/middleware"
	"netops/internal/repository"
	"netops/internal/service"
	"netops/internal/worker"
	"netops/pkg/database"
	"netops/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("=== NetOps Ingest Server Starting ===")

	cfg := config.Load()

	db, err := database.Connect(database.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.DBName,
		SSLMode:  cfg.DB.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Redis is a read-view cache; the server runs without it.
	var cacheRepo repository.CacheRepository
	if cfg.Redis.Enabled {
		redisClient, err := redis.Connect(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Printf("Redis unavailable, read views uncached: %v", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient)
		}
	}

	stationRepo := repository.NewStationRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	flowRepo := repository.NewFlowRepository(db)
	flightRepo := repository.NewFlightRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	airportRepo := repository.NewAirportRepository(db)
	ingestLogRepo := repository.NewIngestLogRepository(db)

	authService := service.NewAuthService(stationRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	ingestService := service.NewIngestService(db, cacheRepo)
	reportService := service.NewReportService(
		stationRepo, flowRepo, flightRepo, inventoryRepo, airportRepo,
		ingestLogRepo, cacheRepo, cfg.Report.OutputDir,
	)

	scheduler := worker.NewScheduler()
	if cfg.Retention.Enabled {
		scheduler.AddWorker(worker.NewRetentionWorker(
			ingestLogRepo, snapshotRepo,
			cfg.Retention.Interval, cfg.Retention.LogMaxAge, cfg.Retention.SnapshotMaxAge,
		))
		log.Printf("Retention Worker enabled (interval: %v)", cfg.Retention.Interval)
	}
	go scheduler.Start()
	defer scheduler.Stop()

	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in DEBUG mode")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Admin-Password"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authHandler := handlers.NewAuthHandler(authService)
	ingestHandler := handlers.NewIngestHandler(ingestService)
	reportHandler := handlers.NewReportHandler(reportService, cfg.Auth.AdminPassword)

	loginLimiter := middleware.NewIPRateLimiter(
		rate.Every(time.Hour/time.Duration(cfg.RateLimit.LoginPerHour)), cfg.RateLimit.Burst)
	ingestLimiter := rate.NewLimiter(
		rate.Every(time.Hour/time.Duration(cfg.RateLimit.IngestPerHour)), cfg.RateLimit.Burst)

	api := r.Group("/api")

	api.POST("/login", middleware.IPRateLimitMiddleware(loginLimiter), authHandler.Login)
	api.POST("/ingest",
		middleware.RateLimitMiddleware(ingestLimiter),
		middleware.RequireStation(authService, stationRepo),
		ingestHandler.Ingest)

	api.GET("/flows", reportHandler.GetFlows)
	api.GET("/flows/export", reportHandler.ExportFlows)
	api.GET("/stations", reportHandler.GetStations)
	api.GET("/stations/:name/flights", reportHandler.GetStationFlights)
	api.GET("/stations/:name/inventory", reportHandler.GetStationInventory)
	api.GET("/stations/:name/ingest-log", reportHandler.GetStationIngestLog)
	api.GET("/airports", reportHandler.GetAirports)
	api.POST("/airports", reportHandler.UpsertAirport)
	api.GET("/health", reportHandler.Health)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.App.Port)
		log.Printf("API available at http://localhost:%s/api", cfg.App.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited properly")
}
