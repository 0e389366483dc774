package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"practice-service/internal/adaptive"
	"practice-service/internal/config"
	"practice-service/internal/db"
	"practice-service/internal/event"
	"practice-service/internal/handlers"
	"practice-service/internal/middleware"
	"practice-service/internal/repository"
	"practice-service/internal/selection"
	"practice-service/internal/service"
	"practice-service/pkg/discovery"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupLogging sends the standard logger to a daily file under dir.
func setupLogging(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	return file, nil
}

func main() {
	cfg := config.Load()

	if cfg.Server.LogDir != "" {
		logFile, err := setupLogging(cfg.Server.LogDir)
		if err != nil {
			log.Fatalf("Failed to set up logging: %v", err)
		}
		defer logFile.Close()
	}
	if cfg.Auth.JWTSecret == "" && !cfg.Auth.TrustGatewayHeader {
		log.Fatal("JWT_SECRET is required unless TRUST_GATEWAY_HEADER is enabled")
	}

	ctx := context.Background()
	mongoClient, database, err := db.ConnectMongo(ctx, cfg.MongoDB)
	if err != nil {
		log.Fatalf("MongoDB init failed: %v", err)
	}
	defer db.DisconnectMongo(context.Background(), mongoClient)

	publisher, err := event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	// Repositories
	questionRepo := repository.NewQuestionRepository(database)
	performanceRepo := repository.NewPerformanceRepository(database, cfg.Practice.LedgerMaxAttempts)
	resultRepo := repository.NewResultRepository(database)

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	for name, create := range map[string]func(context.Context) error{
		"questions":   questionRepo.InitializeIndexes,
		"performance": performanceRepo.InitializeIndexes,
		"results":     resultRepo.InitializeIndexes,
	} {
		if err := create(indexCtx); err != nil {
			log.Printf("Warning: failed to initialize %s indexes: %v", name, err)
		}
	}
	cancel()

	var catalog service.QuestionStore = questionRepo
	if redisClient := db.NewRedisClient(ctx, cfg.Redis); redisClient != nil {
		defer redisClient.Close()
		catalog = repository.NewCatalogCache(questionRepo, redisClient, cfg.Redis.TTL)
	}

	// Engine
	poolManager := selection.NewPoolManager(catalog, performanceRepo)
	ledgerManager := adaptive.NewManager(performanceRepo, catalog, &adaptive.AdaptiveConfig{
		Parallelism: cfg.Practice.LedgerParallelism,
	})

	// Services and handlers
	practiceService := service.NewPracticeService(catalog, resultRepo, poolManager, ledgerManager, publisher, cfg.Practice)
	resultService := service.NewResultService(resultRepo, cfg.Practice.HistoryDefaultLimit)
	questionService := service.NewQuestionService(catalog, performanceRepo)

	practiceHandler := handlers.NewPracticeHandler(practiceService)
	resultHandler := handlers.NewResultHandler(resultService)
	questionHandler := handlers.NewQuestionHandler(questionService)

	gin.SetMode(cfg.Server.GinMode)
	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[%s] %s %s %d %s %s\n",
			param.TimeStamp.Format(time.RFC3339),
			param.Method,
			param.Path,
			param.StatusCode,
			param.Latency,
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())
	r.Use(middleware.RequestMetrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := mongoClient.Ping(pingCtx, nil); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": cfg.Server.ServiceName})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	publicPractice := r.Group("/public/practice")
	{
		publicPractice.GET("/categories", questionHandler.Categories)
	}

	protectedPractice := r.Group("/protected/practice", middleware.Auth(cfg.Auth))
	{
		protectedPractice.GET("/questions", practiceHandler.GetQuestions)
		protectedPractice.POST("/submit", practiceHandler.Submit)
		protectedPractice.GET("/history", resultHandler.History)
		protectedPractice.GET("/result/:id", resultHandler.GetResult)
		protectedPractice.GET("/stats", resultHandler.Stats)
		protectedPractice.GET("/study-materials", questionHandler.StudyMaterials)
		protectedPractice.GET("/performance", questionHandler.Performance)
	}

	var registry *discovery.ServiceRegistry
	if cfg.Consul.Enabled {
		registry, err = discovery.NewServiceRegistry(cfg)
		if err != nil {
			log.Printf("Service discovery disabled: %v", err)
		} else if err := registry.Register(); err != nil {
			log.Printf("Consul registration failed: %v", err)
			registry = nil
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Starting %s on %s", cfg.Server.ServiceName, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if registry != nil {
		if err := registry.Deregister(); err != nil {
			log.Printf("Error deregistering from Consul: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
