package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seniornav/careplan/backend/internal/adapters/cache"
	"github.com/seniornav/careplan/backend/internal/adapters/database"
	"github.com/seniornav/careplan/backend/internal/adapters/events"
	"github.com/seniornav/careplan/backend/internal/adapters/snapshots"
	"github.com/seniornav/careplan/backend/internal/api/handlers"
	"github.com/seniornav/careplan/backend/internal/api/routes"
	"github.com/seniornav/careplan/backend/internal/application/services"
	"github.com/seniornav/careplan/backend/internal/domain/providers"
	"github.com/seniornav/careplan/backend/internal/domain/repositories"
	"github.com/seniornav/careplan/backend/internal/engine"
	"github.com/seniornav/careplan/backend/internal/infrastructure/clients/openai"
	"github.com/seniornav/careplan/backend/internal/infrastructure/clients/postgres"
	"github.com/seniornav/careplan/backend/internal/infrastructure/clients/redis"
	"github.com/seniornav/careplan/backend/internal/infrastructure/observability"
	"github.com/seniornav/careplan/backend/internal/policy"
	"github.com/seniornav/careplan/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	observability.InitLogger(cfg.OTEL.ServiceName, env)
	logger := observability.GetLogger()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Build the engine from configured tables, falling back to the
	// built-in defaults
	eng, err := buildEngine(&cfg.Engine)
	if err != nil {
		log.Fatalf("Failed to build recommendation engine: %v", err)
	}

	// A broken policy file degrades to the built-in defaults so
	// assessments keep running.
	policyDoc := policy.LoadDocumentOrDefault(cfg.Engine.PolicyPath, logger)

	// Initialize database client
	var decisionRepo repositories.DecisionRepository
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Printf("Warning: Failed to initialize PostgreSQL client: %v", err)
		// Continue without durable decision rows - snapshots still record outcomes
	} else {
		defer pgClient.Close()
		decisionRepo = database.NewDecisionAdapter(pgClient)
		log.Println("PostgreSQL client initialized successfully")
	}

	// Initialize Redis client
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the application can work without caching or events
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Redis client initialized successfully")
	}

	// Initialize snapshot store
	snapshotStore, err := snapshots.NewFileSnapshotStore(cfg.Engine.SnapshotDir)
	if err != nil {
		log.Printf("Warning: Failed to initialize snapshot store: %v", err)
	}

	flags := services.NewFeatureFlags()

	// Initialize the LLM tier advisor
	var advisor providers.TierAdvisor
	if cfg.OpenAI.APIKey != "" {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Printf("Warning: Failed to initialize OpenAI client: %v", err)
		} else {
			advisor = openaiClient
			log.Println("OpenAI tier advisor initialized successfully")
		}
	} else {
		log.Println("OPENAI_API_KEY not set, running with deterministic decisions only")
	}

	if advisor != nil && cacheProvider != nil && flags.AdviceCacheEnabled() {
		advisor = services.NewCachingTierAdvisor(advisor, cacheProvider)
		log.Println("Tier advice caching enabled")
	}

	// Initialize services
	mediator := policy.NewMediator(policyDoc, advisor, logger)
	assessmentService := services.NewAssessmentService(
		eng,
		mediator,
		advisor,
		decisionRepo,
		snapshotStore,
		eventBus,
		metrics,
		flags,
		logger,
	)

	// Initialize handlers
	assessmentHandler := handlers.NewAssessmentHandler(assessmentService)
	streamHandler := handlers.NewDecisionStreamHandler(eventBus)

	// Set up router
	router := routes.NewRouter(
		assessmentHandler,
		streamHandler,
		metrics,
	)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	log.Println("Server stopped")
}

// buildEngine loads the question table, score thresholds, and tier
// table from the configured paths. Empty paths use the built-ins.
func buildEngine(cfg *config.EngineConfig) (*engine.Engine, error) {
	table := engine.DefaultQuestionTable()
	if cfg.QuestionTablePath != "" {
		loaded, err := engine.LoadQuestionTable(cfg.QuestionTablePath)
		if err != nil {
			return nil, fmt.Errorf("question table: %w", err)
		}
		table = loaded
	}

	thresholds := engine.DefaultScoreThresholds()
	if cfg.ScoreTablePath != "" {
		loaded, err := engine.LoadScoreThresholds(cfg.ScoreTablePath)
		if err != nil {
			return nil, fmt.Errorf("score thresholds: %w", err)
		}
		thresholds = loaded
	}

	tierTable := engine.DefaultTierTable()
	if cfg.TierTablePath != "" {
		loaded, err := engine.LoadTierTable(cfg.TierTablePath)
		if err != nil {
			return nil, fmt.Errorf("tier table: %w", err)
		}
		tierTable = loaded
	}

	return engine.NewEngine(table, thresholds, tierTable), nil
}
