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

	"github.com/joho/godotenv"

	"github.com/medkb/billing-kb/internal/adapters/cache"
	"github.com/medkb/billing-kb/internal/adapters/database"
	"github.com/medkb/billing-kb/internal/adapters/index"
	"github.com/medkb/billing-kb/internal/adapters/search"
	"github.com/medkb/billing-kb/internal/api/handlers"
	"github.com/medkb/billing-kb/internal/api/routes"
	"github.com/medkb/billing-kb/internal/application/services"
	"github.com/medkb/billing-kb/internal/domain/providers"
	"github.com/medkb/billing-kb/internal/domain/repositories"
	"github.com/medkb/billing-kb/internal/infrastructure/clients/openai"
	"github.com/medkb/billing-kb/internal/infrastructure/clients/postgres"
	"github.com/medkb/billing-kb/internal/infrastructure/clients/redis"
	"github.com/medkb/billing-kb/internal/infrastructure/clients/typesense"
	"github.com/medkb/billing-kb/internal/infrastructure/observability"
	"github.com/medkb/billing-kb/pkg/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
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

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Printf("Warning: Failed to initialize PostgreSQL client: %v", err)
		// Continue without Postgres - catalog endpoints degrade gracefully
	} else {
		defer pgClient.Close()
		log.Println("PostgreSQL client initialized successfully")
	}

	// Initialize Redis client
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the application can work without caching
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
	} else {
		log.Println("Typesense client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize persistence adapters
	var serviceRepo repositories.ServiceRepository
	var ruleRepo repositories.RuleRepository
	if pgClient != nil {
		serviceRepo = database.NewServiceAdapter(pgClient)
		ruleRepo = database.NewRuleAdapter(pgClient)
	}

	var searchRepo repositories.ServiceSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(ctx); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		searchRepo = adapter
	}

	// Initialize the embedding provider and the vector index
	var embedder providers.Embedder
	if cfg.OpenAI.APIKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set; semantic retrieval disabled")
	} else {
		openaiClient, err := openai.NewClient(&cfg.OpenAI, metrics)
		if err != nil {
			log.Printf("Warning: Failed to initialize OpenAI client: %v", err)
		} else {
			embedder = openaiClient
		}
	}

	var vectorIndex providers.VectorIndex
	qdrantAdapter, err := index.NewQdrantAdapter(&cfg.Qdrant, metrics)
	if err != nil {
		log.Printf("Warning: Failed to initialize Qdrant adapter: %v", err)
	} else {
		defer qdrantAdapter.Close()
		if err := qdrantAdapter.EnsureCollection(ctx); err != nil {
			log.Printf("Warning: Failed to ensure Qdrant collection: %v", err)
		}
		vectorIndex = qdrantAdapter
		log.Println("Qdrant adapter initialized successfully")
	}

	// Initialize services
	var retrievalService *services.RetrievalService
	if embedder != nil && vectorIndex != nil {
		retrievalService = services.NewRetrievalService(embedder, vectorIndex, cacheProvider)
		retrievalService.SetMetrics(metrics)
		log.Println("Retrieval service initialized successfully")
	} else {
		log.Println("Retrieval service disabled (embedding provider or vector index unavailable)")
	}

	reconciliationService := services.NewReconciliationService()

	var catalogService *services.CatalogService
	if serviceRepo != nil {
		catalogService = services.NewCatalogService(serviceRepo, ruleRepo, searchRepo, cacheProvider)
		catalogService.SetMetrics(metrics)
	} else {
		log.Println("Catalog service disabled (PostgreSQL unavailable)")
	}

	// Initialize handlers
	var queryHandler *handlers.QueryHandler
	if retrievalService != nil {
		queryHandler = handlers.NewQueryHandler(retrievalService)
	}

	var serviceHandler *handlers.ServiceHandler
	if catalogService != nil {
		serviceHandler = handlers.NewServiceHandler(catalogService)
	}

	reconcileHandler := handlers.NewReconcileHandler(reconciliationService)
	extractionHandler := handlers.NewExtractionHandler()

	// Set up router
	router := routes.NewRouter(
		queryHandler,
		serviceHandler,
		reconcileHandler,
		extractionHandler,
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Server stopped")
}
