package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/medkb/billing-kb/internal/adapters/database"
	"github.com/medkb/billing-kb/internal/adapters/index"
	"github.com/medkb/billing-kb/internal/adapters/search"
	"github.com/medkb/billing-kb/internal/application/services"
	"github.com/medkb/billing-kb/internal/domain/entities"
	"github.com/medkb/billing-kb/internal/domain/repositories"
	"github.com/medkb/billing-kb/internal/infrastructure/clients/openai"
	"github.com/medkb/billing-kb/internal/infrastructure/clients/postgres"
	"github.com/medkb/billing-kb/internal/infrastructure/clients/typesense"
	"github.com/medkb/billing-kb/pkg/config"
)

func main() {
	var artifactPath string
	var intervalFlag string
	flag.StringVar(&artifactPath, "artifact", "", "extraction artifact JSON to index (defaults to reading from PostgreSQL)")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, artifactPath); err != nil {
			log.Printf("Index run failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		log.Printf("Index run complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Indexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, artifactPath string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	items, rules, err := loadRecords(ctx, cfg, artifactPath)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d services and %d rules for indexing", len(items), len(rules))

	openaiClient, err := openai.NewClient(&cfg.OpenAI, nil)
	if err != nil {
		return err
	}

	qdrantAdapter, err := index.NewQdrantAdapter(&cfg.Qdrant, nil)
	if err != nil {
		return err
	}
	defer qdrantAdapter.Close()

	if err := qdrantAdapter.EnsureCollection(ctx); err != nil {
		return err
	}

	uploader := services.NewUploadService(openaiClient, qdrantAdapter)

	serviceReport, err := uploader.UploadServices(ctx, items)
	if err != nil {
		return err
	}
	log.Printf("Services uploaded: %d ok, %d failed", serviceReport.Uploaded, len(serviceReport.Failed))
	for _, id := range serviceReport.Failed {
		log.Printf("Warning: failed to upload service %s", id)
	}

	ruleReport, err := uploader.UploadRules(ctx, rules)
	if err != nil {
		return err
	}
	log.Printf("Rules uploaded: %d ok, %d failed", ruleReport.Uploaded, len(ruleReport.Failed))
	for _, id := range ruleReport.Failed {
		log.Printf("Warning: failed to upload rule %s", id)
	}

	// Keep the lexical index in step with the vector index
	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
		return nil
	}

	adapter := search.NewTypesenseAdapter(tsClient)
	if err := adapter.InitSchema(ctx); err != nil {
		return err
	}
	for i := range items {
		if err := adapter.Index(ctx, &items[i]); err != nil {
			log.Printf("Warning: failed to index service %s in Typesense: %v", items[i].Code, err)
		}
	}

	return nil
}

// loadRecords reads the records to index either from an artifact file or from
// the catalog tables.
func loadRecords(ctx context.Context, cfg *config.Config, artifactPath string) ([]entities.ServiceItem, []entities.BillingRule, error) {
	if artifactPath != "" {
		data, err := os.ReadFile(artifactPath)
		if err != nil {
			return nil, nil, err
		}
		var result entities.ExtractionResult
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, nil, err
		}
		return result.Services, result.Rules, nil
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	defer pgClient.Close()

	serviceRepo := database.NewServiceAdapter(pgClient)
	ruleRepo := database.NewRuleAdapter(pgClient)

	servicePtrs, err := serviceRepo.List(ctx, repositories.ServiceFilter{Limit: 10000})
	if err != nil {
		return nil, nil, err
	}
	rulePtrs, err := ruleRepo.List(ctx, 10000)
	if err != nil {
		return nil, nil, err
	}

	items := make([]entities.ServiceItem, 0, len(servicePtrs))
	for _, item := range servicePtrs {
		if item != nil {
			items = append(items, *item)
		}
	}
	rules := make([]entities.BillingRule, 0, len(rulePtrs))
	for _, rule := range rulePtrs {
		if rule != nil {
			rules = append(rules, *rule)
		}
	}
	return items, rules, nil
}
