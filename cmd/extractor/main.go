package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/medkb/billing-kb/internal/adapters/database"
	"github.com/medkb/billing-kb/internal/adapters/search"
	"github.com/medkb/billing-kb/internal/application/services"
	"github.com/medkb/billing-kb/internal/domain/entities"
	"github.com/medkb/billing-kb/internal/domain/repositories"
	"github.com/medkb/billing-kb/internal/extraction"
	"github.com/medkb/billing-kb/internal/infrastructure/clients/postgres"
	"github.com/medkb/billing-kb/internal/infrastructure/clients/typesense"
	"github.com/medkb/billing-kb/pkg/config"
)

func main() {
	var inputPath string
	var outputPath string
	var store bool
	var startPage int
	var endPage int
	flag.StringVar(&inputPath, "input", "", "path to the pages JSON file (array of {page_number, text})")
	flag.StringVar(&outputPath, "output", "extraction.json", "path for the extraction artifact JSON")
	flag.BoolVar(&store, "store", false, "persist extracted records to PostgreSQL")
	flag.IntVar(&startPage, "start", 0, "first page number to extract (inclusive, 0 = from the beginning)")
	flag.IntVar(&endPage, "end", 0, "last page number to extract (inclusive, 0 = to the end)")
	flag.Parse()

	if inputPath == "" {
		log.Fatal("Missing required flag: -input")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		log.Fatalf("Failed to read input file: %v", err)
	}

	var pages []entities.Page
	if err := json.Unmarshal(data, &pages); err != nil {
		log.Fatalf("Failed to parse pages JSON: %v", err)
	}
	pages = selectPages(pages, startPage, endPage)
	if len(pages) == 0 {
		log.Fatal("No pages within the requested range")
	}

	extractor := extraction.NewExtractor()
	result := extractor.Extract(pages)

	log.Printf("Extracted %d services and %d rules from %d pages",
		result.Summary.TotalServices, result.Summary.TotalRules, result.Summary.PagesProcessed)

	artifact, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode extraction artifact: %v", err)
	}
	if err := os.WriteFile(outputPath, artifact, 0o644); err != nil {
		log.Fatalf("Failed to write extraction artifact: %v", err)
	}
	log.Printf("Extraction artifact written to %s", outputPath)

	if !store {
		return
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()

	var searchRepo repositories.ServiceSearchRepository
	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
	} else {
		adapter := search.NewTypesenseAdapter(tsClient)
		if err := adapter.InitSchema(ctx); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		searchRepo = adapter
	}

	catalog := services.NewCatalogService(
		database.NewServiceAdapter(pgClient),
		database.NewRuleAdapter(pgClient),
		searchRepo,
		nil,
	)

	if err := catalog.SaveExtraction(ctx, result); err != nil {
		log.Fatalf("Failed to persist extraction result: %v", err)
	}
	log.Println("Extraction result persisted successfully")
}

// selectPages keeps the pages whose page number falls inside the inclusive
// [start, end] range. A zero bound leaves that side open.
func selectPages(pages []entities.Page, start, end int) []entities.Page {
	if start <= 0 && end <= 0 {
		return pages
	}

	selected := make([]entities.Page, 0, len(pages))
	for _, page := range pages {
		if start > 0 && page.PageNumber < start {
			continue
		}
		if end > 0 && page.PageNumber > end {
			continue
		}
		selected = append(selected, page)
	}
	return selected
}
