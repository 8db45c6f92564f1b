package main

import (
	"context"
	"log"
	"os"

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

// samplePages is a small fee-schedule excerpt used to seed a development catalog.
var samplePages = []entities.Page{
	{
		PageNumber: 1,
		Text: `GENERAL PRACTICE
A001 Minor assessment 23.75
A003 General assessment 77.20
A004 General re-assessment 38.35
A005 Consultation 82.30
A003 may be claimed only once per patient per 12 month period.
A001 cannot be claimed on the same day as A003.`,
	},
	{
		PageNumber: 2,
		Text: `DIAGNOSTIC AND THERAPEUTIC PROCEDURES
G010 Electrocardiogram 12.65
G365 Spirometry 28.70
Z432 Biopsy of skin lesion 55.40
G010 is limited to a maximum of three per patient per year.
Z432 is not eligible for payment when rendered during the same visit as G365.`,
	},
	{
		PageNumber: 3,
		Text: `LABORATORY MEDICINE
L003 Glucose, quantitative 5.15
L005 Hemoglobin 4.40
L204 Urinalysis, routine 6.25
L003 may be claimed if ordered by the treating physician.`,
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	var searchRepo *search.TypesenseAdapter
	if err == nil {
		searchRepo = search.NewTypesenseAdapter(tsClient)
		if err := searchRepo.InitSchema(ctx); err != nil {
			log.Printf("Failed to init Typesense schema: %v", err)
		}
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				billing_rules,
				services
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	serviceRepo := database.NewServiceAdapter(pgClient)
	ruleRepo := database.NewRuleAdapter(pgClient)

	var searchIface repositories.ServiceSearchRepository
	if searchRepo != nil {
		searchIface = searchRepo
	}
	catalog := services.NewCatalogService(serviceRepo, ruleRepo, searchIface, nil)

	result := extraction.NewExtractor().Extract(samplePages)
	log.Printf("Seeding %d services and %d rules", result.Summary.TotalServices, result.Summary.TotalRules)

	if err := catalog.SaveExtraction(ctx, result); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	log.Println("Seeding complete")
}
