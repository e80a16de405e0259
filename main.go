package main

import (
	"log"

	api "ladinglens-backend/cmd/api"
	documentdomain "ladinglens-backend/internal/document/domain"
	documentRepo "ladinglens-backend/internal/document/repository"
	emailUsecase "ladinglens-backend/internal/email/usecase"
	"ladinglens-backend/internal/extraction"
	processingdomain "ladinglens-backend/internal/processing/domain"
	processingRepo "ladinglens-backend/internal/processing/repository"
	processingUsecase "ladinglens-backend/internal/processing/usecase"
	"ladinglens-backend/pkg/ai"
	"ladinglens-backend/pkg/config"
	"ladinglens-backend/pkg/database"
	"ladinglens-backend/pkg/gmail"
	"ladinglens-backend/pkg/pdf"
	"ladinglens-backend/pkg/sse"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&documentdomain.ExtractionResult{},
		&documentdomain.FailedExtraction{},
		&documentdomain.Incident{},
		&processingdomain.Job{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	docRepository := documentRepo.NewDocumentRepository(db)
	incidentRepository := documentRepo.NewIncidentRepository(db)
	jobRepository := processingRepo.NewJobRepository(db)

	// Initialize SSE Manager
	sseManager := sse.NewManager()

	// Initialize AI extractor for the generative fallback pass
	extractor, err := ai.NewExtractor(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:  cfg.GeminiAPIKey,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize AI extractor, generative fallback disabled: %v", err)
		extractor = nil
	} else {
		log.Printf("AI extractor initialized with provider: %s", cfg.AIProvider)
	}

	// Initialize the two-tier extraction engine
	engine := extraction.NewEngine(extractor, extraction.Config{
		CriticalFields:  cfg.CriticalFields,
		MinCharsPerPage: cfg.MinCharsPerPage,
		Concurrency:     cfg.ExtractConcurrency,
		FallbackTimeout: cfg.FallbackTimeout,
	})

	// Initialize email classification
	classifier := emailUsecase.NewClassifier(cfg.PreAlertKeywords, cfg.DraftKeywords)

	// Initialize Gmail transport and PDF converter client
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GmailRefreshToken)
	converter := pdf.NewHTTPConverter(cfg.ConverterURL)

	// Initialize the batch orchestrator
	processor := processingUsecase.NewProcessor(
		gmailService,
		converter,
		engine,
		classifier,
		docRepository,
		incidentRepository,
		jobRepository,
		sseManager,
		processingUsecase.Config{
			FetchLimit:   cfg.EmailFetchLimit,
			JobRetention: cfg.JobRetention,
		},
	)

	// Initialize HTTP handler
	handler := api.NewHandler(processor, docRepository, incidentRepository, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
