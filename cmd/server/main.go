package main

import (
	"log"

	"task-reminder-report/internal/api"
	"task-reminder-report/internal/config"
	"task-reminder-report/internal/database"
	"task-reminder-report/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize MongoDB client (sources, kv store, documents, audiences)
	mongoClient, err := database.NewMongoDBClient(cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Close()
	log.Printf("Successfully connected to MongoDB")

	// Initialize services
	checkpointService := services.NewCheckpointService(mongoClient)
	triggerService := services.NewTriggerService()
	defer triggerService.Stop()

	scanService := services.NewScanService(
		checkpointService,
		mongoClient,
		triggerService,
		cfg.Scan.TimeBudget,
		cfg.Scan.ContinuationDelay,
	)

	documentService := services.NewDocumentService(mongoClient)
	pdfService := services.NewPDFService()

	var notifier services.Notifier
	if cfg.Email.APIKey != "" {
		notifier = services.NewEmailService(cfg.Email)
	} else {
		log.Printf("WARNING: SendGrid API key not configured, notifications will be logged and dropped")
		notifier = services.NewLogNotifier()
	}

	dispatchService := services.NewDispatchService(
		checkpointService,
		mongoClient,
		documentService,
		pdfService,
		notifier,
		cfg.Server.PublicBaseURL,
	)

	reminderService := services.NewReminderService(scanService, dispatchService)

	// Start the recurring kick-off scheduler
	scheduleService := services.NewScheduleService(reminderService, mongoClient)
	scheduleService.Start()
	defer scheduleService.Stop()

	if err := scheduleService.LoadAndScheduleAudiences(); err != nil {
		log.Printf("WARNING: Failed to load audience schedules: %v", err)
	}

	// Initialize handlers
	handlers := api.NewHandlers(reminderService, checkpointService, mongoClient)

	// Setup routes
	router := api.SetupRoutes(handlers)

	// Start server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
