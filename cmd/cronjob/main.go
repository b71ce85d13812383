package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"kos-backend-trusted/internal/config"
	"kos-backend-trusted/internal/jobs"
	"kos-backend-trusted/internal/logger"
	"kos-backend-trusted/internal/scheduler"
	"kos-backend-trusted/internal/service"
	"kos-backend-trusted/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.example.yaml", "Path to configuration file")
	envFile := flag.String("env", ".env", "Optional .env file loaded before the configuration")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'promote-due-bookings', 'all-daily', 'all-monthly')")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Kos Cronjob Runner...", "log_level", cfg.Log.Level, "timezone", cfg.Business.Timezone)

	if cfg.Storage.Driver == config.StorageMemory {
		logger.Warn("Cronjob runner is using the in-memory store; jobs will not see the server's data")
	}

	// Initialize store
	store, err := storage.Open(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	// Initialize services
	services := service.New(service.Deps{
		Store:         store,
		Location:      cfg.Location(),
		UpfrontMethod: cfg.Business.UpfrontMethod,
	})

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(services, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if !runJobOnce(jobRunner, *runOnce) {
			store.Close()
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and reports whether the name was known
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) bool {
	switch jobName {
	case "promote-due-bookings":
		jobRunner.PromoteDueBookings()
	case "report-overdue-stays":
		jobRunner.ReportOverdueStays()
	case "open-monthly-charges":
		jobRunner.OpenMonthlyCharges()
	case "all-daily":
		jobRunner.RunAllDailyJobs()
	case "all-monthly":
		jobRunner.RunAllMonthlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - promote-due-bookings\n")
		fmt.Printf("  - report-overdue-stays\n")
		fmt.Printf("  - open-monthly-charges\n")
		fmt.Printf("  - all-daily\n")
		fmt.Printf("  - all-monthly\n")
		return false
	}
	return true
}
