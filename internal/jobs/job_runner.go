package jobs

import (
	"time"

	"kos-backend-trusted/internal/config"
	"kos-backend-trusted/internal/logger"
	"kos-backend-trusted/internal/service"
	"kos-backend-trusted/internal/utils"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *service.Services
	config   *config.Config
	loc      *time.Location
	now      func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *service.Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
		loc:      cfg.Location(),
		now:      time.Now,
	}
}

// Config returns the configuration the runner was built with.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

func (jr *JobRunner) today() string {
	return utils.FormatDate(jr.now(), jr.loc)
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllDailyJobs runs all daily jobs (for manual execution)
func (jr *JobRunner) RunAllDailyJobs() {
	jr.PromoteDueBookings()
	jr.ReportOverdueStays()
}

// RunAllMonthlyJobs runs all monthly jobs (for manual execution)
func (jr *JobRunner) RunAllMonthlyJobs() {
	jr.OpenMonthlyCharges()
}
