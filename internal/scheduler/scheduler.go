package scheduler

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"money-transfer-service/internal/service"
)

// Scheduler runs the nightly commission sweep and the previous-day summary
// job. Both jobs log their own failures; neither surfaces errors to a caller.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func New(
	commissions *service.CommissionService,
	summaries *service.SummaryService,
	sweepSpec, summarySpec string,
	logger *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	if _, err := c.AddFunc(sweepSpec, func() {
		logger.Info("Running scheduled commission sweep")
		if _, err := commissions.SweepCommissions(); err != nil {
			logger.Error("Scheduled commission sweep failed", "error", err)
		}
	}); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc(summarySpec, func() {
		yesterday := time.Now().AddDate(0, 0, -1)
		logger.Info("Running scheduled daily summary", "date", yesterday.Format("2006-01-02"))
		if _, err := summaries.Rebuild(yesterday); err != nil {
			logger.Error("Scheduled daily summary failed", "error", err)
		}
	}); err != nil {
		return nil, err
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("Starting background jobs")
	s.cron.Start()
}

// Stop halts scheduling and waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Background jobs stopped")
}
