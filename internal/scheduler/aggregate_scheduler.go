package scheduler

import (
	"github.com/robfig/cron/v3"

	"github.com/construtorcheck/construtorcheck-backend/internal/app/service"
	"github.com/construtorcheck/construtorcheck-backend/pkg/logger"
)

// AggregateScheduler recomputes company aggregates nightly. Review
// retraction adjusts counts immediately but leaves the stored means stale;
// this job closes that gap from the surviving reviews.
type AggregateScheduler struct {
	cron           *cron.Cron
	companyService *service.CompanyService
}

func NewAggregateScheduler(companyService *service.CompanyService) *AggregateScheduler {
	return &AggregateScheduler{
		cron:           cron.New(),
		companyService: companyService,
	}
}

func (s *AggregateScheduler) Start() error {
	// 04:00 daily, outside Portuguese peak hours.
	_, err := s.cron.AddFunc("0 4 * * *", func() {
		logger.Info("Starting scheduled aggregate reconciliation", nil)

		if err := s.companyService.ReconcileAggregates(); err != nil {
			logger.Error("Aggregate reconciliation finished with errors", err)
			return
		}

		logger.Info("Aggregate reconciliation completed", nil)
	})
	if err != nil {
		logger.Error("Failed to register aggregate reconciliation job", err)
		return err
	}

	s.cron.Start()
	logger.Info("Aggregate scheduler started (daily at 04:00)", nil)
	return nil
}

func (s *AggregateScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Aggregate scheduler stopped", nil)
}
