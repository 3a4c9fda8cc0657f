package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/service"
)

// Job is a task run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	logger *slog.Logger
	jobs   []Job

	stopChan chan struct{}
}

func NewScheduler(logger *slog.Logger, jobs ...Job) *Scheduler {
	return &Scheduler{
		logger:   logger.With(slog.String("service", "job")),
		jobs:     jobs,
		stopChan: make(chan struct{}),
	}
}

// MarketingJobs returns the periodic sales calculation and, when enabled,
// the rating mail job.
func MarketingJobs(cfg config.Marketing, marketingSvc service.MarketingService) []Job {
	jobs := []Job{
		{
			Name:     "calculate_product_sales",
			Interval: cfg.SalesInterval,
			Run: func(ctx context.Context) error {
				_, err := marketingSvc.CalculateProductSales(ctx)
				return err
			},
		},
	}

	if cfg.RatingMailEnabled {
		jobs = append(jobs, Job{
			Name:     "send_rating_mails",
			Interval: cfg.RatingMailInterval,
			Run: func(ctx context.Context) error {
				_, err := marketingSvc.SendRatingMails(ctx, service.SendRatingMailsParams{Bcc: cfg.RatingMailBCC})
				return err
			},
		})
	}

	return jobs
}

type CleanupFunc func()

func (s *Scheduler) Run(ctx context.Context) CleanupFunc {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	for _, j := range s.jobs {
		if j.Interval <= 0 {
			s.logger.WarnContext(ctx, "job disabled", slog.String("job", j.Name))
			continue
		}
		wg.Go(func() {
			s.loop(ctx, j)
		})
	}

	stoppedChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(stoppedChan)
	}()

	return func() {
		close(s.stopChan)
		select {
		case <-stoppedChan:
		case <-time.After(5 * time.Second):
			cancel()
			<-stoppedChan
		}
		cancel()
	}
}

func (s *Scheduler) loop(ctx context.Context, j Job) {
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runOnce(ctx, j)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, j Job) {
	start := time.Now()
	if err := j.Run(ctx); err != nil {
		s.logger.ErrorContext(ctx, "error running job",
			slog.String("job", j.Name),
			slog.Any("error", err))
		return
	}

	s.logger.InfoContext(ctx, "job finished",
		slog.String("job", j.Name),
		slog.Duration("took", time.Since(start)))
}
