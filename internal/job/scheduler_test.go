package job

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/lfs/internal/config"
)

func TestScheduler(t *testing.T) {
	t.Run("Should run jobs until cleanup", func(t *testing.T) {
		var ok, failing atomic.Int32
		s := NewScheduler(slog.New(slog.DiscardHandler),
			Job{Name: "ok", Interval: 5 * time.Millisecond, Run: func(context.Context) error {
				ok.Add(1)
				return nil
			}},
			Job{Name: "failing", Interval: 5 * time.Millisecond, Run: func(context.Context) error {
				failing.Add(1)
				return errors.New("boom")
			}},
			Job{Name: "disabled", Run: func(context.Context) error {
				t.Error("disabled job ran")
				return nil
			}},
		)

		cleanup := s.Run(context.Background())
		assert.Eventually(t, func() bool { return ok.Load() >= 2 && failing.Load() >= 2 }, time.Second, 5*time.Millisecond)
		cleanup()

		stopped := ok.Load()
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, stopped, ok.Load())
	})
}

func TestMarketingJobs(t *testing.T) {
	jobs := MarketingJobs(config.Marketing{SalesInterval: time.Hour}, nil)
	assert.Len(t, jobs, 1)
	assert.Equal(t, "calculate_product_sales", jobs[0].Name)

	jobs = MarketingJobs(config.Marketing{SalesInterval: time.Hour, RatingMailEnabled: true, RatingMailInterval: time.Hour}, nil)
	assert.Len(t, jobs, 2)
	assert.Equal(t, "send_rating_mails", jobs[1].Name)
}
