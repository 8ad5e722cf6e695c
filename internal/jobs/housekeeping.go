package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"subaacare-server/internal/services"
)

// Housekeeper is the booking operation the scheduler drives.
type Housekeeper interface {
	Housekeep(ctx context.Context, now time.Time) (services.HousekeepResult, error)
}

// Scheduler runs booking housekeeping on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	target  Housekeeper
	log     *zap.Logger
	now     func() time.Time
	timeout time.Duration
}

// NewScheduler registers the housekeeping pass under spec, a standard
// five-field cron expression or a descriptor such as "@every 5m".
func NewScheduler(spec string, target Housekeeper, log *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		target:  target,
		log:     log,
		now:     time.Now,
		timeout: time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid housekeeping schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("booking housekeeping scheduled")
}

// Stop halts the scheduler and waits for a running pass to finish or for
// ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("housekeeping still running at shutdown")
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.RunOnce(ctx)
}

// RunOnce performs a single housekeeping pass and logs the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) services.HousekeepResult {
	res, err := s.target.Housekeep(ctx, s.now().UTC())
	if err != nil {
		s.log.Error("booking housekeeping failed", zap.Error(err))
		return res
	}
	if res.Expired > 0 || res.Completed > 0 {
		s.log.Info("booking housekeeping",
			zap.Int("expired", res.Expired),
			zap.Int("completed", res.Completed),
		)
	}
	return res
}
