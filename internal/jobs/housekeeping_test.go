package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"subaacare-server/internal/services"
)

type fakeHousekeeper struct {
	calls []time.Time
	res   services.HousekeepResult
	err   error
}

func (f *fakeHousekeeper) Housekeep(_ context.Context, now time.Time) (services.HousekeepResult, error) {
	f.calls = append(f.calls, now)
	return f.res, f.err
}

func TestNewSchedulerRejectsBadSchedule(t *testing.T) {
	if _, err := NewScheduler("every now and then", &fakeHousekeeper{}, zap.NewNop()); err == nil {
		t.Fatal("expected an error for an invalid schedule")
	}
}

func TestRunOnce(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 12, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))

	t.Run("PassesUTCNow", func(t *testing.T) {
		target := &fakeHousekeeper{res: services.HousekeepResult{Expired: 2, Completed: 1}}
		s, err := NewScheduler("@every 5m", target, zap.NewNop())
		if err != nil {
			t.Fatalf("NewScheduler: %v", err)
		}
		s.now = func() time.Time { return fixed }

		res := s.RunOnce(context.Background())
		if res.Expired != 2 || res.Completed != 1 {
			t.Errorf("unexpected result %+v", res)
		}
		if len(target.calls) != 1 {
			t.Fatalf("expected one call, got %d", len(target.calls))
		}
		if got := target.calls[0]; !got.Equal(fixed) || got.Location() != time.UTC {
			t.Errorf("expected %v in UTC, got %v", fixed.UTC(), got)
		}
	})

	t.Run("Error", func(t *testing.T) {
		target := &fakeHousekeeper{err: errors.New("db down")}
		s, err := NewScheduler("*/5 * * * *", target, zap.NewNop())
		if err != nil {
			t.Fatalf("NewScheduler: %v", err)
		}
		if res := s.RunOnce(context.Background()); res.Expired != 0 || res.Completed != 0 {
			t.Errorf("expected empty result, got %+v", res)
		}
	})
}

func TestStartStop(t *testing.T) {
	s, err := NewScheduler("@hourly", &fakeHousekeeper{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
