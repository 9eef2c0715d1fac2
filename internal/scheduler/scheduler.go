package scheduler

import (
	"context"
	"time"

	"crossbot/internal/logger"
)

// Tick is what one cycle reports back to the scheduler.
// LastCloseMs is the close time of the newest candle; <= 0 means candle data was unavailable.
type Tick struct {
	LastCloseMs int64
}

// CandleScheduler runs a task back to back, sleeping after each run until the
// candle that follows the last observed one has closed.
type CandleScheduler struct {
	Interval time.Duration
	Fallback time.Duration
	Location *time.Location

	// OnWait, if set, is called with the planned wake-up time before each sleep.
	OnWait func(wakeAt time.Time)

	ctx   context.Context
	nowFn func() time.Time
	sleep func(ctx context.Context, d time.Duration) bool
}

func NewCandleScheduler(ctx context.Context, interval, fallback time.Duration, loc *time.Location) *CandleScheduler {
	if ctx == nil {
		ctx = context.Background()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &CandleScheduler{
		Interval: interval,
		Fallback: fallback,
		Location: loc,
		ctx:      ctx,
		nowFn:    time.Now,
		sleep:    Sleep,
	}
}

// Start blocks until ctx is done. A cycle in progress always completes.
func (s *CandleScheduler) Start(task func(ctx context.Context) Tick) {
	if s == nil {
		return
	}
	if task == nil {
		logger.Warnf("CandleScheduler: task is nil, exit")
		return
	}
	if s.Interval <= 0 {
		logger.Warnf("CandleScheduler: invalid interval=%s, exit", s.Interval)
		return
	}
	if s.Fallback <= 0 {
		s.Fallback = DefaultFallbackWait
	}
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.nowFn == nil {
		s.nowFn = time.Now
	}
	if s.sleep == nil {
		s.sleep = Sleep
	}

	logger.Infof("CandleScheduler: started interval=%s fallback=%s tz=%s", s.Interval, s.Fallback, s.Location)
	for {
		if s.ctx.Err() != nil {
			logger.Infof("CandleScheduler: ctx done, exit")
			return
		}
		tick := task(s.ctx)
		now := s.nowFn()
		wait := s.Fallback
		if tick.LastCloseMs > 0 {
			wait = NextCandleWait(tick.LastCloseMs, s.Interval, now)
			logger.Infof("CandleScheduler: 下一根K线 sleep=%s wake_at=%s",
				wait.Truncate(time.Second), now.Add(wait).In(s.Location).Format("2006-01-02 15:04:05 MST"))
		} else {
			logger.Warnf("CandleScheduler: no candle data, retry in %s", wait)
		}
		if s.OnWait != nil {
			s.OnWait(now.Add(wait))
		}
		if !s.sleep(s.ctx, wait) {
			logger.Infof("CandleScheduler: ctx done, exit")
			return
		}
	}
}

const DefaultFallbackWait = 30 * time.Second

// NextCandleWait is lastClose + interval - now, never negative.
func NextCandleWait(lastCloseMs int64, interval time.Duration, now time.Time) time.Duration {
	wakeAt := time.UnixMilli(lastCloseMs).Add(interval)
	wait := wakeAt.Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

// Sleep waits for d or until ctx is done. Reports false if ctx ended first.
func Sleep(ctx context.Context, d time.Duration) bool {
	if err := ctx.Err(); err != nil {
		return false
	}
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
