package main

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var errAllWindowsPassed = errors.New("all drop windows have passed")

// dropSchedule runs the acquisition attempt inside configured drop windows:
// stay dormant until a window's activation point, attempt until the window's
// deadline, then move to the next window.
type dropSchedule struct {
	windows []time.Time
	pre     time.Duration
	post    time.Duration
	clock   *timeSync
	log     *Logger
}

func newDropSchedule(config *Config, log *Logger) (*dropSchedule, error) {
	var windows []time.Time
	for i, s := range config.DropWindows {
		t, err := ParseDropTime(s)
		if err != nil {
			return nil, fmt.Errorf("drop window %d: %w", i+1, err)
		}
		windows = append(windows, t)
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("no drop windows configured")
	}

	return &dropSchedule{
		windows: windows,
		pre:     time.Duration(config.PreWindowMinutes) * time.Minute,
		post:    time.Duration(config.PostWindowMinutes) * time.Minute,
		clock:   newTimeSync(config.TimeProbeHosts, log),
		log:     log,
	}, nil
}

// Run walks the windows in order, invoking attempt with a deadline-bounded
// context for each. The first attempt that returns without a deadline error
// ends the schedule; a window whose deadline expires hands over to the next.
func (d *dropSchedule) Run(ctx context.Context, attempt func(context.Context) (attemptOutcome, error)) (attemptOutcome, error) {
	d.log.Info(T("time_syncing"))
	if err := d.clock.Sync(); err != nil {
		// Local clock is a workable fallback; the operator just loses the
		// offset correction.
		d.log.Warn(T("time_sync_failed"), err)
	} else {
		d.log.Info(T("time_synced"), d.clock.Offset().Round(time.Millisecond))
	}

	d.log.Info(T("windows_configured"), len(d.windows))
	for i, w := range d.windows {
		d.log.Info(T("window_time"), i+1, w.Format(time.RFC3339))
	}

	for i, window := range d.windows {
		num := i + 1

		if d.clock.Now().After(window.Add(d.post)) {
			d.log.Info(T("window_already_passed"), num)
			continue
		}

		activation := window.Add(-d.pre)
		if wait := activation.Sub(d.clock.Now()); wait > 0 {
			d.log.Info(T("window_waiting"), num, wait.Round(time.Second))
			if err := d.sleepUntil(ctx, activation); err != nil {
				return attemptOutcome{}, err
			}
		}

		d.log.Info(T("window_open"), num)

		wctx, cancel := context.WithDeadline(ctx, window.Add(d.post))
		out, err := attempt(wctx)
		cancel()

		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return attemptOutcome{}, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			d.log.Warn(T("window_expired"), num)
			continue
		}
		return attemptOutcome{}, err
	}

	return attemptOutcome{}, errAllWindowsPassed
}

// sleepUntil stays dormant until target, waking periodically to refresh a
// stale clock offset and report the remaining wait.
func (d *dropSchedule) sleepUntil(ctx context.Context, target time.Time) error {
	const tick = 30 * time.Second

	for {
		remaining := target.Sub(d.clock.Now())
		if remaining <= 0 {
			return nil
		}

		if remaining < tick {
			sleep(ctx, remaining)
			return ctx.Err()
		}

		sleep(ctx, tick)
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.clock.ShouldResync() {
			if err := d.clock.Sync(); err != nil {
				d.log.Trace("clock resync failed: %v", err)
			}
		}

		if remaining := target.Sub(d.clock.Now()); remaining > 0 {
			d.log.Info(T("window_countdown"), remaining.Round(time.Second))
		}
	}
}
