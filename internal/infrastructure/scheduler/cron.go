package scheduler

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"LottoScanner/internal/ports"
)

// CronScheduler runs the job daily at the minute and hour taken from a cron
// expression. Only the first two fields are interpreted; day/month/weekday
// fields are accepted but ignored.
type CronScheduler struct {
	minute   int
	hour     int
	location *time.Location

	mu   sync.Mutex
	stop chan struct{}
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler parses spec ("30 6 * * *" style) in the given timezone.
// Unparseable fields fall back to midnight.
func NewCronScheduler(spec string, location *time.Location) *CronScheduler {
	if location == nil {
		location = time.UTC
	}
	minute, hour := 0, 0
	fields := strings.Fields(spec)
	if len(fields) >= 2 {
		if v, err := strconv.Atoi(fields[0]); err == nil && v >= 0 && v < 60 {
			minute = v
		}
		if v, err := strconv.Atoi(fields[1]); err == nil && v >= 0 && v < 24 {
			hour = v
		}
	}
	return &CronScheduler{minute: minute, hour: hour, location: location}
}

// Start launches the run loop: one immediate run, then one run per day at
// the configured time.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	if c.stop != nil {
		c.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	c.stop = stop
	c.mu.Unlock()

	go func() {
		job(time.Now())
		for {
			timer := time.NewTimer(time.Until(c.nextRun(time.Now())))
			select {
			case t := <-timer.C:
				job(t)
			case <-ctx.Done():
				timer.Stop()
				return
			case <-stop:
				timer.Stop()
				return
			}
		}
	}()

	return nil
}

// Stop halts the run loop. Safe to call more than once.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop == nil {
		return nil
	}
	close(c.stop)
	c.stop = nil
	return nil
}

func (c *CronScheduler) nextRun(now time.Time) time.Time {
	local := now.In(c.location)
	next := time.Date(local.Year(), local.Month(), local.Day(), c.hour, c.minute, 0, 0, c.location)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
