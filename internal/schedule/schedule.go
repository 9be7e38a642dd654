// Package schedule triggers the rollup once a day at a fixed local time.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"

	"github.com/xolan/logpost/internal/logging"
)

// JobName identifies the daily job in the scheduler
const JobName = "daily-rollup"

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// CronExpr converts an HH:MM wall-clock time into a daily cron expression.
func CronExpr(at string) (string, error) {
	hour, minute, err := parseClock(at)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// NextRun returns the first trigger strictly after now in loc.
func NextRun(at string, loc *time.Location, now time.Time) (time.Time, error) {
	expr, err := CronExpr(at)
	if err != nil {
		return time.Time{}, err
	}
	sched, err := parser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule %q: %w", at, err)
	}
	return sched.Next(now.In(loc)), nil
}

// ShouldCatchUp reports whether today's trigger time in loc has already
// passed at now, i.e. a daily run may have been missed.
func ShouldCatchUp(at string, loc *time.Location, now time.Time) (bool, error) {
	hour, minute, err := parseClock(at)
	if err != nil {
		return false, err
	}
	local := now.In(loc)
	trigger := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	return !local.Before(trigger), nil
}

func parseClock(at string) (int, int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(at), ":")
	if !ok || len(h) != 2 || len(m) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", at)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", at)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", at)
	}
	return hour, minute, nil
}

// Options configures a Daily scheduler
type Options struct {
	// At is the HH:MM trigger time
	At string
	// Location is the zone At is read in; nil means time.Local
	Location *time.Location
	// CatchUp runs once at start when today's trigger time has passed
	CatchUp bool
	// Run is invoked for every trigger. Runs never overlap.
	Run    func(ctx context.Context)
	Logger *slog.Logger
	Now    func() time.Time
}

// Daily wraps a gocron scheduler holding the one daily job
type Daily struct {
	opts      Options
	expr      string
	scheduler gocron.Scheduler
	job       gocron.Job
}

// New validates opts and prepares the scheduler; nothing runs until Start.
func New(opts Options) (*Daily, error) {
	if opts.Run == nil {
		return nil, fmt.Errorf("schedule: run function is required")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	expr, err := CronExpr(opts.At)
	if err != nil {
		return nil, err
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(opts.Location))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Daily{opts: opts, expr: expr, scheduler: scheduler}, nil
}

// Start registers the daily job, performs the catch-up run if due and then
// blocks until ctx is cancelled, when the scheduler is shut down.
func (d *Daily) Start(ctx context.Context) error {
	job, err := d.scheduler.NewJob(
		gocron.CronJob(d.expr, false),
		gocron.NewTask(func() { d.opts.Run(ctx) }),
		gocron.WithName(JobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	d.job = job

	if d.opts.CatchUp {
		due, err := ShouldCatchUp(d.opts.At, d.opts.Location, d.opts.Now())
		if err != nil {
			return err
		}
		if due {
			d.opts.Logger.Info("trigger time already passed today, running catch-up", "at", d.opts.At)
			d.opts.Run(ctx)
		}
	}

	d.scheduler.Start()
	if next, err := NextRun(d.opts.At, d.opts.Location, d.opts.Now()); err == nil {
		d.opts.Logger.Info("scheduler started", "at", d.opts.At, "next_run", next.Format(time.RFC3339))
	}

	<-ctx.Done()
	d.opts.Logger.Info("scheduler stopping")
	if err := d.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	return nil
}

// NextRun returns when the job fires next, once Start has registered it.
func (d *Daily) NextRun() (time.Time, error) {
	if d.job == nil {
		return NextRun(d.opts.At, d.opts.Location, d.opts.Now())
	}
	return d.job.NextRun()
}
