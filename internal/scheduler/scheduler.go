package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

const (
	JobWatchTick       = "watch-tick"
	JobDirectory       = "player-directory"
	JobDailySlate      = "daily-slate"
	defaultTick        = 45 * time.Second
	defaultDirectoryAt = "0 6 * * *"
)

// Jobs is the work the scheduler drives.
type Jobs interface {
	TickWatches(ctx context.Context)
	RefreshDirectory(ctx context.Context) error
	TodaysSlate(ctx context.Context) (string, error)
}

type Options struct {
	Location      *time.Location
	Clock         clockwork.Clock
	TickInterval  time.Duration
	DirectoryCron string
	SlateHour     uint
}

type Scheduler struct {
	s           gocron.Scheduler
	jobs        Jobs
	sendMessage func(string) error
	opts        Options

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(jobs Jobs, sendMessage func(string) error, opts Options) (*Scheduler, error) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTick
	}
	if opts.DirectoryCron == "" {
		opts.DirectoryCron = defaultDirectoryAt
	}

	schedOpts := []gocron.SchedulerOption{gocron.WithLocation(opts.Location)}
	if opts.Clock != nil {
		schedOpts = append(schedOpts, gocron.WithClock(opts.Clock))
	}

	s, err := gocron.NewScheduler(schedOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		s:           s,
		jobs:        jobs,
		sendMessage: sendMessage,
		opts:        opts,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

func (s *Scheduler) Start() error {
	var err error

	// Followed teams - every tick, skipped while the previous tick still runs
	_, err = s.s.NewJob(
		gocron.DurationJob(s.opts.TickInterval),
		gocron.NewTask(s.tickWatches),
		gocron.WithName(JobWatchTick),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create watch tick job: %w", err)
	}

	// Player directory - daily, before anyone is awake
	_, err = s.s.NewJob(
		gocron.CronJob(s.opts.DirectoryCron, false),
		gocron.NewTask(s.refreshDirectory),
		gocron.WithName(JobDirectory),
	)
	if err != nil {
		return fmt.Errorf("failed to create directory job: %w", err)
	}

	// Today's slate - daily at SlateHour league time
	_, err = s.s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(s.opts.SlateHour, 0, 0))),
		gocron.NewTask(s.sendSlate),
		gocron.WithName(JobDailySlate),
	)
	if err != nil {
		return fmt.Errorf("failed to create slate job: %w", err)
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	s.cancel()
	return s.s.Shutdown()
}

// RunNow triggers a named job outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	for _, j := range s.s.Jobs() {
		if j.Name() == name {
			return j.RunNow()
		}
	}
	return fmt.Errorf("no job named %q", name)
}

func (s *Scheduler) tickWatches() {
	s.jobs.TickWatches(s.ctx)
}

func (s *Scheduler) refreshDirectory() {
	if err := s.jobs.RefreshDirectory(s.ctx); err != nil {
		slog.Error("Failed to refresh player directory", "error", err)
	}
}

func (s *Scheduler) sendSlate() {
	slate, err := s.jobs.TodaysSlate(s.ctx)
	if err != nil {
		slog.Error("Failed to build today's slate", "error", err)
		return
	}
	if err := s.sendMessage(slate); err != nil {
		slog.Error("Failed to send today's slate", "error", err)
	}
}
