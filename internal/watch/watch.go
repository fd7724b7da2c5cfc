// Package watch runs session maintenance for every user on a cron schedule, so habits
// break and streaks reset even for users who never open the CLI.
package watch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/constants"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/engine"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/logger"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
)

// ProfileLister enumerates the users a sweep visits.
type ProfileLister interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
}

// SessionRunner performs the per-user maintenance pass.
type SessionRunner interface {
	StartSession(ctx context.Context, userID string) (engine.SessionReport, error)
}

type Config struct {
	Schedule    string
	Concurrency int
	Location    *time.Location
	JobTimeout  time.Duration
}

// SweepResult aggregates one pass over all users.
type SweepResult struct {
	Users        int
	Broken       int
	StreakResets int
	Unlocked     int
	Warnings     int
	Failed       int
}

type Watcher struct {
	profiles ProfileLister
	sessions SessionRunner
	cfg      Config
	schedule cron.Schedule

	mu   sync.Mutex
	last SweepResult
}

// New validates the schedule and returns a watcher. Schedules use the standard
// five-field cron syntax or descriptors such as @daily and @every 1h.
func New(profiles ProfileLister, sessions SessionRunner, cfg Config) (*Watcher, error) {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = constants.DefaultWatchConcurrency
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = constants.WatchJobTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	schedule, err := cron.ParseStandard(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid watch schedule %q: %w", cfg.Schedule, err)
	}
	return &Watcher{
		profiles: profiles,
		sessions: sessions,
		cfg:      cfg,
		schedule: schedule,
	}, nil
}

// Next returns the first run time after t.
func (w *Watcher) Next(t time.Time) time.Time {
	return w.schedule.Next(t.In(w.cfg.Location))
}

// Last returns the result of the most recent completed sweep.
func (w *Watcher) Last() SweepResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Sweep starts a session for every user, at most Concurrency at a time. A failing user
// does not stop the others; all failures are joined into the returned error.
func (w *Watcher) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	users, err := w.profiles.ListProfiles(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list profiles: %w", err)
	}
	result.Users = len(users)

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(w.cfg.Concurrency)

	for _, p := range users {
		p := p
		g.Go(func() error {
			report, err := w.sessions.StartSession(ctx, p.UserID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				errs = append(errs, fmt.Errorf("user %s: %w", p.UserID, err))
				logger.Warn("Watch session failed", "user", p.UserID, "error", err)
				return nil
			}
			result.Broken += len(report.Broken)
			result.Unlocked += len(engine.Unlocked(report.Achievements))
			result.Warnings += len(report.Warnings)
			if report.StreakReset {
				result.StreakResets++
			}
			return nil
		})
	}
	_ = g.Wait()

	w.mu.Lock()
	w.last = result
	w.mu.Unlock()

	logger.Info("Watch sweep finished",
		"users", result.Users,
		"broken", result.Broken,
		"resets", result.StreakResets,
		"unlocked", result.Unlocked,
		"failed", result.Failed,
	)
	return result, errors.Join(errs...)
}

// Run blocks, sweeping on the configured schedule until ctx is cancelled. Overlapping
// runs are skipped rather than queued.
func (w *Watcher) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(w.cfg.Location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	c.Schedule(w.schedule, cron.FuncJob(func() {
		jobCtx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
		defer cancel()
		if _, err := w.Sweep(jobCtx); err != nil {
			logger.Error("Watch sweep completed with errors", "error", err)
		}
	}))

	logger.Info("Watch started", "schedule", w.cfg.Schedule, "next", w.Next(time.Now()).Format(time.RFC3339))
	c.Start()
	<-ctx.Done()

	stopped := c.Stop()
	<-stopped.Done()
	logger.Info("Watch stopped")
	return nil
}
