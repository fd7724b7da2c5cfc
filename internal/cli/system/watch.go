package system

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/lockfile"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/utils"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/watch"
)

type WatchCmd struct {
	Once        bool   `help:"Run a single sweep and exit."`
	Schedule    string `help:"Cron schedule overriding watch.schedule."`
	Concurrency int    `help:"Users processed in parallel, overriding watch.concurrency."`
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	w, err := c.newWatcher(ctx)
	if err != nil {
		return err
	}

	if c.Once {
		res, err := w.Sweep(ctx.Context())
		printSweep(res)
		return err
	}

	lock, err := lockfile.Acquire(lockfile.DefaultPath(filepath.Dir(ctx.ConfigPath)))
	if err != nil {
		if errors.Is(err, lockfile.ErrHeld) {
			return fmt.Errorf("another 'habitus watch' is already running: %w", err)
		}
		return err
	}
	defer lock.Release()

	runCtx, stop := signal.NotifyContext(ctx.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching on %q. Next sweep at %s. Press Ctrl+C to stop.\n",
		c.schedule(ctx), w.Next(time.Now()).Format("2006-01-02 15:04 MST"))
	return w.Run(runCtx)
}

func (c *WatchCmd) schedule(ctx *cli.Context) string {
	if c.Schedule != "" {
		return c.Schedule
	}
	return ctx.Config.Watch.Schedule
}

func (c *WatchCmd) newWatcher(ctx *cli.Context) (*watch.Watcher, error) {
	loc, err := utils.LoadLocation(ctx.Config.Timezone)
	if err != nil {
		return nil, err
	}
	concurrency := ctx.Config.Watch.Concurrency
	if c.Concurrency > 0 {
		concurrency = c.Concurrency
	}
	return watch.New(ctx.Store, ctx.Engine, watch.Config{
		Schedule:    c.schedule(ctx),
		Concurrency: concurrency,
		Location:    loc,
	})
}

func printSweep(res watch.SweepResult) {
	fmt.Printf("Swept %d user(s): %d broken habit(s), %d streak reset(s), %d unlock(s)",
		res.Users, res.Broken, res.StreakResets, res.Unlocked)
	if res.Failed > 0 {
		fmt.Printf(", %s", cli.DangerStyle.Render(fmt.Sprintf("%d failed", res.Failed)))
	}
	if res.Warnings > 0 {
		fmt.Printf(", %s", cli.WarningStyle.Render(fmt.Sprintf("%d warning(s)", res.Warnings)))
	}
	fmt.Println()
}
