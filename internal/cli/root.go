package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/config"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/engine"
	apperrors "github.com/ymhp64t9bz-png/habitus-strict-html/internal/errors"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/keyring"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/logger"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/notifier"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/utils"
)

type Context struct {
	Store      storage.Provider
	Engine     *engine.Engine
	Config     *config.AppConfig
	ConfigPath string
	// Ctx bounds every storage call made by a command.
	Ctx context.Context
}

// UserFlag is embedded by every command that acts on one profile.
type UserFlag struct {
	User string `short:"u" required:"" env:"HABITUS_USER" help:"User ID the command acts on."`
}

// NewContext wires the engine for cfg on top of store. A configured webhook that cannot
// be built is logged and skipped so the CLI keeps working offline.
func NewContext(ctx context.Context, store storage.Provider, cfg *config.AppConfig, configPath string) (*Context, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	loc, err := utils.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	opts := engine.Options{
		Location:       loc,
		MinGoalDays:    cfg.Habits.MinGoalDays,
		FreezeUnlocked: cfg.Achievements.FreezeUnlocked,
	}
	if n := BuildNotifier(cfg.Notify); n != nil {
		opts.Notifier = n
	}

	return &Context{
		Store:      store,
		Engine:     engine.New(store, opts),
		Config:     cfg,
		ConfigPath: configPath,
		Ctx:        ctx,
	}, nil
}

// BuildNotifier returns nil when no webhook is configured or it is invalid. The signing
// secret comes from config when set, otherwise from the OS keyring.
func BuildNotifier(cfg config.NotifyConfig) *notifier.Notifier {
	if strings.TrimSpace(cfg.WebhookURL) == "" {
		return nil
	}
	secret := cfg.Secret
	if secret == "" {
		if s, err := keyring.Get(keyring.EntryWebhookSecret); err == nil {
			secret = s
		} else if !errors.Is(err, keyring.ErrNotFound) {
			logger.Debug("Webhook secret unavailable", "error", err)
		}
	}
	n, err := notifier.New(notifier.Config{
		URL:           cfg.WebhookURL,
		Secret:        secret,
		OnAchievement: cfg.OnAchievement,
		OnBrokenHabit: cfg.OnBrokenHabit,
	})
	if err != nil {
		logger.Warn("Webhook disabled", "error", err)
		return nil
	}
	return n
}

// Context returns the command context, never nil.
func (c *Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// Session runs session-start maintenance for userID and prints what changed. Commands
// that act on a user call it first so stale habits break before they are shown.
func (c *Context) Session(userID string) (engine.SessionReport, error) {
	report, err := c.Engine.StartSession(c.Context(), userID)
	if err != nil {
		return report, err
	}
	for _, h := range report.Broken {
		fmt.Println(DangerStyle.Render(fmt.Sprintf("✗ %s broke at %d/%d %s. Delete it to start over.", h.Title, h.CurrentValue, h.GoalValue, h.Unit.Label())))
	}
	if report.StreakReset {
		fmt.Println(WarningStyle.Render("Your streak was reset after a missed day."))
	}
	PrintAchievementChanges(report.Achievements)
	PrintWarnings(report.Warnings)
	return report, nil
}

// ResolveItem finds an item of userID by id or case-insensitive title. A title that
// matches several items is rejected.
func ResolveItem(ctx context.Context, store storage.Provider, userID, ref string, filter storage.ItemFilter) (models.Item, error) {
	ref = strings.TrimSpace(ref)
	if item, err := store.GetItem(ctx, userID, ref); err == nil {
		if matchesFilter(item, filter) {
			return item, nil
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return models.Item{}, err
	}

	items, err := store.ListItems(ctx, userID, filter)
	if err != nil {
		return models.Item{}, err
	}
	var matches []models.Item
	for _, item := range items {
		if strings.EqualFold(item.Title, ref) {
			matches = append(matches, item)
		}
	}
	switch len(matches) {
	case 0:
		return models.Item{}, fmt.Errorf("%q: %w", ref, apperrors.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return models.Item{}, fmt.Errorf("%q matches %d items, use the id instead", ref, len(matches))
	}
}

func matchesFilter(item models.Item, filter storage.ItemFilter) bool {
	if filter.IsTask != nil && item.IsTask != *filter.IsTask {
		return false
	}
	if filter.Broken != nil && item.Broken != *filter.Broken {
		return false
	}
	return item.CurrentValue >= filter.MinCurrentValue
}

// PrintAchievementChanges announces fresh unlocks.
func PrintAchievementChanges(changes []engine.AchievementChange) {
	for _, a := range engine.Unlocked(changes) {
		fmt.Printf("%s %s %s\n", LevelStyle(a.Level).Render("★"), SuccessStyle.Render("Achievement unlocked:"), a.Name)
	}
}

// PrintWarnings reports swallowed persistence failures. The command itself still succeeded.
func PrintWarnings(warnings []error) {
	for _, w := range warnings {
		fmt.Println(WarningStyle.Render("warning: " + w.Error()))
	}
}

// FormatDayAgo renders a stored day relative to today.
func FormatDayAgo(day *string, today string) string {
	if day == nil {
		return "never"
	}
	n, err := utils.DaysBetween(*day, today)
	if err != nil {
		return *day
	}
	switch n {
	case 0:
		return "today"
	case 1:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", n)
	}
}

// FormatTime renders a timestamp in the configured location.
func (c *Context) FormatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	loc, err := utils.LoadLocation(c.Config.Timezone)
	if err != nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02 15:04")
}
