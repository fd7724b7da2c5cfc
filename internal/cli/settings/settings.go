package settings

import (
	"fmt"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/config"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/notifier"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone         *string `help:"IANA timezone used to decide what 'today' is."`
	MinGoalDays      *int    `help:"Smallest goal, in days, a new habit may have."`
	FreezeUnlocked   *bool   `help:"Keep unlocked achievements at 100% after the stat regresses."`
	WatchSchedule    *string `help:"Cron schedule for 'habitus watch'."`
	WatchConcurrency *int    `help:"Users processed in parallel by 'habitus watch'."`
	WebhookURL       *string `help:"Webhook URL for notifications (empty to disable)."`
	NotifyAchieve    *bool   `name:"notify-achievements" help:"Send a webhook when an achievement unlocks."`
	NotifyBroken     *bool   `name:"notify-broken" help:"Send a webhook when a habit breaks."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if c.List {
		printSettings(ctx.ConfigPath, cfg)
		return nil
	}

	updated := false
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone %q", *c.Timezone)
		}
		cfg.Timezone = *c.Timezone
		updated = true
	}
	if c.MinGoalDays != nil {
		cfg.Habits.MinGoalDays = *c.MinGoalDays
		updated = true
	}
	if c.FreezeUnlocked != nil {
		cfg.Achievements.FreezeUnlocked = *c.FreezeUnlocked
		updated = true
	}
	if c.WatchSchedule != nil {
		cfg.Watch.Schedule = *c.WatchSchedule
		updated = true
	}
	if c.WatchConcurrency != nil {
		cfg.Watch.Concurrency = *c.WatchConcurrency
		updated = true
	}
	if c.WebhookURL != nil {
		if *c.WebhookURL != "" {
			if err := notifier.ValidateURL(*c.WebhookURL); err != nil {
				return err
			}
		}
		cfg.Notify.WebhookURL = *c.WebhookURL
		updated = true
	}
	if c.NotifyAchieve != nil {
		cfg.Notify.OnAchievement = *c.NotifyAchieve
		updated = true
	}
	if c.NotifyBroken != nil {
		cfg.Notify.OnBrokenHabit = *c.NotifyBroken
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(ctx.ConfigPath, cfg); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Config = cfg
	fmt.Println("Settings updated successfully.")
	return nil
}

func printSettings(path string, cfg *config.AppConfig) {
	webhook := cfg.Notify.WebhookURL
	if webhook == "" {
		webhook = "(disabled)"
	}

	fmt.Printf("Current Settings (%s):\n", path)
	fmt.Printf("  Timezone:              %s\n", cfg.Timezone)
	fmt.Printf("  Min Goal Days:         %d\n", cfg.Habits.MinGoalDays)
	fmt.Printf("  Freeze Unlocked:       %v\n", cfg.Achievements.FreezeUnlocked)
	fmt.Println("\nWatch Settings:")
	fmt.Printf("  Schedule:              %s\n", cfg.Watch.Schedule)
	fmt.Printf("  Concurrency:           %d\n", cfg.Watch.Concurrency)
	fmt.Println("\nNotification Settings:")
	fmt.Printf("  Webhook URL:           %s\n", webhook)
	fmt.Printf("  On Achievement:        %v\n", cfg.Notify.OnAchievement)
	fmt.Printf("  On Broken Habit:       %v\n", cfg.Notify.OnBrokenHabit)
}
