// Package config loads habitus settings from a YAML file with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/constants"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/utils"
)

// HabitsConfig holds the canonical habit rule set.
type HabitsConfig struct {
	// MinGoalDays is the smallest goal a recurring habit may be created with.
	MinGoalDays int `mapstructure:"min_goal_days" yaml:"min_goal_days"`
}

// AchievementsConfig controls how unlocked achievements react to regressed stats.
type AchievementsConfig struct {
	// FreezeUnlocked keeps unlocked achievements at 100 even after the stat regresses.
	FreezeUnlocked bool `mapstructure:"freeze_unlocked" yaml:"freeze_unlocked"`
}

// WatchConfig controls the background maintenance daemon.
type WatchConfig struct {
	Schedule    string `mapstructure:"schedule" yaml:"schedule"`
	Concurrency int    `mapstructure:"concurrency" yaml:"concurrency"`
}

// NotifyConfig configures the outbound webhook.
type NotifyConfig struct {
	WebhookURL    string `mapstructure:"webhook_url" yaml:"webhook_url"`
	Secret        string `mapstructure:"secret" yaml:"secret"`
	OnAchievement bool   `mapstructure:"on_achievement" yaml:"on_achievement"`
	OnBrokenHabit bool   `mapstructure:"on_broken_habit" yaml:"on_broken_habit"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database     string             `mapstructure:"database" yaml:"database"`
	Timezone     string             `mapstructure:"timezone" yaml:"timezone"`
	Debug        bool               `mapstructure:"debug" yaml:"debug"`
	Habits       HabitsConfig       `mapstructure:"habits" yaml:"habits"`
	Achievements AchievementsConfig `mapstructure:"achievements" yaml:"achievements"`
	Watch        WatchConfig        `mapstructure:"watch" yaml:"watch"`
	Notify       NotifyConfig       `mapstructure:"notify" yaml:"notify"`
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// DefaultConfigPath returns ~/.config/habitus/config.yaml.
func DefaultConfigPath() string {
	return ExpandHome(constants.DefaultConfigFile)
}

// Default returns the configuration used when no file is present.
func Default() *AppConfig {
	return &AppConfig{
		Database: constants.DefaultConfigPath,
		Timezone: constants.DefaultTimezone,
		Habits: HabitsConfig{
			MinGoalDays: constants.DefaultHabitMinGoalDays,
		},
		Achievements: AchievementsConfig{
			FreezeUnlocked: constants.DefaultAchievementsFreeze,
		},
		Watch: WatchConfig{
			Schedule:    constants.DefaultWatchSchedule,
			Concurrency: constants.DefaultWatchConcurrency,
		},
		Notify: NotifyConfig{
			OnAchievement: constants.DefaultNotifyOnAchievement,
			OnBrokenHabit: constants.DefaultNotifyOnBrokenHabit,
		},
	}
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault(constants.SettingDatabase, def.Database)
	v.SetDefault(constants.SettingTimezone, def.Timezone)
	v.SetDefault(constants.SettingDebug, def.Debug)
	v.SetDefault(constants.SettingHabitMinGoalDays, def.Habits.MinGoalDays)
	v.SetDefault(constants.SettingAchievementsFreeze, def.Achievements.FreezeUnlocked)
	v.SetDefault(constants.SettingWatchSchedule, def.Watch.Schedule)
	v.SetDefault(constants.SettingWatchConcurrency, def.Watch.Concurrency)
	v.SetDefault(constants.SettingNotifyWebhookURL, def.Notify.WebhookURL)
	v.SetDefault(constants.SettingNotifySecret, def.Notify.Secret)
	v.SetDefault(constants.SettingNotifyOnAchievement, def.Notify.OnAchievement)
	v.SetDefault(constants.SettingNotifyOnBrokenHabit, def.Notify.OnBrokenHabit)
	return v
}

// Load reads configuration from the YAML file at path. A missing file is not an error:
// defaults (plus any HABITUS_* environment overrides) are returned instead.
func Load(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *AppConfig) Validate() error {
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	if c.Habits.MinGoalDays < 1 {
		return fmt.Errorf("habits.min_goal_days must be at least 1, got %d", c.Habits.MinGoalDays)
	}
	if c.Watch.Concurrency < 1 {
		return fmt.Errorf("watch.concurrency must be at least 1, got %d", c.Watch.Concurrency)
	}
	if strings.TrimSpace(c.Watch.Schedule) == "" {
		return errors.New("watch.schedule cannot be empty")
	}
	return nil
}

// Save writes cfg to a YAML file at path, creating parent directories if needed.
func Save(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set(constants.SettingDatabase, cfg.Database)
	v.Set(constants.SettingTimezone, cfg.Timezone)
	v.Set(constants.SettingDebug, cfg.Debug)
	v.Set("habits", cfg.Habits)
	v.Set("achievements", cfg.Achievements)
	v.Set("watch", cfg.Watch)
	// the secret lives in the keyring, never on disk
	v.Set("notify", map[string]interface{}{
		"webhook_url":     cfg.Notify.WebhookURL,
		"on_achievement":  cfg.Notify.OnAchievement,
		"on_broken_habit": cfg.Notify.OnBrokenHabit,
	})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
