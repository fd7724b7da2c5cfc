package settings

import (
	"path/filepath"
	"testing"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/config"
)

func setupTestConfig(t *testing.T) *cli.Context {
	path := filepath.Join(t.TempDir(), "config.yaml")
	return &cli.Context{
		Config:     config.Default(),
		ConfigPath: path,
	}
}

func ptr[T any](v T) *T { return &v }

func TestSettingsCmd_List(t *testing.T) {
	ctx := setupTestConfig(t)

	if err := (&SettingsCmd{List: true}).Run(ctx); err != nil {
		t.Errorf("settings list failed: %v", err)
	}
}

func TestSettingsCmd_NoChanges(t *testing.T) {
	ctx := setupTestConfig(t)

	if err := (&SettingsCmd{}).Run(ctx); err != nil {
		t.Errorf("settings without flags failed: %v", err)
	}
}

func TestSettingsCmd_UpdatePersists(t *testing.T) {
	ctx := setupTestConfig(t)

	cmd := &SettingsCmd{
		Timezone:       ptr("Europe/Madrid"),
		MinGoalDays:    ptr(30),
		FreezeUnlocked: ptr(true),
		WebhookURL:     ptr("https://hooks.example.com/habitus"),
		NotifyBroken:   ptr(true),
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	cfg, err := config.Load(ctx.ConfigPath)
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if cfg.Timezone != "Europe/Madrid" {
		t.Errorf("Timezone = %q, want Europe/Madrid", cfg.Timezone)
	}
	if cfg.Habits.MinGoalDays != 30 {
		t.Errorf("MinGoalDays = %d, want 30", cfg.Habits.MinGoalDays)
	}
	if !cfg.Achievements.FreezeUnlocked {
		t.Error("FreezeUnlocked should be true")
	}
	if cfg.Notify.WebhookURL != "https://hooks.example.com/habitus" {
		t.Errorf("WebhookURL = %q", cfg.Notify.WebhookURL)
	}
	if !cfg.Notify.OnBrokenHabit {
		t.Error("OnBrokenHabit should be true")
	}
	if ctx.Config.Habits.MinGoalDays != 30 {
		t.Error("context config should reflect the saved settings")
	}
}

func TestSettingsCmd_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		cmd  *SettingsCmd
	}{
		{name: "unknown timezone", cmd: &SettingsCmd{Timezone: ptr("Nowhere/Land")}},
		{name: "zero min goal", cmd: &SettingsCmd{MinGoalDays: ptr(0)}},
		{name: "zero concurrency", cmd: &SettingsCmd{WatchConcurrency: ptr(0)}},
		{name: "non-http webhook", cmd: &SettingsCmd{WebhookURL: ptr("ftp://example.com")}},
		{name: "empty schedule", cmd: &SettingsCmd{WatchSchedule: ptr(" ")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := setupTestConfig(t)
			if err := tt.cmd.Run(ctx); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSettingsCmd_ClearWebhook(t *testing.T) {
	ctx := setupTestConfig(t)

	if err := (&SettingsCmd{WebhookURL: ptr("http://localhost:9000/hook")}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&SettingsCmd{WebhookURL: ptr("")}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(ctx.ConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Notify.WebhookURL != "" {
		t.Errorf("WebhookURL = %q, want empty", cfg.Notify.WebhookURL)
	}
}
