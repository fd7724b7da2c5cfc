package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/engine"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/notifier"
)

type NotifyCmd struct {
	DryRun bool `help:"Print a sample payload to stdout instead of sending it."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	if ctx.Config == nil || ctx.Config.Notify.WebhookURL == "" {
		return errors.New("no webhook configured; set one with 'habitus settings --webhook-url URL'")
	}

	if c.DryRun {
		sample, _ := engine.LookupAchievement("first-check")
		payload := notifier.BuildPayload(engine.Event{
			Kind:        engine.EventAchievementUnlocked,
			UserID:      "sample-user",
			Day:         time.Now().Format("2006-01-02"),
			Achievement: &sample,
			At:          time.Now(),
		})
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		fmt.Printf("[DryRun] POST %s\n%s\n", ctx.Config.Notify.WebhookURL, out)
		return nil
	}

	n := cli.BuildNotifier(ctx.Config.Notify)
	if n == nil {
		return fmt.Errorf("webhook URL %q is not usable", ctx.Config.Notify.WebhookURL)
	}
	if err := n.Test(ctx.Context()); err != nil {
		return fmt.Errorf("failed to send test notification: %w", err)
	}
	fmt.Println(cli.SuccessStyle.Render("✓") + " Test notification delivered to " + ctx.Config.Notify.WebhookURL)
	return nil
}
