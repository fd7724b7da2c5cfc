// Package notifier delivers engine events to an HTTP webhook.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/constants"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/engine"
)

// Config selects the endpoint and which events are sent to it.
type Config struct {
	URL           string
	Secret        string
	OnAchievement bool
	OnBrokenHabit bool
	Timeout       time.Duration
}

type Notifier struct {
	cfg    Config
	client *http.Client
}

// WebhookPayload is the JSON body posted for every event.
type WebhookPayload struct {
	Kind        string              `json:"kind"`
	UserID      string              `json:"user_id"`
	Day         string              `json:"day"`
	Text        string              `json:"text"`
	Achievement *AchievementSummary `json:"achievement,omitempty"`
	Habit       *HabitSummary       `json:"habit,omitempty"`
	At          time.Time           `json:"at"`
}

type AchievementSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level"`
}

type HabitSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CurrentValue int    `json:"current_value"`
	GoalValue    int    `json:"goal_value"`
}

// New validates cfg and returns a webhook notifier.
func New(cfg Config) (*Notifier, error) {
	if err := ValidateURL(cfg.URL); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.NotifyTimeout
	}
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("webhook URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("webhook URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("webhook URL has no host")
	}
	return nil
}

// Wants reports whether the configuration subscribes to kind.
func (n *Notifier) Wants(kind engine.EventKind) bool {
	switch kind {
	case engine.EventAchievementUnlocked:
		return n.cfg.OnAchievement
	case engine.EventHabitBroken:
		return n.cfg.OnBrokenHabit
	default:
		return false
	}
}

// Notify posts ev to the webhook. Events the configuration does not subscribe to are dropped.
func (n *Notifier) Notify(ctx context.Context, ev engine.Event) error {
	if !n.Wants(ev.Kind) {
		return nil
	}
	return n.send(ctx, BuildPayload(ev))
}

// Test sends a fixed payload regardless of event filters.
func (n *Notifier) Test(ctx context.Context) error {
	return n.send(ctx, WebhookPayload{
		Kind: "test",
		Text: "habitus webhook test",
		At:   time.Now().UTC(),
	})
}

// BuildPayload turns an engine event into the wire payload.
func BuildPayload(ev engine.Event) WebhookPayload {
	p := WebhookPayload{
		Kind:   string(ev.Kind),
		UserID: ev.UserID,
		Day:    ev.Day,
		At:     ev.At.UTC(),
	}
	switch {
	case ev.Achievement != nil:
		p.Achievement = &AchievementSummary{
			ID:    ev.Achievement.ID,
			Name:  ev.Achievement.Name,
			Level: string(ev.Achievement.Level),
		}
		p.Text = fmt.Sprintf("Achievement unlocked: %s (%s)", ev.Achievement.Name, ev.Achievement.Level)
	case ev.Item != nil:
		p.Habit = &HabitSummary{
			ID:           ev.Item.ID,
			Title:        ev.Item.Title,
			CurrentValue: ev.Item.CurrentValue,
			GoalValue:    ev.Item.GoalValue,
		}
		p.Text = fmt.Sprintf("Habit broken: %s stopped at %d/%d", ev.Item.Title, ev.Item.CurrentValue, ev.Item.GoalValue)
	}
	return p
}

func (n *Notifier) send(ctx context.Context, payload WebhookPayload) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if n.cfg.Secret != "" {
		req.Header.Set(constants.NotifySecretHeader, n.cfg.Secret)
	}

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
}
