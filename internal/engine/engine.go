// Package engine holds the streak and achievement rules: progress percentages, broken
// habit detection, daily streak advancement and achievement evaluation, plus the
// orchestration that runs them against a storage.Provider.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/constants"
	apperrors "github.com/ymhp64t9bz-png/habitus-strict-html/internal/errors"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/logger"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/utils"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/validation"
)

// EventKind identifies what a notification is about.
type EventKind string

const (
	EventAchievementUnlocked EventKind = "achievement_unlocked"
	EventHabitBroken         EventKind = "habit_broken"
)

// Event is handed to the Notifier after the state change it describes is persisted.
type Event struct {
	Kind        EventKind
	UserID      string
	Day         string
	Achievement *Achievement
	Item        *models.Item
	At          time.Time
}

// Notifier receives unlock and broken-habit events. Delivery failures are logged only.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Options configures an Engine. Zero values pick sensible defaults.
type Options struct {
	Location       *time.Location
	Now            func() time.Time
	MinGoalDays    int
	FreezeUnlocked bool
	Notifier       Notifier
}

// Engine runs the user-facing operations. Each operation computes today once, in the
// configured location, and threads it through every component it calls.
type Engine struct {
	store     storage.Provider
	detector  *Detector
	streaks   *Streaks
	evaluator *Evaluator
	validator *validation.Validator
	notifier  Notifier
	loc       *time.Location
	now       func() time.Time
	newID     func() string
}

func New(store storage.Provider, opts Options) *Engine {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	evaluator := NewEvaluator(store, opts.FreezeUnlocked)
	evaluator.now = opts.Now

	return &Engine{
		store:     store,
		detector:  NewDetector(store),
		streaks:   NewStreaks(store, evaluator),
		evaluator: evaluator,
		validator: validation.New(opts.MinGoalDays),
		notifier:  opts.Notifier,
		loc:       opts.Location,
		now:       opts.Now,
		newID:     uuid.NewString,
	}
}

// Today returns the current calendar day in the engine's location.
func (e *Engine) Today() string {
	return utils.FormatDay(e.now().In(e.loc))
}

// Store exposes the provider the engine writes through.
func (e *Engine) Store() storage.Provider {
	return e.store
}

// Validator exposes the item rule set in force.
func (e *Engine) Validator() *validation.Validator {
	return e.validator
}

// CreateProfile registers a new user with an empty streak.
func (e *Engine) CreateProfile(ctx context.Context, name string) (models.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Profile{}, errors.New("profile name cannot be empty")
	}
	p := models.Profile{
		ID:     e.newID(),
		UserID: e.newID(),
		Name:   name,
	}
	if err := e.store.CreateProfile(ctx, p); err != nil {
		return models.Profile{}, err
	}
	return e.store.GetProfile(ctx, p.UserID)
}

// CreateItem validates and stores a new habit or task. Progress fields are reset, and
// missing display fields get defaults. Creating a habit re-evaluates achievements so
// the first-habit milestone unlocks immediately.
func (e *Engine) CreateItem(ctx context.Context, item models.Item) (models.Item, []AchievementChange, error) {
	if _, err := e.store.GetProfile(ctx, item.UserID); err != nil {
		return models.Item{}, nil, err
	}

	item.ID = e.newID()
	item.CurrentValue = 0
	item.IsComplete = false
	item.Broken = false
	item.LastCompletedDate = nil
	item.Title = strings.TrimSpace(item.Title)
	if item.Icon == "" && !item.IsTask {
		item.Icon = constants.DefaultHabitIcon
	}
	if item.Color == "" {
		item.Color = models.Color(constants.DefaultColor)
	}
	if item.Unit == "" {
		item.Unit = models.UnitDays
		if item.IsTask {
			item.Unit = models.UnitUnits
		}
	}
	item.Frequency = models.FrequencyDaily
	if item.IsTask {
		item.Frequency = models.FrequencyOnce
	}

	result := e.validator.ValidateItem(item)
	if err := result.Err(); err != nil {
		return models.Item{}, nil, err
	}

	if err := e.store.AddItem(ctx, item); err != nil {
		return models.Item{}, nil, err
	}
	stored, err := e.store.GetItem(ctx, item.UserID, item.ID)
	if err != nil {
		return models.Item{}, nil, err
	}
	if stored.IsTask {
		return stored, nil, nil
	}

	changes, err := e.evaluateCurrent(ctx, item.UserID)
	if err != nil {
		logger.Warn("Achievement evaluation failed after habit creation", "user", item.UserID, "habit", item.ID, "error", err)
	}
	e.notifyUnlocks(ctx, item.UserID, e.Today(), changes)
	return stored, changes, nil
}

// CompletionResult describes one CompleteHabit call.
type CompletionResult struct {
	Item     models.Item
	Progress int
	// Recorded is false when the increment itself failed and nothing was stored.
	Recorded     bool
	AlreadyDone  bool
	Streak       StreakOutcome
	Achievements []AchievementChange
	// Warnings collects persistence failures that were logged and swallowed.
	Warnings []error
}

// CompleteHabit records today's completion of a habit and runs the streak updater.
//
// Only guard failures are returned as errors: unknown item, a task, or a broken habit.
// Failures in later stages are logged and reported through Warnings; the stored state
// stays whatever the last successful write left.
func (e *Engine) CompleteHabit(ctx context.Context, userID, itemID string) (CompletionResult, error) {
	today := e.Today()
	var res CompletionResult

	item, err := e.store.GetItem(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return res, err
		}
		return res, e.swallow(&res.Warnings, "load habit", userID, itemID, err)
	}
	if item.IsTask {
		return res, fmt.Errorf("%q: %w", item.Title, apperrors.ErrNotAHabit)
	}
	if item.Broken {
		return res, fmt.Errorf("%q: %w", item.Title, apperrors.ErrHabitBroken)
	}

	incremented, err := e.store.IncrementHabit(ctx, userID, itemID, today)
	if err != nil {
		res.Item = item
		res.Progress = ComputeProgress(item, today)
		return res, e.swallow(&res.Warnings, "increment habit", userID, itemID, err)
	}
	res.Recorded = true
	res.AlreadyDone = !incremented

	if incremented {
		if err := e.store.AddCompletion(ctx, models.Completion{
			ID:     e.newID(),
			ItemID: itemID,
			UserID: userID,
			Day:    today,
			Value:  1,
		}); err != nil {
			_ = e.swallow(&res.Warnings, "record completion", userID, itemID, err)
		}
	}

	if fresh, err := e.store.GetItem(ctx, userID, itemID); err == nil {
		item = fresh
	} else {
		_ = e.swallow(&res.Warnings, "reload habit", userID, itemID, err)
	}
	if !incremented && item.Broken {
		return res, fmt.Errorf("%q: %w", item.Title, apperrors.ErrHabitBroken)
	}
	res.Item = item
	res.Progress = ComputeProgress(item, today)

	// Runs on repeat calls too, so an earlier failed streak write converges.
	outcome, err := e.streaks.OnHabitCompleted(ctx, userID, today)
	res.Streak = outcome
	res.Achievements = outcome.Changes
	if err != nil {
		_ = e.swallow(&res.Warnings, "update streak", userID, itemID, err)
	}
	e.notifyUnlocks(ctx, userID, today, outcome.Changes)

	return res, nil
}

// TaskResult describes one AddTaskProgress call.
type TaskResult struct {
	Item     models.Item
	Progress int
	Warnings []error
}

// AddTaskProgress adds amount units to a task. Tasks never touch the streak.
func (e *Engine) AddTaskProgress(ctx context.Context, userID, itemID string, amount int) (TaskResult, error) {
	var res TaskResult
	if amount <= 0 {
		return res, apperrors.ErrInvalidAmount
	}
	today := e.Today()

	item, err := e.store.GetItem(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return res, err
		}
		return res, e.swallow(&res.Warnings, "load task", userID, itemID, err)
	}
	if !item.IsTask {
		return res, fmt.Errorf("%q: %w", item.Title, apperrors.ErrNotATask)
	}
	res.Item = item
	res.Progress = ComputeProgress(item, today)

	ok, err := e.store.AddTaskProgress(ctx, userID, itemID, amount)
	if err != nil {
		return res, e.swallow(&res.Warnings, "add task progress", userID, itemID, err)
	}
	if !ok {
		return res, fmt.Errorf("task %s: %w", itemID, apperrors.ErrNotFound)
	}

	if err := e.store.AddCompletion(ctx, models.Completion{
		ID:     e.newID(),
		ItemID: itemID,
		UserID: userID,
		Day:    today,
		Value:  amount,
	}); err != nil {
		_ = e.swallow(&res.Warnings, "record task progress", userID, itemID, err)
	}

	if fresh, err := e.store.GetItem(ctx, userID, itemID); err == nil {
		res.Item = fresh
	} else {
		_ = e.swallow(&res.Warnings, "reload task", userID, itemID, err)
		res.Item.CurrentValue += amount
		res.Item.IsComplete = res.Item.CurrentValue >= res.Item.GoalValue
	}
	res.Progress = ComputeProgress(res.Item, today)
	return res, nil
}

// ItemEdit lists the fields EditItem may change. Nil fields are left alone.
type ItemEdit struct {
	Title     *string
	Icon      *string
	Color     *models.Color
	Unit      *models.Unit
	GoalValue *int
}

// EditItem changes the display fields and goal of an item. Progress, completion dates
// and the broken flag are never touched.
func (e *Engine) EditItem(ctx context.Context, userID, itemID string, edit ItemEdit) (models.Item, error) {
	item, err := e.store.GetItem(ctx, userID, itemID)
	if err != nil {
		return models.Item{}, err
	}
	if edit.Title != nil {
		item.Title = strings.TrimSpace(*edit.Title)
	}
	if edit.Icon != nil {
		item.Icon = *edit.Icon
	}
	if edit.Color != nil {
		item.Color = *edit.Color
	}
	if edit.Unit != nil {
		item.Unit = *edit.Unit
	}
	if edit.GoalValue != nil {
		item.GoalValue = *edit.GoalValue
	}

	result := e.validator.ValidateItem(item)
	if err := result.Err(); err != nil {
		return models.Item{}, err
	}
	if err := e.store.UpdateItem(ctx, item); err != nil {
		return models.Item{}, err
	}
	return e.store.GetItem(ctx, userID, itemID)
}

// DeleteItem removes a habit or task and its history. Deletion is the only way out of
// the broken state.
func (e *Engine) DeleteItem(ctx context.Context, userID, itemID string) error {
	return e.store.DeleteItem(ctx, userID, itemID)
}

// SessionReport summarizes the maintenance run at session start.
type SessionReport struct {
	Today        string
	Checked      int
	Broken       []models.Item
	StreakReset  bool
	Achievements []AchievementChange
	Warnings     []error
}

// StartSession repairs stale state before a user works with their habits: it breaks
// habits that missed a day, zeroes a streak that can no longer continue, and brings
// achievement rows in line with the resulting stats.
func (e *Engine) StartSession(ctx context.Context, userID string) (SessionReport, error) {
	today := e.Today()
	report := SessionReport{Today: today}

	if _, err := e.store.GetProfile(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return report, err
		}
		return report, e.swallow(&report.Warnings, "load profile", userID, "", err)
	}

	scan, err := e.detector.Scan(ctx, userID, today)
	report.Checked = scan.Checked
	report.Broken = scan.Broken
	if err != nil {
		_ = e.swallow(&report.Warnings, "broken habit scan", userID, "", err)
	}
	for i := range scan.Broken {
		e.notify(ctx, Event{Kind: EventHabitBroken, UserID: userID, Day: today, Item: &scan.Broken[i], At: e.now()})
	}

	reset, err := e.streaks.CheckIntegrity(ctx, userID, today)
	report.StreakReset = reset
	if err != nil {
		_ = e.swallow(&report.Warnings, "streak integrity check", userID, "", err)
	}

	changes, err := e.evaluateCurrent(ctx, userID)
	report.Achievements = changes
	if err != nil {
		_ = e.swallow(&report.Warnings, "achievement evaluation", userID, "", err)
	}
	e.notifyUnlocks(ctx, userID, today, changes)

	return report, nil
}

// ItemView pairs an item with its display progress for today.
type ItemView struct {
	models.Item
	Progress int
}

// AchievementStatus is a catalog entry joined with the user's row, if any.
type AchievementStatus struct {
	Achievement
	Progress     int
	Recorded     bool
	Unlocked     bool
	EverUnlocked bool
	UnlockedAt   *time.Time
}

// Snapshot is everything a status screen needs for one user.
type Snapshot struct {
	Today        string
	Profile      models.Profile
	Habits       []ItemView
	Tasks        []ItemView
	Tank         int
	Achievements []AchievementStatus
}

// Snapshot reads the current state of a user without modifying it.
func (e *Engine) Snapshot(ctx context.Context, userID string) (Snapshot, error) {
	today := e.Today()
	snap := Snapshot{Today: today}

	profile, err := e.store.GetProfile(ctx, userID)
	if err != nil {
		return snap, err
	}
	snap.Profile = profile

	items, err := e.store.ListItems(ctx, userID, storage.ItemFilter{})
	if err != nil {
		return snap, err
	}
	for _, item := range items {
		view := ItemView{Item: item, Progress: ComputeProgress(item, today)}
		if item.IsTask {
			snap.Tasks = append(snap.Tasks, view)
		} else {
			snap.Habits = append(snap.Habits, view)
		}
	}
	snap.Tank = TankProgress(items)

	rows, err := e.store.ListAchievements(ctx, userID)
	if err != nil {
		return snap, err
	}
	byID := make(map[string]models.AchievementProgress, len(rows))
	for _, r := range rows {
		byID[r.AchievementID] = r
	}
	for _, a := range catalog {
		status := AchievementStatus{Achievement: a}
		if row, ok := byID[a.ID]; ok {
			status.Recorded = true
			status.Progress = row.Progress
			status.Unlocked = row.Unlocked()
			status.EverUnlocked = row.EverUnlocked()
			status.UnlockedAt = row.UnlockedAt
		}
		snap.Achievements = append(snap.Achievements, status)
	}

	return snap, nil
}

// History returns completion rows of an item for the last days days, today included.
func (e *Engine) History(ctx context.Context, userID, itemID string, days int) ([]models.Completion, error) {
	if _, err := e.store.GetItem(ctx, userID, itemID); err != nil {
		return nil, err
	}
	start := ""
	if days > 0 {
		var err error
		start, err = utils.AddDays(e.Today(), -(days - 1))
		if err != nil {
			return nil, err
		}
	}
	return e.store.ListCompletions(ctx, userID, itemID, start, "")
}

func (e *Engine) evaluateCurrent(ctx context.Context, userID string) ([]AchievementChange, error) {
	profile, err := e.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := e.store.CountHabits(ctx, userID)
	if err != nil {
		return nil, err
	}
	return e.evaluator.Evaluate(ctx, userID, models.Stats{
		Streak:               profile.Streak,
		TotalHabitsCompleted: profile.TotalHabitsCompleted,
		HabitsCount:          count,
	})
}

func (e *Engine) notifyUnlocks(ctx context.Context, userID, day string, changes []AchievementChange) {
	for _, a := range Unlocked(changes) {
		a := a
		e.notify(ctx, Event{Kind: EventAchievementUnlocked, UserID: userID, Day: day, Achievement: &a, At: e.now()})
	}
}

func (e *Engine) notify(ctx context.Context, ev Event) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, ev); err != nil {
		logger.Warn("Notification failed", "user", ev.UserID, "kind", ev.Kind, "error", err)
	}
}

// swallow logs a persistence failure and records it as a warning. It returns nil so
// callers can use it directly as their error result.
func (e *Engine) swallow(warnings *[]error, stage, userID, itemID string, err error) error {
	logger.Warn("Engine stage failed", "stage", stage, "user", userID, "habit", itemID, "error", err)
	*warnings = append(*warnings, fmt.Errorf("%s: %w", stage, err))
	return nil
}
