package storage

import (
	"context"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/migration"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
)

// ItemFilter narrows ListItems. Nil pointers match everything.
type ItemFilter struct {
	IsTask          *bool
	Broken          *bool
	MinCurrentValue int
}

// Habits matches every recurring habit, broken or not.
func Habits() ItemFilter {
	f := false
	return ItemFilter{IsTask: &f}
}

// ActiveHabits matches habits that still count towards the streak.
func ActiveHabits() ItemFilter {
	f := false
	return ItemFilter{IsTask: &f, Broken: &f}
}

// Tasks matches one-off quantity tasks.
func Tasks() ItemFilter {
	t := true
	return ItemFilter{IsTask: &t}
}

// Provider is the persistence port every engine component reads from and writes to.
// All item, completion and achievement operations are scoped to a single owner.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context, logFn func(string)) (int, error)
	SchemaStatus(ctx context.Context) (migration.Status, error)

	// Profiles
	CreateProfile(ctx context.Context, p models.Profile) error
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	// AdvanceStreak sets the streak to newStreak, bumps total_habits_completed and stamps
	// last_completion_date = today, but only while last_completion_date still equals
	// expectedLast. It reports false when another writer got there first.
	AdvanceStreak(ctx context.Context, userID string, expectedLast *string, today string, newStreak int) (bool, error)
	// ResetStreak zeroes a streak whose last_completion_date is older than before.
	ResetStreak(ctx context.Context, userID string, before string) (bool, error)

	// Items
	AddItem(ctx context.Context, item models.Item) error
	GetItem(ctx context.Context, userID, id string) (models.Item, error)
	ListItems(ctx context.Context, userID string, filter ItemFilter) ([]models.Item, error)
	UpdateItem(ctx context.Context, item models.Item) error
	DeleteItem(ctx context.Context, userID, id string) error
	CountHabits(ctx context.Context, userID string) (int, error)
	// IncrementHabit adds one day to an unbroken habit unless it was already completed on today.
	IncrementHabit(ctx context.Context, userID, id, today string) (bool, error)
	// AddTaskProgress adds amount to a task and recomputes is_complete.
	AddTaskProgress(ctx context.Context, userID, id string, amount int) (bool, error)
	// MarkBroken flips a started habit to broken when its last completion is older than before.
	MarkBroken(ctx context.Context, userID, id, before string) (bool, error)

	// Completion history
	AddCompletion(ctx context.Context, c models.Completion) error
	ListCompletions(ctx context.Context, userID, itemID, startDay, endDay string) ([]models.Completion, error)

	// Achievements
	ListAchievements(ctx context.Context, userID string) ([]models.AchievementProgress, error)
	// UpsertAchievement inserts or overwrites the (user, achievement) row. An existing
	// unlocked_at is never cleared.
	UpsertAchievement(ctx context.Context, a models.AchievementProgress) error
	UpdateAchievementProgress(ctx context.Context, userID, achievementID string, progress int) error

	// Utils
	GetConfigPath() string
}
