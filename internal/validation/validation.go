package validation

import (
	"fmt"
	"strings"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/constants"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictEmptyTitle        ConflictType = "empty_title"
	ConflictGoalTooLow        ConflictType = "goal_too_low"
	ConflictInvalidUnit       ConflictType = "invalid_unit"
	ConflictInvalidColor      ConflictType = "invalid_color"
	ConflictNegativeValue     ConflictType = "negative_value"
	ConflictDuplicateTitle    ConflictType = "duplicate_title"
	ConflictCompletionFlag    ConflictType = "completion_flag_mismatch"
	ConflictMissingLastDate   ConflictType = "missing_last_completed_date"
	ConflictInvalidDate       ConflictType = "invalid_date"
	ConflictBrokenTask        ConflictType = "broken_task"
	ConflictFutureCompletion  ConflictType = "future_completion"
	ConflictStreakWithoutDate ConflictType = "streak_without_date"
)

// Conflict is one problem found on an item or profile
type Conflict struct {
	Type        ConflictType
	Description string
	ItemIDs     []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Has reports whether a conflict of type ct was found
func (vr *ValidationResult) Has(ct ConflictType) bool {
	for _, c := range vr.Conflicts {
		if c.Type == ct {
			return true
		}
	}
	return false
}

// Err folds the conflicts into a single error, nil when there are none
func (vr *ValidationResult) Err() error {
	if !vr.HasConflicts() {
		return nil
	}
	msgs := make([]string, 0, len(vr.Conflicts))
	for _, c := range vr.Conflicts {
		msgs = append(msgs, c.Description)
	}
	return fmt.Errorf("invalid item: %s", strings.Join(msgs, "; "))
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

func (vr *ValidationResult) add(ct ConflictType, desc string, ids ...string) {
	vr.Conflicts = append(vr.Conflicts, Conflict{Type: ct, Description: desc, ItemIDs: ids})
}

// Validator checks items against the canonical rule set
type Validator struct {
	minGoalDays int
}

// New creates a Validator. Habits need a goal of at least minGoalDays days;
// a non-positive value falls back to the default.
func New(minGoalDays int) *Validator {
	if minGoalDays <= 0 {
		minGoalDays = constants.DefaultHabitMinGoalDays
	}
	return &Validator{minGoalDays: minGoalDays}
}

// MinGoalDays returns the habit goal minimum in force
func (v *Validator) MinGoalDays() int {
	return v.minGoalDays
}

// ValidateItem checks a new or edited item before it is written
func (v *Validator) ValidateItem(item models.Item) ValidationResult {
	var result ValidationResult

	if strings.TrimSpace(item.Title) == "" {
		result.add(ConflictEmptyTitle, "title cannot be empty", item.ID)
	}

	if item.IsTask {
		if item.GoalValue <= 0 {
			result.add(ConflictGoalTooLow, fmt.Sprintf("task goal must be positive, got %d", item.GoalValue), item.ID)
		}
	} else if item.GoalValue < v.minGoalDays {
		result.add(ConflictGoalTooLow,
			fmt.Sprintf("habit goal must be at least %d days, got %d", v.minGoalDays, item.GoalValue), item.ID)
	}

	if !item.Unit.Valid() {
		result.add(ConflictInvalidUnit, fmt.Sprintf("unit %q is not one of %v", item.Unit, models.Units()), item.ID)
	}
	if !item.Color.Valid() {
		result.add(ConflictInvalidColor, fmt.Sprintf("color %q is not a palette name or #rrggbb", item.Color), item.ID)
	}
	if item.CurrentValue < 0 {
		result.add(ConflictNegativeValue, fmt.Sprintf("current value cannot be negative, got %d", item.CurrentValue), item.ID)
	}

	return result
}

// ValidateItems audits stored items for state that the engine would never produce,
// as of today.
func (v *Validator) ValidateItems(items []models.Item, today string) ValidationResult {
	var result ValidationResult

	titles := make(map[string]string)
	for _, item := range items {
		label := fmt.Sprintf("%s %q", item.Kind(), item.Title)

		if item.Active() || item.IsTask {
			key := strings.ToLower(strings.TrimSpace(item.Title))
			if prev, ok := titles[key]; ok {
				result.add(ConflictDuplicateTitle, fmt.Sprintf("duplicate title %q", item.Title), prev, item.ID)
			} else {
				titles[key] = item.ID
			}
		}

		if want := item.GoalValue > 0 && item.CurrentValue >= item.GoalValue; item.IsComplete != want {
			result.add(ConflictCompletionFlag,
				fmt.Sprintf("%s: is_complete=%v but %d/%d", label, item.IsComplete, item.CurrentValue, item.GoalValue), item.ID)
		}

		if item.IsTask {
			if item.Broken {
				result.add(ConflictBrokenTask, fmt.Sprintf("%s is flagged broken; only habits can break", label), item.ID)
			}
			continue
		}

		if item.LastCompletedDate == nil {
			if item.CurrentValue > 0 {
				result.add(ConflictMissingLastDate,
					fmt.Sprintf("%s has %d completions but no last completion date", label, item.CurrentValue), item.ID)
			}
			continue
		}
		if !utils.ValidateDay(*item.LastCompletedDate) {
			result.add(ConflictInvalidDate,
				fmt.Sprintf("%s has invalid last completion date %q", label, *item.LastCompletedDate), item.ID)
			continue
		}
		if today != "" && *item.LastCompletedDate > today {
			result.add(ConflictFutureCompletion,
				fmt.Sprintf("%s was completed on %s, after today (%s)", label, *item.LastCompletedDate, today), item.ID)
		}
	}

	return result
}

// ValidateProfile audits a profile aggregate
func (v *Validator) ValidateProfile(p models.Profile) ValidationResult {
	var result ValidationResult
	if p.Streak > 0 && p.LastCompletionDate == nil {
		result.add(ConflictStreakWithoutDate, fmt.Sprintf("streak is %d but no completion date is recorded", p.Streak))
	}
	if p.LastCompletionDate != nil && !utils.ValidateDay(*p.LastCompletionDate) {
		result.add(ConflictInvalidDate, fmt.Sprintf("invalid last completion date %q", *p.LastCompletionDate))
	}
	if p.Streak < 0 || p.TotalHabitsCompleted < 0 {
		result.add(ConflictNegativeValue, "streak counters cannot be negative")
	}
	return result
}
