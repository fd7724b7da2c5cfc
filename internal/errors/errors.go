package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/logger"
)

var (
	// ErrNotFound is returned when a profile, habit or task does not exist for the user
	ErrNotFound = errors.New("not found")
	// ErrHabitBroken is returned when progress is recorded against a broken habit
	ErrHabitBroken = errors.New("habit is broken; delete and recreate it to start over")
	// ErrNotAHabit is returned when a habit-only operation targets a task
	ErrNotAHabit = errors.New("item is a task, not a habit")
	// ErrNotATask is returned when a task-only operation targets a habit
	ErrNotATask = errors.New("item is a habit, not a task")
	// ErrInvalidAmount is returned when task progress is not a positive amount
	ErrInvalidAmount = errors.New("progress amount must be positive")
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}

// IsGuard reports whether err is one of the caller-facing guard failures, as opposed to a
// persistence failure that the engine logs and swallows.
func IsGuard(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrHabitBroken) ||
		errors.Is(err, ErrNotAHabit) ||
		errors.Is(err, ErrNotATask) ||
		errors.Is(err, ErrInvalidAmount)
}
