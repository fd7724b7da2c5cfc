package habits

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/config"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, string) {
	bg := context.Background()
	dir := t.TempDir()
	store := sqlite.NewStore(filepath.Join(dir, "test.db"))
	if err := store.Init(bg); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx, err := cli.NewContext(bg, store, config.Default(), filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	profile, err := ctx.Engine.CreateProfile(bg, "Ana")
	if err != nil {
		t.Fatal(err)
	}
	return ctx, profile.UserID
}

func TestHabitLifecycle(t *testing.T) {
	ctx, user := setupTestDB(t)
	flag := cli.UserFlag{User: user}
	bg := context.Background()

	add := &HabitAddCmd{UserFlag: flag, Title: "Read", Goal: 21, Unit: "days", Color: "primary"}
	if err := add.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := add.Run(ctx); err != nil {
		t.Fatalf("habit add failed: %v", err)
	}

	done := &HabitDoneCmd{UserFlag: flag, Habit: "read"}
	if err := done.Run(ctx); err != nil {
		t.Fatalf("habit done failed: %v", err)
	}
	if err := done.Run(ctx); err != nil {
		t.Fatalf("second habit done failed: %v", err)
	}

	habits, err := ctx.Store.ListItems(bg, user, storage.Habits())
	if err != nil || len(habits) != 1 {
		t.Fatalf("expected one habit, got %d (err=%v)", len(habits), err)
	}
	if habits[0].CurrentValue != 1 {
		t.Errorf("CurrentValue = %d, want 1 after two check-ins on the same day", habits[0].CurrentValue)
	}

	profile, err := ctx.Store.GetProfile(bg, user)
	if err != nil {
		t.Fatal(err)
	}
	if profile.Streak != 1 || profile.TotalHabitsCompleted != 1 {
		t.Errorf("profile after completing every habit: streak %d total %d, want 1/1", profile.Streak, profile.TotalHabitsCompleted)
	}

	newTitle := "Read books"
	if err := (&HabitEditCmd{UserFlag: flag, Habit: habits[0].ID, Title: &newTitle}).Run(ctx); err != nil {
		t.Fatalf("habit edit failed: %v", err)
	}
	if err := (&HabitListCmd{UserFlag: flag, Broken: true}).Run(ctx); err != nil {
		t.Errorf("habit list failed: %v", err)
	}
	if err := (&HabitLogCmd{UserFlag: flag, Days: 7}).Run(ctx); err != nil {
		t.Errorf("habit log failed: %v", err)
	}

	if err := (&HabitDeleteCmd{UserFlag: flag, Habit: "Read books"}).Run(ctx); err != nil {
		t.Fatalf("habit delete failed: %v", err)
	}
	habits, err = ctx.Store.ListItems(bg, user, storage.Habits())
	if err != nil || len(habits) != 0 {
		t.Errorf("expected no habits after delete, got %d (err=%v)", len(habits), err)
	}
}

func TestHabitAddCmd_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     HabitAddCmd
		wantErr bool
	}{
		{name: "valid", cmd: HabitAddCmd{Title: "Read", Goal: 21}},
		{name: "blank title", cmd: HabitAddCmd{Title: "  ", Goal: 21}, wantErr: true},
		{name: "zero goal", cmd: HabitAddCmd{Title: "Read", Goal: 0}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHabitAddCmd_RejectsShortGoal(t *testing.T) {
	ctx, user := setupTestDB(t)

	cmd := &HabitAddCmd{UserFlag: cli.UserFlag{User: user}, Title: "Stretch", Goal: 5, Unit: "days", Color: "primary"}
	if err := cmd.Run(ctx); err == nil {
		t.Error("expected goal below habits.min_goal_days to be rejected")
	}
}

func TestHabitLogCmd_Validate(t *testing.T) {
	for _, days := range []int{0, 91} {
		if err := (&HabitLogCmd{Days: days}).Validate(); err == nil {
			t.Errorf("Validate() accepted %d days", days)
		}
	}
}

type failingIncrementStore struct {
	storage.Provider
}

func (s failingIncrementStore) IncrementHabit(context.Context, string, string, string) (bool, error) {
	return false, errors.New("database is locked")
}

// captureStdout returns everything fn writes to os.Stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestHabitDoneCmd_FailedWriteIsNotReportedAsDone(t *testing.T) {
	base, user := setupTestDB(t)
	bg := context.Background()

	if _, _, err := base.Engine.CreateItem(bg, models.Item{UserID: user, Title: "Read", GoalValue: 21, Unit: models.UnitDays, Color: "primary"}); err != nil {
		t.Fatal(err)
	}

	ctx, err := cli.NewContext(bg, failingIncrementStore{Provider: base.Store}, config.Default(), base.ConfigPath)
	if err != nil {
		t.Fatal(err)
	}

	var runErr error
	out := captureStdout(t, func() {
		runErr = (&HabitDoneCmd{UserFlag: cli.UserFlag{User: user}, Habit: "Read"}).Run(ctx)
	})
	if runErr != nil {
		t.Fatalf("habit done should swallow the store failure: %v", runErr)
	}
	if strings.Contains(out, "Marked") {
		t.Errorf("output reports success after a failed write:\n%s", out)
	}
	if !strings.Contains(out, "Could not record Read") || !strings.Contains(out, "database is locked") {
		t.Errorf("expected a failure notice with the warning, got:\n%s", out)
	}

	habits, err := base.Store.ListItems(bg, user, storage.Habits())
	if err != nil || len(habits) != 1 {
		t.Fatalf("expected one habit, got %d (err=%v)", len(habits), err)
	}
	if habits[0].CurrentValue != 0 {
		t.Errorf("CurrentValue = %d, want 0", habits[0].CurrentValue)
	}
}
