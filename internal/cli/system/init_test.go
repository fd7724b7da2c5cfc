package system

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
	apperrors "github.com/ymhp64t9bz-png/habitus-strict-html/internal/errors"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage/sqlite"
)

func setupTestInitDB(t *testing.T) (*cli.Context, string, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)

	ctx := &cli.Context{
		Store: store,
		Ctx:   context.Background(),
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}

	return ctx, dbPath, cleanup
}

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("init command failed: %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}

	bg := context.Background()
	if err := ctx.Store.CreateProfile(bg, models.Profile{ID: "p1", UserID: "u1", Name: "Ana"}); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init with force failed: %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatalf("database file was not recreated after force")
	}

	_, err := ctx.Store.GetProfile(bg, "u1")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected profile to be wiped, got err=%v", err)
	}
}

func TestInitCmd_ForceWithNonExistentDatabase(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatalf("database file should not exist initially")
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init with force on non-existent database failed: %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created")
	}
}

func TestInitCmd_ForceRefusesSameSource(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	err := (&InitCmd{Force: true, Source: dbPath}).Run(ctx)
	if err == nil {
		t.Fatal("expected error when source equals destination")
	}
}

func TestInitCmd_MigratesFromSource(t *testing.T) {
	bg := context.Background()
	sourcePath := filepath.Join(t.TempDir(), "source.db")
	source := sqlite.NewStore(sourcePath)
	if err := source.Init(bg); err != nil {
		t.Fatalf("failed to init source: %v", err)
	}

	last := "2026-03-01"
	if err := source.CreateProfile(bg, models.Profile{ID: "p1", UserID: "u1", Name: "Ana", Streak: 3, LongestStreak: 5, LastCompletionDate: &last, TotalHabitsCompleted: 9}); err != nil {
		t.Fatal(err)
	}
	habit := models.Item{ID: "h1", UserID: "u1", Title: "Read", Color: "primary", Frequency: models.FrequencyDaily, GoalValue: 21, CurrentValue: 4, LastCompletedDate: &last, Unit: models.UnitDays}
	if err := source.AddItem(bg, habit); err != nil {
		t.Fatal(err)
	}
	if err := source.AddCompletion(bg, models.Completion{ID: "c1", ItemID: "h1", UserID: "u1", Day: last, Value: 1}); err != nil {
		t.Fatal(err)
	}
	if err := source.UpsertAchievement(bg, models.AchievementProgress{ID: "a1", UserID: "u1", AchievementID: "first-check", Progress: 100}); err != nil {
		t.Fatal(err)
	}
	source.Close()

	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{Source: sourcePath}).Run(ctx); err != nil {
		t.Fatalf("init with source failed: %v", err)
	}

	p, err := ctx.Store.GetProfile(bg, "u1")
	if err != nil {
		t.Fatalf("profile not migrated: %v", err)
	}
	if p.Streak != 3 || p.LongestStreak != 5 || p.TotalHabitsCompleted != 9 {
		t.Errorf("profile counters not preserved: %+v", p)
	}

	items, err := ctx.Store.ListItems(bg, "u1", storage.ItemFilter{})
	if err != nil || len(items) != 1 || items[0].CurrentValue != 4 {
		t.Fatalf("items not migrated: %+v, err=%v", items, err)
	}

	history, err := ctx.Store.ListCompletions(bg, "u1", "h1", "", "")
	if err != nil || len(history) != 1 {
		t.Errorf("completions not migrated: %+v, err=%v", history, err)
	}

	rows, err := ctx.Store.ListAchievements(bg, "u1")
	if err != nil || len(rows) != 1 || rows[0].Progress != 100 {
		t.Errorf("achievements not migrated: %+v, err=%v", rows, err)
	}
}
