package system

import (
	"context"
	"path/filepath"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/config"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage/sqlite"
)

func setupTestDoctorDB(t *testing.T) (*cli.Context, *sqlite.Store) {
	gokeyring.MockInit()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := &cli.Context{
		Store:  store,
		Config: config.Default(),
		Ctx:    context.Background(),
	}
	return ctx, store
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, _ := setupTestDoctorDB(t)

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v", err)
	}
}

func TestDoctorCmd_UninitializedDB(t *testing.T) {
	ctx := &cli.Context{
		Store:  sqlite.NewStore(filepath.Join(t.TempDir(), "missing.db")),
		Config: config.Default(),
		Ctx:    context.Background(),
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail when the database was never initialized")
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, store := setupTestDoctorDB(t)

	db := store.DB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to insert corrupted schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail with corrupted schema")
	}
}

func TestCheckMigrationsComplete_Incomplete(t *testing.T) {
	ctx, store := setupTestDoctorDB(t)

	if _, err := store.DB().Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}

	if err := checkMigrationsComplete(ctx); err == nil {
		t.Error("checkMigrationsComplete should fail with incomplete migrations")
	}
}

func TestCheckValidation(t *testing.T) {
	tests := []struct {
		name    string
		item    models.Item
		wantErr bool
	}{
		{
			name:    "valid habit",
			item:    models.Item{ID: "h1", UserID: "u1", Title: "Read", Color: "primary", Frequency: models.FrequencyDaily, GoalValue: 21, Unit: models.UnitDays},
			wantErr: false,
		},
		{
			name:    "goal below minimum",
			item:    models.Item{ID: "h1", UserID: "u1", Title: "Read", Color: "primary", Frequency: models.FrequencyDaily, GoalValue: 5, Unit: models.UnitDays},
			wantErr: true,
		},
		{
			name:    "complete flag without reaching goal",
			item:    models.Item{ID: "t1", UserID: "u1", Title: "Water", Color: "blue", IsTask: true, Frequency: models.FrequencyOnce, GoalValue: 10, CurrentValue: 3, IsComplete: true, Unit: models.UnitLiters},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, store := setupTestDoctorDB(t)
			bg := context.Background()
			if err := store.CreateProfile(bg, models.Profile{ID: "p1", UserID: "u1", Name: "Ana"}); err != nil {
				t.Fatal(err)
			}
			if err := store.AddItem(bg, tt.item); err != nil {
				t.Fatal(err)
			}

			err := checkValidation(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkValidation() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckCompletionDuplicates(t *testing.T) {
	ctx, store := setupTestDoctorDB(t)
	bg := context.Background()

	if err := store.AddItem(bg, models.Item{ID: "h1", UserID: "u1", Title: "Read", Color: "primary", Frequency: models.FrequencyDaily, GoalValue: 21, Unit: models.UnitDays}); err != nil {
		t.Fatal(err)
	}
	if err := store.AddCompletion(bg, models.Completion{ID: "c1", ItemID: "h1", UserID: "u1", Day: "2026-03-01", Value: 1}); err != nil {
		t.Fatal(err)
	}
	if err := checkCompletionDuplicates(ctx); err != nil {
		t.Fatalf("single completion reported as duplicate: %v", err)
	}

	if err := store.AddCompletion(bg, models.Completion{ID: "c2", ItemID: "h1", UserID: "u1", Day: "2026-03-01", Value: 1}); err != nil {
		t.Fatal(err)
	}
	if err := checkCompletionDuplicates(ctx); err == nil {
		t.Error("expected duplicate completions to be reported")
	}
}

func TestCheckClockTimezone(t *testing.T) {
	ctx := &cli.Context{Config: config.Default()}
	if err := checkClockTimezone(ctx); err != nil {
		t.Errorf("clock/timezone check failed: %v", err)
	}

	ctx.Config.Timezone = "Mars/Olympus"
	if err := checkClockTimezone(ctx); err == nil {
		t.Error("expected unknown timezone to fail")
	}
}
