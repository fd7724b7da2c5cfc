package system

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/config"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage/sqlite"
)

func setupTestDebugDB(t *testing.T) *cli.Context {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	bg := context.Background()
	if err := store.CreateProfile(bg, models.Profile{ID: "p1", UserID: "u1", Name: "Ana"}); err != nil {
		t.Fatal(err)
	}
	if err := store.AddItem(bg, models.Item{ID: "h1", UserID: "u1", Title: "Read", Color: "primary", Frequency: models.FrequencyDaily, GoalValue: 21, Unit: models.UnitDays}); err != nil {
		t.Fatal(err)
	}

	return &cli.Context{
		Store:  store,
		Config: config.Default(),
		Ctx:    bg,
	}
}

func TestDebugDBPathCmd(t *testing.T) {
	ctx := setupTestDebugDB(t)

	if err := (&DebugDBPathCmd{}).Run(ctx); err != nil {
		t.Errorf("debug db-path command failed: %v", err)
	}
}

func TestDebugDumpProfileCmd(t *testing.T) {
	ctx := setupTestDebugDB(t)

	tests := []struct {
		name    string
		user    string
		wantErr bool
	}{
		{name: "existing", user: "u1", wantErr: false},
		{name: "missing", user: "nobody", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &DebugDumpProfileCmd{UserFlag: cli.UserFlag{User: tt.user}}
			err := cmd.Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDebugDumpItemCmd(t *testing.T) {
	ctx := setupTestDebugDB(t)

	tests := []struct {
		name    string
		user    string
		id      string
		wantErr bool
	}{
		{name: "existing", user: "u1", id: "h1", wantErr: false},
		{name: "missing item", user: "u1", id: "nope", wantErr: true},
		{name: "other user", user: "u2", id: "h1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &DebugDumpItemCmd{UserFlag: cli.UserFlag{User: tt.user}, ID: tt.id}
			err := cmd.Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDebugDumpListsAndConfig(t *testing.T) {
	ctx := setupTestDebugDB(t)
	user := cli.UserFlag{User: "u1"}

	if err := (&DebugDumpItemsCmd{UserFlag: user}).Run(ctx); err != nil {
		t.Errorf("dump-items failed: %v", err)
	}
	if err := (&DebugDumpAchievementsCmd{UserFlag: user}).Run(ctx); err != nil {
		t.Errorf("dump-achievements failed: %v", err)
	}

	ctx.Config.Notify.Secret = "hidden"
	if err := (&DebugDumpConfigCmd{}).Run(ctx); err != nil {
		t.Errorf("dump-config failed: %v", err)
	}
	if ctx.Config.Notify.Secret != "hidden" {
		t.Error("dump-config must not modify the live config")
	}
}
