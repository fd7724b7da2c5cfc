package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli/habits"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli/progress"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli/settings"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli/system"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli/tasks"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli/users"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/config"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/constants"
	apperrors "github.com/ymhp64t9bz-png/habitus-strict-html/internal/errors"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/keyring"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/logger"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage/postgres"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `name:"db" help:"SQLite path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use .pgpass, PGPASSWORD or the OS keyring instead." env:"HABITUS_DB_CONNECTION"`
	Config  string `help:"Config file path." type:"path" default:"${config_file}"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init    system.InitCmd    `cmd:"" help:"Initialize habitus storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the database connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability." default:"1"`
		Secret system.KeyringSecretCmd `cmd:"" help:"Manage the webhook secret."`
	} `cmd:"" help:"Manage credentials stored in the OS keyring."`

	User         users.UserCmd            `cmd:"" help:"Manage profiles."`
	Habit        habits.HabitCmd          `cmd:"" help:"Manage habits and daily check-ins."`
	Task         tasks.TaskCmd            `cmd:"" help:"Manage quantity tasks."`
	Streak       progress.StreakCmd       `cmd:"" help:"Show streak, today's progress and trophies."`
	Achievements progress.AchievementsCmd `cmd:"" help:"List achievements and their progress."`
	Session      progress.SessionCmd      `cmd:"" help:"Run session-start maintenance for a user."`

	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Watch    system.WatchCmd      `cmd:"" help:"Run maintenance for every user on a schedule."`
	Notify   system.NotifyCmd     `cmd:"" help:"Send a test webhook notification."`
	DebugCmd system.DebugCmd      `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
}

// Commands that manage their own storage lifecycle or never touch it.
var skipLoad = map[string]bool{
	"init":     true,
	"doctor":   true,
	"keyring":  true,
	"settings": true,
	"notify":   true,
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit streaks, quantity tasks and achievements"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_file": config.DefaultConfigPath(),
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: filepath.Dir(CLI.Config)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		apperrors.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	command := strings.Fields(kctx.Command())[0]
	if !skipLoad[command] {
		if err := store.Load(ctx); err != nil {
			apperrors.Fatal(err)
		}
	}

	appCtx, err := cli.NewContext(ctx, store, cfg, CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}

	logger.Debug("Running command", "command", kctx.Command(), "store", store.GetConfigPath())
	if err := kctx.Run(appCtx); err != nil {
		store.Close()
		apperrors.Fatal(err)
	}
}

// openStore resolves the database in order: --db flag or HABITUS_DB_CONNECTION, the
// config file, the OS keyring, then the default SQLite path.
func openStore(cfg *config.AppConfig) (storage.Provider, error) {
	if CLI.DB != "" {
		return cli.OpenStore(CLI.DB)
	}
	if cfg.Database != "" && cfg.Database != constants.DefaultConfigPath {
		return cli.OpenStore(cfg.Database)
	}

	// Keyring entries may carry a password; the keyring itself is the secure store.
	connStr, err := keyring.GetConnectionString()
	switch {
	case err == nil && connStr != "":
		logger.Debug("Using connection string from OS keyring")
		return postgres.New(connStr), nil
	case err != nil && !errors.Is(err, keyring.ErrNotFound):
		logger.Debug("OS keyring unavailable", "error", err)
	}

	return cli.OpenStore(constants.DefaultConfigPath)
}
