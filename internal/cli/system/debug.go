package system

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
	apperrors "github.com/ymhp64t9bz-png/habitus-strict-html/internal/errors"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage"
)

type DebugCmd struct {
	DBPath           *DebugDBPathCmd           `cmd:"" help:"Show database path."`
	DumpProfile      *DebugDumpProfileCmd      `cmd:"" help:"Dump profile data as JSON."`
	DumpItem         *DebugDumpItemCmd         `cmd:"" help:"Dump a habit or task with its history as JSON."`
	DumpItems        *DebugDumpItemsCmd        `cmd:"" help:"Dump every item of a user as JSON."`
	DumpAchievements *DebugDumpAchievementsCmd `cmd:"" help:"Dump stored achievement rows as JSON."`
	DumpConfig       *DebugDumpConfigCmd       `cmd:"" help:"Dump the effective configuration as JSON."`
}

func printJSON(v interface{}) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{
		"path": maskPassword(ctx.Store.GetConfigPath()),
	})
}

type DebugDumpProfileCmd struct {
	cli.UserFlag
}

func (cmd *DebugDumpProfileCmd) Run(ctx *cli.Context) error {
	profile, err := ctx.Store.GetProfile(ctx.Context(), cmd.User)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("profile not found: %s", cmd.User)
		}
		return fmt.Errorf("failed to get profile: %w", err)
	}
	return printJSON(profile)
}

type DebugDumpItemCmd struct {
	cli.UserFlag
	ID string `arg:"" help:"ID of the habit or task to dump."`
}

func (cmd *DebugDumpItemCmd) Run(ctx *cli.Context) error {
	item, err := ctx.Store.GetItem(ctx.Context(), cmd.User, cmd.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("item not found: %s", cmd.ID)
		}
		return fmt.Errorf("failed to get item: %w", err)
	}

	history, err := ctx.Store.ListCompletions(ctx.Context(), cmd.User, cmd.ID, "", "")
	if err != nil {
		return fmt.Errorf("failed to get completions: %w", err)
	}

	return printJSON(map[string]interface{}{
		"item":        item,
		"completions": history,
	})
}

type DebugDumpItemsCmd struct {
	cli.UserFlag
}

func (cmd *DebugDumpItemsCmd) Run(ctx *cli.Context) error {
	items, err := ctx.Store.ListItems(ctx.Context(), cmd.User, storage.ItemFilter{})
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}
	return printJSON(items)
}

type DebugDumpAchievementsCmd struct {
	cli.UserFlag
}

func (cmd *DebugDumpAchievementsCmd) Run(ctx *cli.Context) error {
	rows, err := ctx.Store.ListAchievements(ctx.Context(), cmd.User)
	if err != nil {
		return fmt.Errorf("failed to list achievements: %w", err)
	}
	return printJSON(rows)
}

type DebugDumpConfigCmd struct{}

func (cmd *DebugDumpConfigCmd) Run(ctx *cli.Context) error {
	cfg := *ctx.Config
	if cfg.Notify.Secret != "" {
		cfg.Notify.Secret = "****"
	}
	cfg.Database = maskPassword(cfg.Database)
	return printJSON(cfg)
}
