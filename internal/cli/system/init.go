package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy profiles and history from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(ctx.Context()); err != nil {
		return err
	}
	fmt.Printf("Initialized habitus storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Migrating data from: %s\n", c.Source)
		if err := c.migrateData(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}

	return nil
}

// reset removes the SQLite file behind ctx.Store. PostgreSQL schemas are never dropped
// from here.
func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return fmt.Errorf("--force only supports SQLite databases; drop the %q schema manually", "habitus")
	}

	dbPath := ctx.Store.GetConfigPath()
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	if c.Source != "" {
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
		}
		fmt.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func (c *InitCmd) migrateData(ctx *cli.Context, source string) error {
	src, err := cli.OpenStore(source)
	if err != nil {
		return err
	}
	if err := src.Load(ctx.Context()); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	return copyData(ctx, src, ctx.Store)
}

func copyData(ctx *cli.Context, src, dst storage.Provider) error {
	c := ctx.Context()

	fmt.Println("  Migrating profiles...")
	profiles, err := src.ListProfiles(c)
	if err != nil {
		return fmt.Errorf("failed to get profiles from source: %w", err)
	}

	var items, completions, achievements int
	for _, p := range profiles {
		if err := dst.CreateProfile(c, p); err != nil {
			return err
		}

		userItems, err := src.ListItems(c, p.UserID, storage.ItemFilter{})
		if err != nil {
			return fmt.Errorf("failed to get items for %s: %w", p.UserID, err)
		}
		for _, item := range userItems {
			if err := dst.AddItem(c, item); err != nil {
				return err
			}
			history, err := src.ListCompletions(c, p.UserID, item.ID, "", "")
			if err != nil {
				return err
			}
			for _, entry := range history {
				if err := dst.AddCompletion(c, entry); err != nil {
					return err
				}
			}
			items++
			completions += len(history)
		}

		rows, err := src.ListAchievements(c, p.UserID)
		if err != nil {
			return fmt.Errorf("failed to get achievements for %s: %w", p.UserID, err)
		}
		for _, row := range rows {
			if err := dst.UpsertAchievement(c, row); err != nil {
				return err
			}
		}
		achievements += len(rows)
	}

	fmt.Printf("    Migrated %d profiles\n", len(profiles))
	fmt.Printf("    Migrated %d items with %d completions\n", items, completions)
	fmt.Printf("    Migrated %d achievement rows\n", achievements)
	return nil
}
