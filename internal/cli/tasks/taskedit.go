package tasks

import (
	"fmt"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/engine"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage"
)

type TaskEditCmd struct {
	cli.UserFlag
	Task  string  `arg:"" help:"Task ID or title."`
	Title *string `help:"New task title."`
	Goal  *int    `short:"g" help:"New goal quantity."`
	Unit  *string `help:"New unit label."`
	Color *string `help:"New color token."`
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	task, err := cli.ResolveItem(ctx.Context(), ctx.Store, c.User, c.Task, storage.Tasks())
	if err != nil {
		return fmt.Errorf("failed to find task: %w", err)
	}

	edit := engine.ItemEdit{Title: c.Title}
	if c.Goal != nil {
		if *c.Goal <= 0 {
			return fmt.Errorf("goal must be positive")
		}
		edit.GoalValue = c.Goal
	}
	if c.Unit != nil {
		unit, err := models.ParseUnit(*c.Unit, task.Unit)
		if err != nil {
			return err
		}
		edit.Unit = &unit
	}
	if c.Color != nil {
		color, err := models.ParseColor(*c.Color, task.Color)
		if err != nil {
			return err
		}
		edit.Color = &color
	}

	updated, err := ctx.Engine.EditItem(ctx.Context(), c.User, task.ID, edit)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	fmt.Printf("Updated task: %s (%d/%d %s)\n", updated.Title, updated.CurrentValue, updated.GoalValue, updated.Unit)
	return nil
}
