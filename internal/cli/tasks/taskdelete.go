package tasks

import (
	"fmt"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage"
)

type TaskDeleteCmd struct {
	cli.UserFlag
	Task string `arg:"" help:"Task ID or title to delete."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	task, err := cli.ResolveItem(ctx.Context(), ctx.Store, c.User, c.Task, storage.Tasks())
	if err != nil {
		return fmt.Errorf("failed to find task %s: %w", c.Task, err)
	}

	if err := ctx.Engine.DeleteItem(ctx.Context(), c.User, task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	fmt.Printf("Deleted task: %s (ID: %s)\n", task.Title, task.ID)
	return nil
}
