package tasks

import (
	"fmt"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage"
)

type TaskProgressCmd struct {
	cli.UserFlag
	Task   string `arg:"" help:"Task ID or title."`
	Amount int    `arg:"" optional:"" help:"Units to add." default:"1"`
}

func (c *TaskProgressCmd) Run(ctx *cli.Context) error {
	task, err := cli.ResolveItem(ctx.Context(), ctx.Store, c.User, c.Task, storage.Tasks())
	if err != nil {
		return err
	}

	res, err := ctx.Engine.AddTaskProgress(ctx.Context(), c.User, task.ID, c.Amount)
	if err != nil {
		return err
	}

	fmt.Printf("%s  %s  %d/%d %s\n", res.Item.Title, cli.ProgressBar(res.Progress, 20), res.Item.CurrentValue, res.Item.GoalValue, res.Item.Unit)
	if res.Item.IsComplete {
		fmt.Println(cli.SuccessStyle.Render("Task complete!"))
	}
	cli.PrintWarnings(res.Warnings)
	return nil
}
