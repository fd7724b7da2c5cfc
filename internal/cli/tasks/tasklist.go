package tasks

import (
	"fmt"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
)

type TaskListCmd struct {
	cli.UserFlag
	Pending bool `help:"Show only tasks that are not complete."`
	ShowIDs bool `help:"Show task IDs." name:"show-ids"`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.Engine.Snapshot(ctx.Context(), c.User)
	if err != nil {
		return fmt.Errorf("failed to get tasks: %w", err)
	}
	if len(snap.Tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	fmt.Println("Tasks:")
	for _, task := range snap.Tasks {
		if c.Pending && task.IsComplete {
			continue
		}

		idStr := ""
		if c.ShowIDs {
			idStr = cli.MutedStyle.Render(" [" + task.ID + "]")
		}
		fmt.Printf("  %-24s %s  %d/%d %s%s\n", task.Title, cli.ProgressBar(task.Progress, 20), task.CurrentValue, task.GoalValue, task.Unit.Label(), idStr)
	}
	return nil
}
