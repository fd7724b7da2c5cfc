package tasks

import (
	"fmt"
	"strings"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/constants"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
)

type TaskCmd struct {
	Add      TaskAddCmd      `cmd:"" help:"Add a new task."`
	Progress TaskProgressCmd `cmd:"" help:"Add progress to a task."`
	Edit     TaskEditCmd     `cmd:"" help:"Edit an existing task."`
	List     TaskListCmd     `cmd:"" help:"List tasks with their progress."`
	Delete   TaskDeleteCmd   `cmd:"" help:"Delete a task."`
}

type TaskAddCmd struct {
	cli.UserFlag
	Title string `arg:"" help:"Task title."`
	Goal  int    `short:"g" help:"Quantity that completes the task." default:"1"`
	Unit  string `help:"Unit label (days|hours|liters|pages|numeric|km|units)." default:"units"`
	Color string `help:"Color token: palette name or #RRGGBB." default:"blue"`
}

func (c *TaskAddCmd) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if c.Goal < constants.DefaultTaskGoal {
		return fmt.Errorf("goal must be at least %d", constants.DefaultTaskGoal)
	}
	return nil
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	unit, err := models.ParseUnit(c.Unit, models.UnitUnits)
	if err != nil {
		return err
	}
	color, err := models.ParseColor(c.Color, "")
	if err != nil {
		return err
	}

	task, _, err := ctx.Engine.CreateItem(ctx.Context(), models.Item{
		UserID:    c.User,
		Title:     c.Title,
		IsTask:    true,
		Color:     color,
		GoalValue: c.Goal,
		Unit:      unit,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added task: %s (goal %d %s)\n", cli.ItemStyle(task.Color).Render(task.Title), task.GoalValue, task.Unit)
	fmt.Println(cli.MutedStyle.Render("ID: " + task.ID))
	return nil
}
