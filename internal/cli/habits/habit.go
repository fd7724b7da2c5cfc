package habits

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/engine"
	apperrors "github.com/ymhp64t9bz-png/habitus-strict-html/internal/errors"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/utils"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	Done   HabitDoneCmd   `cmd:"" help:"Mark a habit as done today."`
	List   HabitListCmd   `cmd:"" help:"List habits with today's status."`
	Edit   HabitEditCmd   `cmd:"" help:"Edit a habit's title, look or goal."`
	Log    HabitLogCmd    `cmd:"" help:"Show habit log (ASCII history)."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and its history."`
}

type HabitAddCmd struct {
	cli.UserFlag
	Title string `arg:"" help:"Habit title."`
	Goal  int    `short:"g" help:"Goal in days (minimum set by habits.min_goal_days)." default:"21"`
	Unit  string `help:"Unit label (days|hours|liters|pages|numeric|km|units)." default:"days"`
	Icon  string `help:"Icon shown next to the title."`
	Color string `help:"Color token: palette name or #RRGGBB." default:"primary"`
}

func (c *HabitAddCmd) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if c.Goal <= 0 {
		return fmt.Errorf("goal must be greater than zero")
	}
	return nil
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	unit, err := models.ParseUnit(c.Unit, models.UnitDays)
	if err != nil {
		return err
	}
	color, err := models.ParseColor(c.Color, "")
	if err != nil {
		return err
	}

	habit, changes, err := ctx.Engine.CreateItem(ctx.Context(), models.Item{
		UserID:    c.User,
		Title:     c.Title,
		Icon:      c.Icon,
		Color:     color,
		GoalValue: c.Goal,
		Unit:      unit,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added habit: %s %s (goal %d %s)\n", habit.Icon, cli.ItemStyle(habit.Color).Render(habit.Title), habit.GoalValue, habit.Unit)
	fmt.Println(cli.MutedStyle.Render("ID: " + habit.ID))
	cli.PrintAchievementChanges(changes)
	return nil
}

type HabitDoneCmd struct {
	cli.UserFlag
	Habit string `arg:"" help:"Habit ID or title."`
}

func (c *HabitDoneCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Session(c.User); err != nil {
		return err
	}

	habit, err := cli.ResolveItem(ctx.Context(), ctx.Store, c.User, c.Habit, storage.Habits())
	if err != nil {
		return err
	}

	res, err := ctx.Engine.CompleteHabit(ctx.Context(), c.User, habit.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrHabitBroken) {
			return fmt.Errorf("%w (use 'habitus habit delete' and add it again)", err)
		}
		return err
	}

	if !res.Recorded {
		fmt.Printf("Could not record %s; nothing was changed.\n", habit.Title)
		cli.PrintWarnings(res.Warnings)
		return nil
	}

	if res.AlreadyDone {
		fmt.Printf("%s was already done today.\n", res.Item.Title)
	} else {
		fmt.Printf("%s Marked %s done: %d/%d %s\n", cli.SuccessStyle.Render("✓"), res.Item.Title, res.Item.CurrentValue, res.Item.GoalValue, res.Item.Unit)
	}
	if res.Item.IsComplete {
		fmt.Println(cli.SuccessStyle.Render("Goal reached!"))
	}

	if res.Streak.Advanced() {
		fmt.Printf("🔥 Streak: %d day(s)\n", res.Streak.Streak)
	} else if res.Streak.Reason == engine.StreakIncomplete {
		fmt.Println(cli.MutedStyle.Render("Complete every habit today to extend your streak."))
	}
	cli.PrintAchievementChanges(res.Achievements)
	cli.PrintWarnings(res.Warnings)
	return nil
}

type HabitEditCmd struct {
	cli.UserFlag
	Habit string  `arg:"" help:"Habit ID or title."`
	Title *string `help:"New title."`
	Goal  *int    `short:"g" help:"New goal."`
	Unit  *string `help:"New unit label."`
	Icon  *string `help:"New icon."`
	Color *string `help:"New color token."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	habit, err := cli.ResolveItem(ctx.Context(), ctx.Store, c.User, c.Habit, storage.Habits())
	if err != nil {
		return err
	}

	edit := engine.ItemEdit{Title: c.Title, Icon: c.Icon, GoalValue: c.Goal}
	if c.Unit != nil {
		unit, err := models.ParseUnit(*c.Unit, habit.Unit)
		if err != nil {
			return err
		}
		edit.Unit = &unit
	}
	if c.Color != nil {
		color, err := models.ParseColor(*c.Color, habit.Color)
		if err != nil {
			return err
		}
		edit.Color = &color
	}

	updated, err := ctx.Engine.EditItem(ctx.Context(), c.User, habit.ID, edit)
	if err != nil {
		return err
	}
	fmt.Printf("Updated habit: %s (goal %d %s)\n", cli.ItemStyle(updated.Color).Render(updated.Title), updated.GoalValue, updated.Unit)
	return nil
}

type HabitListCmd struct {
	cli.UserFlag
	Broken bool `help:"Include broken habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Session(c.User); err != nil {
		return err
	}

	snap, err := ctx.Engine.Snapshot(ctx.Context(), c.User)
	if err != nil {
		return err
	}

	if len(snap.Habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	fmt.Printf("Habits for %s:\n\n", snap.Today)
	done, active := 0, 0
	for _, h := range snap.Habits {
		if h.Broken {
			if c.Broken {
				fmt.Printf("%s %s %s\n", cli.DangerStyle.Render("[✗]"), h.Title, cli.MutedStyle.Render(fmt.Sprintf("broken at %d/%d", h.CurrentValue, h.GoalValue)))
			}
			continue
		}
		active++
		status := "[ ]"
		if h.Progress == 100 {
			status = cli.SuccessStyle.Render("[x]")
			done++
		}
		fmt.Printf("%s %s %s  %d/%d %s  last: %s\n", status, h.Icon, cli.ItemStyle(h.Color).Render(h.Title),
			h.CurrentValue, h.GoalValue, h.Unit.Label(), cli.FormatDayAgo(h.LastCompletedDate, snap.Today))
	}

	fmt.Printf("\nDone today: %d/%d\n", done, active)
	return nil
}

type HabitLogCmd struct {
	cli.UserFlag
	Habit string `arg:"" optional:"" help:"Show log for a specific habit only."`
	Days  int    `help:"Number of days to show." default:"14"`
}

func (c *HabitLogCmd) Validate() error {
	if c.Days < 1 || c.Days > 90 {
		return fmt.Errorf("days must be between 1 and 90")
	}
	return nil
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	var selected []models.Item
	if c.Habit != "" {
		habit, err := cli.ResolveItem(ctx.Context(), ctx.Store, c.User, c.Habit, storage.Habits())
		if err != nil {
			return err
		}
		selected = []models.Item{habit}
	} else {
		habits, err := ctx.Store.ListItems(ctx.Context(), c.User, storage.ActiveHabits())
		if err != nil {
			return err
		}
		selected = habits
	}

	if len(selected) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	today := ctx.Engine.Today()
	startDay, err := utils.AddDays(today, -(c.Days - 1))
	if err != nil {
		return err
	}

	fmt.Printf("Habit log (last %d days):\n\n", c.Days)

	const maxNameLen = 20
	fmt.Print(strings.Repeat(" ", maxNameLen))
	for i := 0; i < c.Days; i++ {
		day, _ := utils.AddDays(startDay, i)
		fmt.Printf(" %5s", day[5:])
	}
	fmt.Println()
	fmt.Println(strings.Repeat("-", maxNameLen+6*c.Days))

	for _, habit := range selected {
		name := habit.Title
		if len([]rune(name)) > maxNameLen {
			name = string([]rune(name)[:maxNameLen-3]) + "..."
		}
		fmt.Printf("%-*s", maxNameLen, name)

		entries, err := ctx.Engine.History(ctx.Context(), c.User, habit.ID, c.Days)
		if err != nil {
			return err
		}
		marked := make(map[string]bool, len(entries))
		for _, e := range entries {
			marked[e.Day] = true
		}

		for i := 0; i < c.Days; i++ {
			day, _ := utils.AddDays(startDay, i)
			if marked[day] {
				fmt.Print("  x   ")
			} else {
				fmt.Print("  .   ")
			}
		}
		fmt.Println()
	}

	return nil
}

type HabitDeleteCmd struct {
	cli.UserFlag
	Habit string `arg:"" help:"Habit ID or title to delete."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	habit, err := cli.ResolveItem(ctx.Context(), ctx.Store, c.User, c.Habit, storage.Habits())
	if err != nil {
		return err
	}

	if err := ctx.Engine.DeleteItem(ctx.Context(), c.User, habit.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted habit: %s\n", habit.Title)
	return nil
}
