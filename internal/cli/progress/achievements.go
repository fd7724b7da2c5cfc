package progress

import (
	"fmt"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
)

type AchievementsCmd struct {
	cli.UserFlag
	Locked bool `help:"Show only achievements that are still locked."`
}

func (c *AchievementsCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.Engine.Snapshot(ctx.Context(), c.User)
	if err != nil {
		return err
	}

	for _, a := range snap.Achievements {
		if c.Locked && a.Unlocked {
			continue
		}

		mark := cli.MutedStyle.Render("○")
		if a.Unlocked {
			mark = cli.LevelStyle(a.Level).Render("★")
		}
		fmt.Printf("%s %-20s %-7s %s\n", mark, a.Name, a.Level, cli.ProgressBar(a.Progress, 20))

		detail := a.Description
		switch {
		case a.Unlocked:
			detail += " · unlocked " + ctx.FormatTime(a.UnlockedAt)
		case a.EverUnlocked:
			detail += " · previously unlocked " + ctx.FormatTime(a.UnlockedAt)
		}
		fmt.Println("  " + cli.MutedStyle.Render(detail))
	}
	return nil
}
