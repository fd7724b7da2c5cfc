package progress

import (
	"fmt"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
)

// StreakCmd prints the profile summary: streak, lifetime total and the progress tank.
type StreakCmd struct {
	cli.UserFlag
}

func (c *StreakCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Session(c.User); err != nil {
		return err
	}

	snap, err := ctx.Engine.Snapshot(ctx.Context(), c.User)
	if err != nil {
		return err
	}
	p := snap.Profile

	fmt.Println(cli.TitleStyle.Render(p.Name))
	fmt.Printf("🔥 Streak:          %d day(s)\n", p.Streak)
	fmt.Printf("   Best streak:     %d day(s)\n", p.LongestStreak)
	fmt.Printf("   Days completed:  %d\n", p.TotalHabitsCompleted)
	fmt.Printf("   Last full day:   %s\n", cli.FormatDayAgo(p.LastCompletionDate, snap.Today))
	fmt.Println()

	done, active := 0, 0
	for _, h := range snap.Habits {
		if h.Broken {
			continue
		}
		active++
		if h.Progress == 100 {
			done++
		}
	}
	fmt.Printf("Today:    %d/%d habits done\n", done, active)
	fmt.Printf("Tank:     %s\n", cli.ProgressBar(snap.Tank, 30))

	unlocked := 0
	for _, a := range snap.Achievements {
		if a.Unlocked {
			unlocked++
		}
	}
	fmt.Printf("Trophies: %d/%d\n", unlocked, len(snap.Achievements))
	return nil
}
