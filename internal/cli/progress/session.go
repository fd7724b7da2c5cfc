package progress

import (
	"fmt"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
)

// SessionCmd runs the session-start maintenance explicitly and reports the outcome.
type SessionCmd struct {
	cli.UserFlag
}

func (c *SessionCmd) Run(ctx *cli.Context) error {
	report, err := ctx.Session(c.User)
	if err != nil {
		return err
	}

	fmt.Printf("Session for %s: checked %d habit(s), %d broken, streak reset: %v, %d achievement change(s)\n",
		report.Today, report.Checked, len(report.Broken), report.StreakReset, len(report.Achievements))
	if len(report.Warnings) > 0 {
		return fmt.Errorf("session finished with %d warning(s)", len(report.Warnings))
	}
	return nil
}
