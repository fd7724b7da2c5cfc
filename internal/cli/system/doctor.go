package system

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/keyring"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/storage"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/utils"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name     string
	needsDB  bool
	warnOnly bool
	run      func(ctx *cli.Context) error
}

var doctorChecks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Configuration", run: checkConfig},
	{name: "Keyring", warnOnly: true, run: checkKeyring},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Data validation", needsDB: true, run: checkValidation},
	{name: "Completion duplicates", needsDB: true, run: checkCompletionDuplicates},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
		dbReachable = true
	}

	for _, c := range doctorChecks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

type dbHandle interface {
	DB() *sqlx.DB
}

func rawDB(store storage.Provider) (*sqlx.DB, error) {
	h, ok := store.(dbHandle)
	if !ok {
		return nil, fmt.Errorf("storage backend does not expose a database handle")
	}
	db := h.DB()
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return db, nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Context()); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	db, err := rawDB(ctx.Store)
	if err != nil {
		return err
	}
	var result int
	if err := db.QueryRowContext(ctx.Context(), "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	_, err := ctx.Store.SchemaStatus(ctx.Context())
	return err
}

func checkMigrationsComplete(ctx *cli.Context) error {
	st, err := ctx.Store.SchemaStatus(ctx.Context())
	if err != nil {
		return err
	}
	if !st.UpToDate() {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'habitus migrate')", st.Current, st.Latest)
	}
	return nil
}

func checkConfig(ctx *cli.Context) error {
	if ctx.Config == nil {
		return nil
	}
	return ctx.Config.Validate()
}

func checkKeyring(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return fmt.Errorf("OS keyring is not available; connection strings and webhook secrets must come from the environment")
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Config != nil && !utils.ValidateTimezone(ctx.Config.Timezone) {
		return fmt.Errorf("unknown timezone %q", ctx.Config.Timezone)
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	c := ctx.Context()
	profiles, err := ctx.Store.ListProfiles(c)
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	minGoal := 0
	if ctx.Config != nil {
		minGoal = ctx.Config.Habits.MinGoalDays
	}
	v := validation.New(minGoal)
	day := todayFor(ctx)

	var problems []string
	for _, p := range profiles {
		res := v.ValidateProfile(p)
		items, err := ctx.Store.ListItems(c, p.UserID, storage.ItemFilter{})
		if err != nil {
			return fmt.Errorf("failed to list items for %s: %w", p.UserID, err)
		}
		for _, item := range items {
			itemRes := v.ValidateItem(item)
			res.Conflicts = append(res.Conflicts, itemRes.Conflicts...)
		}
		itemsRes := v.ValidateItems(items, day)
		res.Conflicts = append(res.Conflicts, itemsRes.Conflicts...)
		for _, conflict := range res.Conflicts {
			problems = append(problems, fmt.Sprintf("%s: %s", p.UserID, conflict.Description))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s):\n   - %s", len(problems), strings.Join(problems, "\n   - "))
	}
	return nil
}

func checkCompletionDuplicates(ctx *cli.Context) error {
	db, err := rawDB(ctx.Store)
	if err != nil {
		return err
	}

	var duplicateCount int
	err = db.QueryRowContext(ctx.Context(), `
		SELECT COUNT(*)
		FROM (
			SELECT item_id, day
			FROM habit_completions
			GROUP BY item_id, day
			HAVING COUNT(*) > 1
		) dup
	`).Scan(&duplicateCount)
	if err != nil {
		return fmt.Errorf("failed to check duplicate completions: %w", err)
	}
	if duplicateCount > 0 {
		return fmt.Errorf("found %d item+day combinations with duplicate completions", duplicateCount)
	}
	return nil
}

func todayFor(ctx *cli.Context) string {
	if ctx.Engine != nil {
		return ctx.Engine.Today()
	}
	tz := ""
	if ctx.Config != nil {
		tz = ctx.Config.Timezone
	}
	day, err := utils.GetTodayInTimezone(tz)
	if err != nil {
		return utils.FormatDay(time.Now())
	}
	return day
}
