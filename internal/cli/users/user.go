package users

import (
	"fmt"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/cli"
)

type UserCmd struct {
	Add  UserAddCmd  `cmd:"" help:"Create a profile."`
	List UserListCmd `cmd:"" help:"List profiles."`
}

type UserAddCmd struct {
	Name string `arg:"" help:"Display name."`
}

func (c *UserAddCmd) Run(ctx *cli.Context) error {
	profile, err := ctx.Engine.CreateProfile(ctx.Context(), c.Name)
	if err != nil {
		return err
	}

	fmt.Printf("Created profile %s\n", cli.TitleStyle.Render(profile.Name))
	fmt.Printf("User ID: %s\n", profile.UserID)
	fmt.Println(cli.MutedStyle.Render("Pass it with --user or export HABITUS_USER."))
	return nil
}

type UserListCmd struct{}

func (c *UserListCmd) Run(ctx *cli.Context) error {
	profiles, err := ctx.Store.ListProfiles(ctx.Context())
	if err != nil {
		return err
	}

	if len(profiles) == 0 {
		fmt.Println("No profiles found. Use 'habitus user add NAME' to create one.")
		return nil
	}

	for _, p := range profiles {
		fmt.Printf("%-36s  %-20s  streak %d (best %d)\n", p.UserID, p.Name, p.Streak, p.LongestStreak)
	}
	return nil
}
