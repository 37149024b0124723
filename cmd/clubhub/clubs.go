package main

import (
	"fmt"

	"clubhub/internal/directory"
	"clubhub/internal/rbac"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	clubsMine bool
	clubIn    directory.ClubInput
)

var clubsCmd = &cobra.Command{
	Use:   "clubs",
	Short: "Browse, join and manage clubs",
}

var clubsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clubs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if ok, err := enter(cmd.Context(), rbac.ViewClubs); !ok {
			return err
		}
		member, title := "", "Clubs"
		if clubsMine {
			member, title = "me", "Your clubs"
		}
		clubs, err := cli.api.ListClubs(cmd.Context(), member)
		if err != nil {
			return fmt.Errorf("list clubs: %w", err)
		}
		return printClubs(title, clubs)
	},
}

var clubsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one club",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cli.api.GetClub(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get club: %w", err)
		}
		pterm.DefaultSection.Println(c.Name)
		return pterm.DefaultTable.WithData(pterm.TableData{
			{"Category", c.Category},
			{"Description", c.Description},
			{"Meets", c.MeetingTime},
			{"Location", c.Location},
			{"Contact", c.Email},
			{"Members", fmt.Sprint(c.MemberCount)},
		}).Render()
	},
}

var clubsJoinCmd = &cobra.Command{
	Use:   "join <id>",
	Short: "Join a club (students)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !allowed(rbac.RoleStudent) {
			return nil
		}
		status, err := cli.api.JoinClub(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("join club: %w", err)
		}
		pterm.Success.Println(status)
		return nil
	},
}

var clubsLeaveCmd = &cobra.Command{
	Use:   "leave <id>",
	Short: "Leave a club",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := cli.api.LeaveClub(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("leave club: %w", err)
		}
		pterm.Success.Println(status)
		return nil
	},
}

var clubsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a club (admins)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !allowed(rbac.RoleAdmin) {
			return nil
		}
		c, err := cli.api.CreateClub(cmd.Context(), clubIn)
		if err != nil {
			return fmt.Errorf("create club: %w", err)
		}
		pterm.Success.Printfln("Created club %s (%s)", c.Name, c.ID)
		return nil
	},
}

var clubsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a club's details (admins)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !allowed(rbac.RoleAdmin) {
			return nil
		}
		var p directory.ClubPatch
		flags := cmd.Flags()
		for name, dst := range map[string]**string{
			"name": &p.Name, "description": &p.Description, "image": &p.Image, "category": &p.Category,
			"meeting-time": &p.MeetingTime, "location": &p.Location, "contact": &p.Email,
		} {
			if flags.Changed(name) {
				v, _ := flags.GetString(name)
				*dst = &v
			}
		}
		c, err := cli.api.UpdateClub(cmd.Context(), args[0], p)
		if err != nil {
			return fmt.Errorf("update club: %w", err)
		}
		pterm.Success.Printfln("Updated club %s (%s)", c.Name, c.ID)
		return nil
	},
}

var clubsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a club and its events (admins)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !allowed(rbac.RoleAdmin) {
			return nil
		}
		if err := cli.api.DeleteClub(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete club: %w", err)
		}
		pterm.Success.Printfln("Deleted club %s", args[0])
		return nil
	},
}

func clubFlags(cmd *cobra.Command, in *directory.ClubInput) {
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "club name")
	f.StringVar(&in.Description, "description", "", "what the club does")
	f.StringVar(&in.Image, "image", "", "image URL")
	f.StringVar(&in.Category, "category", "", "category, e.g. Photography")
	f.StringVar(&in.MeetingTime, "meeting-time", "", "when the club meets")
	f.StringVar(&in.Location, "location", "", "where the club meets")
	f.StringVar(&in.Email, "contact", "", "contact email")
}

func init() {
	clubsListCmd.Flags().BoolVar(&clubsMine, "mine", false, "only clubs you belong to")

	clubFlags(clubsCreateCmd, &clubIn)
	for _, name := range []string{"name", "description", "category", "meeting-time", "location", "contact"} {
		_ = clubsCreateCmd.MarkFlagRequired(name)
	}
	clubFlags(clubsUpdateCmd, &directory.ClubInput{})

	clubsCmd.AddCommand(clubsListCmd, clubsShowCmd, clubsJoinCmd, clubsLeaveCmd, clubsCreateCmd, clubsUpdateCmd, clubsDeleteCmd)
}
