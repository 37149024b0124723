package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clubhub/internal/directory"
	"clubhub/internal/rbac"
	"clubhub/internal/reporting"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const dashboardDays = 30

var openCmd = &cobra.Command{
	Use:   "open <view>",
	Short: "Open a view: home, clubs, events, dashboard or a role dashboard",
	Long: `Opens a view the way the web app would. Views your role may not see redirect
to your own dashboard; signed-out users are sent to login.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ev := cli.nav.Navigate(args[0])
		if ev.Redirected {
			pterm.Info.Printfln("%s is not available here; showing %s.", ev.Requested, ev.View)
		}
		return render(cmd.Context(), ev.View)
	},
}

// enter navigates to view and reports whether it was granted. When the navigator redirects,
// the redirect target is rendered instead.
func enter(ctx context.Context, view rbac.View) (bool, error) {
	ev := cli.nav.Navigate(string(view))
	if ev.View == view {
		return true, nil
	}
	pterm.Info.Printfln("%s is not available here; showing %s.", view, ev.View)
	return false, render(ctx, ev.View)
}

// render prints the given view. Only the navigator decides which view that is.
func render(ctx context.Context, view rbac.View) error {
	switch view {
	case rbac.ViewHome:
		pterm.DefaultBox.WithTitle("Club-Hub").Println("Discover clubs and events on campus.\n\nclubhub open clubs\nclubhub open events\nclubhub open dashboard")
		return nil
	case rbac.ViewLogin:
		pterm.Info.Println("Sign in with `clubhub login`.")
		return nil
	case rbac.ViewRegister:
		pterm.Info.Println("Create an account with `clubhub register`.")
		return nil
	case rbac.ViewClubs:
		clubs, err := cli.api.ListClubs(ctx, "")
		if err != nil {
			return fmt.Errorf("list clubs: %w", err)
		}
		return printClubs("Clubs", clubs)
	case rbac.ViewEvents:
		events, err := cli.api.ListEvents(ctx, "")
		if err != nil {
			return fmt.Errorf("list events: %w", err)
		}
		return printEvents("Events", events)
	case rbac.ViewStudentDashboard, rbac.ViewAdminDashboard, rbac.ViewEventAdminDashboard:
		return renderDashboard(ctx)
	default:
		return fmt.Errorf("nothing to show for %q", view)
	}
}

func renderDashboard(ctx context.Context) error {
	id, ok := cli.requireLogin()
	if !ok {
		return nil
	}
	d, err := cli.reports.Dashboard(ctx, id.Role, reporting.NextDays(time.Now(), dashboardDays))
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}

	pterm.DefaultSection.Printfln("Welcome back, %s", id.DisplayName())
	switch {
	case d.Student != nil:
		pterm.Info.Printfln("Clubs joined: %d  Events registered: %d", d.Student.ClubsJoined, d.Student.EventsRegistered)
		return printEvents(fmt.Sprintf("Your events in the next %d days", dashboardDays), d.Student.Upcoming)
	case d.Admin != nil:
		pterm.Info.Printfln("Clubs managed: %d  Total members: %d", d.Admin.ClubsManaged, d.Admin.TotalMembers)
		return printClubs("Your clubs", d.Admin.Clubs)
	case d.EventAdmin != nil:
		pterm.Info.Printfln("Events created: %d  Total attendees: %d", d.EventAdmin.EventsCreated, d.EventAdmin.TotalAttendees)
		return printEvents(fmt.Sprintf("Your events in the next %d days", dashboardDays), d.EventAdmin.Upcoming)
	}
	return nil
}

func printClubs(title string, clubs []directory.Club) error {
	pterm.DefaultSection.Println(title)
	if len(clubs) == 0 {
		pterm.Info.Println("No clubs.")
		return nil
	}
	rows := pterm.TableData{{"ID", "NAME", "CATEGORY", "MEETS", "LOCATION", "MEMBERS"}}
	for _, c := range clubs {
		rows = append(rows, []string{c.ID, c.Name, c.Category, c.MeetingTime, c.Location, strconv.Itoa(c.MemberCount)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func printEvents(title string, events []directory.Event) error {
	pterm.DefaultSection.Println(title)
	if len(events) == 0 {
		pterm.Info.Println("No events.")
		return nil
	}
	rows := pterm.TableData{{"ID", "TITLE", "WHEN", "WHERE", "CLUB", "ATTENDEES"}}
	for _, e := range events {
		rows = append(rows, []string{e.ID, e.Title, e.Date.Local().Format("Mon 02 Jan 15:04"), e.Location, e.ClubID, strconv.Itoa(e.AttendeeCount)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

// allowed checks role-restricted commands locally before calling the API.
func allowed(roles ...rbac.Role) bool {
	role := cli.auth.State().Role()
	d := rbac.Decide(role, roles)
	if d.Render {
		return true
	}
	if role == "" {
		pterm.Warning.Println("Not logged in. Run `clubhub login` first.")
	} else {
		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = r.String()
		}
		pterm.Warning.Printfln("Only %s accounts can do that.", strings.Join(names, " or "))
	}
	return false
}
