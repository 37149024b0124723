package main

import (
	"fmt"
	"time"

	"clubhub/internal/directory"
	"clubhub/internal/rbac"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02 15:04"

var (
	eventsMine    bool
	eventsCreated bool

	eventIn   directory.EventInput
	eventDate string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Browse, register for and manage events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events",
	RunE: func(cmd *cobra.Command, args []string) error {
		if ok, err := enter(cmd.Context(), rbac.ViewEvents); !ok {
			return err
		}
		var (
			events []directory.Event
			err    error
			title  = "Events"
		)
		switch {
		case eventsCreated:
			title = "Events you created"
			events, err = cli.api.CreatedEvents(cmd.Context())
		case eventsMine:
			title = "Your registrations"
			events, err = cli.api.ListEvents(cmd.Context(), "me")
		default:
			events, err = cli.api.ListEvents(cmd.Context(), "")
		}
		if err != nil {
			return fmt.Errorf("list events: %w", err)
		}
		return printEvents(title, events)
	},
}

var eventsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := cli.api.GetEvent(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		pterm.DefaultSection.Println(e.Title)
		return pterm.DefaultTable.WithData(pterm.TableData{
			{"When", e.Date.Local().Format(time.RFC1123)},
			{"Where", e.Location},
			{"Club", e.ClubID},
			{"Description", e.Description},
			{"Attendees", fmt.Sprint(e.AttendeeCount)},
		}).Render()
	},
}

var eventsRegisterCmd = &cobra.Command{
	Use:   "register <id>",
	Short: "Register for an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := cli.api.RegisterForEvent(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("register for event: %w", err)
		}
		pterm.Success.Println(status)
		return nil
	},
}

var eventsUnregisterCmd = &cobra.Command{
	Use:   "unregister <id>",
	Short: "Cancel an event registration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := cli.api.UnregisterFromEvent(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("unregister from event: %w", err)
		}
		pterm.Success.Println(status)
		return nil
	},
}

var eventsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an event (event admins)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !allowed(rbac.RoleEventAdmin) {
			return nil
		}
		when, err := time.ParseInLocation(dateLayout, eventDate, time.Local)
		if err != nil {
			return fmt.Errorf("--date must look like %q: %w", dateLayout, err)
		}
		in := eventIn
		in.Date = when
		e, err := cli.api.CreateEvent(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		pterm.Success.Printfln("Created event %s (%s)", e.Title, e.ID)
		return nil
	},
}

var eventsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change an event (event admins)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !allowed(rbac.RoleEventAdmin) {
			return nil
		}
		var p directory.EventPatch
		flags := cmd.Flags()
		for name, dst := range map[string]**string{
			"title": &p.Title, "description": &p.Description, "location": &p.Location, "club": &p.ClubID,
		} {
			if flags.Changed(name) {
				v, _ := flags.GetString(name)
				*dst = &v
			}
		}
		if flags.Changed("date") {
			raw, _ := flags.GetString("date")
			when, err := time.ParseInLocation(dateLayout, raw, time.Local)
			if err != nil {
				return fmt.Errorf("--date must look like %q: %w", dateLayout, err)
			}
			p.Date = &when
		}
		e, err := cli.api.UpdateEvent(cmd.Context(), args[0], p)
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		pterm.Success.Printfln("Updated event %s (%s)", e.Title, e.ID)
		return nil
	},
}

var eventsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an event (event admins)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !allowed(rbac.RoleEventAdmin) {
			return nil
		}
		if err := cli.api.DeleteEvent(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		pterm.Success.Printfln("Deleted event %s", args[0])
		return nil
	},
}

func eventFlags(cmd *cobra.Command, in *directory.EventInput, date *string) {
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "event title")
	f.StringVar(&in.Description, "description", "", "what happens")
	f.StringVar(date, "date", "", "local start time, "+dateLayout)
	f.StringVar(&in.Location, "location", "", "where it happens")
	f.StringVar(&in.ClubID, "club", "", "hosting club ID")
}

func init() {
	eventsListCmd.Flags().BoolVar(&eventsMine, "mine", false, "only events you registered for")
	eventsListCmd.Flags().BoolVar(&eventsCreated, "created", false, "only events you created")
	eventsListCmd.MarkFlagsMutuallyExclusive("mine", "created")

	eventFlags(eventsCreateCmd, &eventIn, &eventDate)
	for _, name := range []string{"title", "description", "date", "location", "club"} {
		_ = eventsCreateCmd.MarkFlagRequired(name)
	}
	eventFlags(eventsUpdateCmd, &directory.EventInput{}, new(string))

	eventsCmd.AddCommand(eventsListCmd, eventsShowCmd, eventsRegisterCmd, eventsUnregisterCmd, eventsCreateCmd, eventsUpdateCmd, eventsDeleteCmd)
}
