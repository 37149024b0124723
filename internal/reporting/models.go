package reporting

import (
	"time"

	"clubhub/internal/directory"
	"clubhub/internal/rbac"
)

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r TimeRange) valid() bool {
	return !r.From.IsZero() && !r.To.IsZero() && r.To.After(r.From)
}

func (r TimeRange) contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// StudentSummary backs the student dashboard.
type StudentSummary struct {
	ClubsJoined      int               `json:"clubs_joined"`
	EventsRegistered int               `json:"events_registered"`
	Upcoming         []directory.Event `json:"upcoming"`
}

// AdminSummary backs the admin dashboard.
type AdminSummary struct {
	ClubsManaged int              `json:"clubs_managed"`
	TotalMembers int              `json:"total_members"`
	Clubs        []directory.Club `json:"clubs"`
}

// EventAdminSummary backs the event-admin dashboard.
// Upcoming counts created events that fall inside the requested range.
type EventAdminSummary struct {
	EventsCreated  int               `json:"events_created"`
	TotalAttendees int               `json:"total_attendees"`
	Upcoming       []directory.Event `json:"upcoming"`
}

// Dashboard is the summary for one role; exactly one of the pointers is set.
type Dashboard struct {
	Role       rbac.Role          `json:"role"`
	View       rbac.View          `json:"view"`
	Student    *StudentSummary    `json:"student,omitempty"`
	Admin      *AdminSummary      `json:"admin,omitempty"`
	EventAdmin *EventAdminSummary `json:"event_admin,omitempty"`
}
