package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"clubhub/internal/directory"
	"clubhub/internal/rbac"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository is the read side the dashboards need. Filters are always relative to the
// caller: implementations must only return the caller's own clubs and events.
type Repository interface {
	ListClubs(ctx context.Context, member string) ([]directory.Club, error)
	ManagedClubs(ctx context.Context) ([]directory.Club, error)
	ListEvents(ctx context.Context, attendee string) ([]directory.Event, error)
	CreatedEvents(ctx context.Context) ([]directory.Event, error)
}

// Me is the filter value for the calling user.
const Me = "me"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// Dashboard builds the summary for role. Events outside window are left out of Upcoming.
func (s *Service) Dashboard(ctx context.Context, role rbac.Role, window TimeRange) (Dashboard, error) {
	out := Dashboard{Role: role, View: rbac.DashboardFor(role)}
	var err error
	switch role {
	case rbac.RoleStudent:
		var sum StudentSummary
		sum, err = s.StudentSummary(ctx, window)
		out.Student = &sum
	case rbac.RoleAdmin:
		var sum AdminSummary
		sum, err = s.AdminSummary(ctx)
		out.Admin = &sum
	case rbac.RoleEventAdmin:
		var sum EventAdminSummary
		sum, err = s.EventAdminSummary(ctx, window)
		out.EventAdmin = &sum
	default:
		return Dashboard{}, fmt.Errorf("%w: no dashboard for role %q", ErrInvalidRequest, role)
	}
	if err != nil {
		return Dashboard{}, err
	}
	return out, nil
}

func (s *Service) StudentSummary(ctx context.Context, window TimeRange) (StudentSummary, error) {
	if !window.valid() {
		return StudentSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return StudentSummary{}, errors.New("reporting: repository not configured")
	}

	clubs, err := s.repo.ListClubs(ctx, Me)
	if err != nil {
		return StudentSummary{}, err
	}
	events, err := s.repo.ListEvents(ctx, Me)
	if err != nil {
		return StudentSummary{}, err
	}

	return StudentSummary{
		ClubsJoined:      len(clubs),
		EventsRegistered: len(events),
		Upcoming:         upcoming(events, window),
	}, nil
}

func (s *Service) AdminSummary(ctx context.Context) (AdminSummary, error) {
	if s.repo == nil {
		return AdminSummary{}, errors.New("reporting: repository not configured")
	}
	clubs, err := s.repo.ManagedClubs(ctx)
	if err != nil {
		return AdminSummary{}, err
	}

	out := AdminSummary{ClubsManaged: len(clubs), Clubs: clubs}
	for _, c := range clubs {
		out.TotalMembers += c.MemberCount
	}
	// largest first
	sort.SliceStable(out.Clubs, func(i, j int) bool { return out.Clubs[i].MemberCount > out.Clubs[j].MemberCount })
	return out, nil
}

func (s *Service) EventAdminSummary(ctx context.Context, window TimeRange) (EventAdminSummary, error) {
	if !window.valid() {
		return EventAdminSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return EventAdminSummary{}, errors.New("reporting: repository not configured")
	}
	events, err := s.repo.CreatedEvents(ctx)
	if err != nil {
		return EventAdminSummary{}, err
	}

	out := EventAdminSummary{EventsCreated: len(events), Upcoming: upcoming(events, window)}
	for _, e := range events {
		out.TotalAttendees += e.AttendeeCount
	}
	return out, nil
}

// NextDays is the usual dashboard window: from now for the given number of days.
func NextDays(now time.Time, days int) TimeRange {
	return TimeRange{From: now, To: now.AddDate(0, 0, days)}
}

func upcoming(events []directory.Event, window TimeRange) []directory.Event {
	out := make([]directory.Event, 0, len(events))
	for _, e := range events {
		if window.contains(e.Date) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
