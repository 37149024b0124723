package directory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"clubhub/internal/rbac"
)

var (
	ErrNotFound          = errors.New("directory: not found")
	ErrInvalidArgument   = errors.New("directory: invalid argument")
	ErrUnknownClub       = errors.New("directory: club does not exist")
	ErrStudentsOnly      = errors.New("unauthorized")
	ErrNotMember         = errors.New("not a member")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotRegistered     = errors.New("not registered")
)

type Repository interface {
	CreateClub(ctx context.Context, c Club) (Club, error)
	GetClub(ctx context.Context, id string) (Club, error)
	ListClubs(ctx context.Context) ([]Club, error)
	UpdateClub(ctx context.Context, id string, fn func(*Club) error) (Club, error)
	DeleteClub(ctx context.Context, id string) error

	CreateEvent(ctx context.Context, e Event) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	UpdateEvent(ctx context.Context, id string, fn func(*Event) error) (Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// Service implements the club and event directory. Role checks for writes happen in the
// HTTP layer; joining a club is restricted here because it depends on the member's role.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

/* ===================== CLUBS ===================== */

func (s *Service) ListClubs(ctx context.Context, f ClubFilter) ([]Club, error) {
	all, err := s.repo.ListClubs(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, c := range all {
		if f.MemberID != "" && !slices.Contains(c.Members, f.MemberID) {
			continue
		}
		if f.AdminID != "" && c.AdminID != f.AdminID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Service) GetClub(ctx context.Context, id string) (Club, error) {
	return s.repo.GetClub(ctx, id)
}

func (s *Service) CreateClub(ctx context.Context, adminID string, in ClubInput) (Club, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Club{}, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	now := s.clock().UTC()
	return s.repo.CreateClub(ctx, Club{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Image:       in.Image,
		Category:    in.Category,
		MeetingTime: in.MeetingTime,
		Location:    in.Location,
		Email:       in.Email,
		AdminID:     adminID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (s *Service) UpdateClub(ctx context.Context, id string, p ClubPatch) (Club, error) {
	return s.repo.UpdateClub(ctx, id, func(c *Club) error {
		if p.Name != nil {
			if strings.TrimSpace(*p.Name) == "" {
				return fmt.Errorf("%w: name is required", ErrInvalidArgument)
			}
			c.Name = strings.TrimSpace(*p.Name)
		}
		setIf(&c.Description, p.Description)
		setIf(&c.Image, p.Image)
		setIf(&c.Category, p.Category)
		setIf(&c.MeetingTime, p.MeetingTime)
		setIf(&c.Location, p.Location)
		setIf(&c.Email, p.Email)
		c.UpdatedAt = s.clock().UTC()
		return nil
	})
}

func (s *Service) DeleteClub(ctx context.Context, id string) error {
	return s.repo.DeleteClub(ctx, id)
}

// JoinClub adds a student to a club. Joining twice is not an error.
func (s *Service) JoinClub(ctx context.Context, id, userID string, role rbac.Role) (Club, error) {
	if role != rbac.RoleStudent {
		if _, err := s.repo.GetClub(ctx, id); err != nil {
			return Club{}, err
		}
		return Club{}, ErrStudentsOnly
	}
	return s.repo.UpdateClub(ctx, id, func(c *Club) error {
		if !slices.Contains(c.Members, userID) {
			c.Members = append(c.Members, userID)
		}
		return nil
	})
}

func (s *Service) LeaveClub(ctx context.Context, id, userID string) (Club, error) {
	return s.repo.UpdateClub(ctx, id, func(c *Club) error {
		i := slices.Index(c.Members, userID)
		if i < 0 {
			return ErrNotMember
		}
		c.Members = slices.Delete(c.Members, i, i+1)
		return nil
	})
}

/* ===================== EVENTS ===================== */

func (s *Service) ListEvents(ctx context.Context, f EventFilter) ([]Event, error) {
	all, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, e := range all {
		if f.AttendeeID != "" && !slices.Contains(e.Attendees, f.AttendeeID) {
			continue
		}
		if f.ClubID != "" && e.ClubID != f.ClubID {
			continue
		}
		if f.CreatedBy != "" && e.CreatedBy != f.CreatedBy {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (Event, error) {
	return s.repo.GetEvent(ctx, id)
}

func (s *Service) CreateEvent(ctx context.Context, creatorID string, in EventInput) (Event, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Event{}, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	if in.Date.IsZero() {
		return Event{}, fmt.Errorf("%w: date is required", ErrInvalidArgument)
	}
	return s.repo.CreateEvent(ctx, Event{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Date:        in.Date.UTC(),
		Location:    in.Location,
		ClubID:      in.ClubID,
		CreatedBy:   creatorID,
	})
}

func (s *Service) UpdateEvent(ctx context.Context, id string, p EventPatch) (Event, error) {
	return s.repo.UpdateEvent(ctx, id, func(e *Event) error {
		if p.Title != nil {
			if strings.TrimSpace(*p.Title) == "" {
				return fmt.Errorf("%w: title is required", ErrInvalidArgument)
			}
			e.Title = strings.TrimSpace(*p.Title)
		}
		setIf(&e.Description, p.Description)
		setIf(&e.Location, p.Location)
		setIf(&e.ClubID, p.ClubID)
		if p.Date != nil {
			e.Date = p.Date.UTC()
		}
		return nil
	})
}

func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	return s.repo.DeleteEvent(ctx, id)
}

func (s *Service) RegisterForEvent(ctx context.Context, id, userID string) (Event, error) {
	return s.repo.UpdateEvent(ctx, id, func(e *Event) error {
		if slices.Contains(e.Attendees, userID) {
			return ErrAlreadyRegistered
		}
		e.Attendees = append(e.Attendees, userID)
		return nil
	})
}

func (s *Service) UnregisterFromEvent(ctx context.Context, id, userID string) (Event, error) {
	return s.repo.UpdateEvent(ctx, id, func(e *Event) error {
		i := slices.Index(e.Attendees, userID)
		if i < 0 {
			return ErrNotRegistered
		}
		e.Attendees = slices.Delete(e.Attendees, i, i+1)
		return nil
	})
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
