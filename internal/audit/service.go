package audit

import (
	"context"
	"errors"
	"time"

	"clubhub/pkg/logger"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records session and account audit events.
// Callers should treat audit logging as best-effort; Record never returns an error.
type Service struct {
	repo    Repository
	source  Source
	profile string
	clock   func() time.Time
}

func NewService(repo Repository, source Source) *Service {
	return &Service{repo: repo, source: source, clock: time.Now}
}

// ForProfile returns a copy of s that stamps every event with the client profile.
func (s *Service) ForProfile(profile string) *Service {
	cp := *s
	cp.profile = profile
	return &cp
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Source == "" {
		e.Source = s.source
	}
	if e.Profile == "" {
		e.Profile = s.profile
	}
	if e.Source == "" || e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// Record appends e and logs, rather than returns, any failure.
func (s *Service) Record(ctx context.Context, e Event) {
	if s == nil {
		return
	}
	if err := s.Append(ctx, e); err != nil {
		logger.From(ctx).Warn("audit append failed", "type", string(e.Type), "err", err)
	}
}

// Actor identifies who an event is about.
type Actor struct {
	UserID string
	Email  string
	Role   string
}

func (s *Service) event(t EventType, a Actor, msg string) Event {
	return Event{
		Type:        t,
		ActorUserID: a.UserID,
		ActorEmail:  a.Email,
		ActorRole:   a.Role,
		Message:     msg,
	}
}

func (s *Service) LogLogin(ctx context.Context, a Actor, ok bool) {
	if ok {
		s.Record(ctx, s.event(EventLoginSucceeded, a, ""))
		return
	}
	s.Record(ctx, s.event(EventLoginFailed, a, "invalid email or password"))
}

func (s *Service) LogLogout(ctx context.Context, a Actor) {
	s.Record(ctx, s.event(EventLogout, a, ""))
}

func (s *Service) LogRefresh(ctx context.Context, a Actor, cause error) {
	if cause == nil {
		s.Record(ctx, s.event(EventTokenRefreshed, a, ""))
		return
	}
	s.Record(ctx, s.event(EventRefreshFailed, a, cause.Error()))
}

func (s *Service) LogCredentialDiscarded(ctx context.Context, reason string) {
	s.Record(ctx, s.event(EventCredentialDiscarded, Actor{}, reason))
}

func (s *Service) LogTokenIssued(ctx context.Context, a Actor, ip, grant string) {
	e := s.event(EventTokenIssued, a, grant)
	e.IPAddress = ip
	s.Record(ctx, e)
}

// LogResourceDeleted records an admin removing a club or event, e.g. kind "club".
func (s *Service) LogResourceDeleted(ctx context.Context, a Actor, kind, id string) {
	s.Record(ctx, s.event(EventResourceDeleted, a, kind+" "+id))
}

func (s *Service) LogUserRegistered(ctx context.Context, a Actor, ip string) {
	e := s.event(EventUserRegistered, a, "")
	e.IPAddress = ip
	s.Record(ctx, e)
}
