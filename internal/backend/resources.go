package backend

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"clubhub/internal/directory"
	"clubhub/internal/transport"

	"github.com/go-resty/resty/v2"
)

// ResourceClient calls the protected API. Every request goes through the refreshing
// transport, so an expired access token is renewed once and the call replayed.
// A failed renewal surfaces as transport.ErrSessionExpired.
type ResourceClient struct {
	http *resty.Client
}

func NewResourceClient(baseURL string, timeout time.Duration, sess transport.Session, log *slog.Logger) *ResourceClient {
	c := newResty(baseURL, timeout, log).
		SetTransport(&transport.RefreshingTransport{Session: sess, Log: log})
	return &ResourceClient{http: c}
}

type statusResponse struct {
	Status string `json:"status"`
}

func (c *ResourceClient) Me(ctx context.Context) (User, error) {
	return send[User](ctx, c.http, http.MethodGet, "/me", nil, nil)
}

// --- Clubs ---

// ListClubs lists every club, or with member set ("me" for the caller) only that user's clubs.
func (c *ResourceClient) ListClubs(ctx context.Context, member string) ([]directory.Club, error) {
	return send[[]directory.Club](ctx, c.http, http.MethodGet, "/clubs", nil, filter("member", member))
}

// ManagedClubs lists the clubs administered by the caller.
func (c *ResourceClient) ManagedClubs(ctx context.Context) ([]directory.Club, error) {
	return send[[]directory.Club](ctx, c.http, http.MethodGet, "/clubs", nil, filter("admin", "me"))
}

func (c *ResourceClient) GetClub(ctx context.Context, id string) (directory.Club, error) {
	return send[directory.Club](ctx, c.http, http.MethodGet, "/clubs/"+url.PathEscape(id), nil, nil)
}

func (c *ResourceClient) CreateClub(ctx context.Context, in directory.ClubInput) (directory.Club, error) {
	return send[directory.Club](ctx, c.http, http.MethodPost, "/clubs", in, nil)
}

func (c *ResourceClient) UpdateClub(ctx context.Context, id string, p directory.ClubPatch) (directory.Club, error) {
	return send[directory.Club](ctx, c.http, http.MethodPatch, "/clubs/"+url.PathEscape(id), p, nil)
}

func (c *ResourceClient) DeleteClub(ctx context.Context, id string) error {
	_, err := send[struct{}](ctx, c.http, http.MethodDelete, "/clubs/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *ResourceClient) JoinClub(ctx context.Context, id string) (string, error) {
	out, err := send[statusResponse](ctx, c.http, http.MethodPost, "/clubs/"+url.PathEscape(id)+"/join", nil, nil)
	return out.Status, err
}

func (c *ResourceClient) LeaveClub(ctx context.Context, id string) (string, error) {
	out, err := send[statusResponse](ctx, c.http, http.MethodPost, "/clubs/"+url.PathEscape(id)+"/leave", nil, nil)
	return out.Status, err
}

// --- Events ---

// ListEvents lists every event, or with attendee set ("me" for the caller) only that
// user's registrations.
func (c *ResourceClient) ListEvents(ctx context.Context, attendee string) ([]directory.Event, error) {
	return send[[]directory.Event](ctx, c.http, http.MethodGet, "/events", nil, filter("attendee", attendee))
}

// CreatedEvents lists the events the caller created.
func (c *ResourceClient) CreatedEvents(ctx context.Context) ([]directory.Event, error) {
	return send[[]directory.Event](ctx, c.http, http.MethodGet, "/events", nil, filter("created_by", "me"))
}

func (c *ResourceClient) GetEvent(ctx context.Context, id string) (directory.Event, error) {
	return send[directory.Event](ctx, c.http, http.MethodGet, "/events/"+url.PathEscape(id), nil, nil)
}

func (c *ResourceClient) CreateEvent(ctx context.Context, in directory.EventInput) (directory.Event, error) {
	return send[directory.Event](ctx, c.http, http.MethodPost, "/events", in, nil)
}

func (c *ResourceClient) UpdateEvent(ctx context.Context, id string, p directory.EventPatch) (directory.Event, error) {
	return send[directory.Event](ctx, c.http, http.MethodPatch, "/events/"+url.PathEscape(id), p, nil)
}

func (c *ResourceClient) DeleteEvent(ctx context.Context, id string) error {
	_, err := send[struct{}](ctx, c.http, http.MethodDelete, "/events/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *ResourceClient) RegisterForEvent(ctx context.Context, id string) (string, error) {
	out, err := send[statusResponse](ctx, c.http, http.MethodPost, "/events/"+url.PathEscape(id)+"/register", nil, nil)
	return out.Status, err
}

func (c *ResourceClient) UnregisterFromEvent(ctx context.Context, id string) (string, error) {
	out, err := send[statusResponse](ctx, c.http, http.MethodPost, "/events/"+url.PathEscape(id)+"/unregister", nil, nil)
	return out.Status, err
}

func filter(key, value string) map[string]string {
	if value == "" {
		return nil
	}
	return map[string]string{key: value}
}
