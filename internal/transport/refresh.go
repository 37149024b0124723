package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"clubhub/internal/session"
)

// ErrSessionExpired is returned in place of a 401 when the session could not be refreshed.
// The session has been cleared by the time the caller sees it.
var ErrSessionExpired = errors.New("session expired; please log in again")

// Session is the capability the transport needs from the authenticator.
type Session interface {
	AccessToken(ctx context.Context) (string, bool)
	Refresh(ctx context.Context) (string, error)
	Expire(ctx context.Context, cause error)
}

// attempt is the per-call retry state.
type attempt int

const (
	firstAttempt attempt = iota
	retried
)

func (a attempt) String() string {
	if a == retried {
		return "retried"
	}
	return "first"
}

// RefreshingTransport attaches the bearer credential to each request. On a 401 it refreshes
// the credential once and replays the request; a 401 on the replay is returned as-is.
// A refresh overtaken by a login or logout leaves the session alone and replays once with
// the current credential.
type RefreshingTransport struct {
	Base    http.RoundTripper
	Session Session
	Log     *slog.Logger
}

func (t *RefreshingTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *RefreshingTransport) log() *slog.Logger {
	if t.Log != nil {
		return t.Log
	}
	return slog.Default()
}

func (t *RefreshingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	replay, err := replayable(req)
	if err != nil {
		return nil, err
	}

	token, _ := t.Session.AccessToken(ctx)
	resp, err := t.send(replay, token, firstAttempt)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	drain(resp)

	fresh, err := t.Session.Refresh(ctx)
	if errors.Is(err, session.ErrSessionReplaced) {
		// a newer login or logout owns the session now; replay with whatever it holds
		current, _ := t.Session.AccessToken(ctx)
		t.log().Debug("session replaced during refresh; replaying", "method", req.Method, "path", req.URL.Path)
		return t.send(replay, current, retried)
	}
	if err != nil {
		t.log().Warn("credential refresh failed", "method", req.Method, "path", req.URL.Path, "err", err)
		t.Session.Expire(ctx, err)
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	return t.send(replay, fresh, retried)
}

func (t *RefreshingTransport) send(replay func() (*http.Request, error), token string, at attempt) (*http.Response, error) {
	req, err := replay()
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Del("Authorization")
	}
	resp, err := t.base().RoundTrip(req)
	if err == nil {
		t.log().Debug("request", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "attempt", at.String())
	}
	return resp, err
}

// replayable returns a function producing fresh clones of req, each with its own body.
// A RoundTripper must not modify the caller's request.
func replayable(req *http.Request) (func() (*http.Request, error), error) {
	getBody := req.GetBody
	if req.Body != nil && req.Body != http.NoBody && getBody == nil {
		b, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("transport: buffer request body: %w", err)
		}
		getBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(b)), nil }
	}

	first := true
	return func() (*http.Request, error) {
		clone := req.Clone(req.Context())
		switch {
		case getBody != nil:
			if first && req.GetBody != nil {
				// the caller's body is still unread on the first send
				clone.Body = req.Body
			} else {
				body, err := getBody()
				if err != nil {
					return nil, fmt.Errorf("transport: replay request body: %w", err)
				}
				clone.Body = body
			}
		default:
			clone.Body = req.Body
		}
		first = false
		return clone, nil
	}, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
