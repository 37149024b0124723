package navigation

import (
	"context"
	"errors"
	"testing"
	"time"

	"clubhub/internal/auth"
	"clubhub/internal/config"
	"clubhub/internal/rbac"
	"clubhub/internal/session"
	"clubhub/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type issuer struct {
	m   *auth.Manager
	sub auth.Subject
}

func (i issuer) Obtain(_ context.Context, email, password string) (session.Pair, error) {
	if email != i.sub.Email || password != "pw" {
		return session.Pair{}, errors.New("rejected")
	}
	p, err := i.m.IssuePair(time.Now(), i.sub)
	return session.Pair{Access: p.AccessToken, Refresh: p.RefreshToken}, err
}

func (i issuer) Refresh(context.Context, string) (session.Pair, error) {
	return session.Pair{}, errors.New("rejected")
}

func newSession(t *testing.T, userType string) *session.Authenticator {
	t.Helper()
	m, err := auth.NewManager(config.AuthConfig{JWTSecret: "s", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	require.NoError(t, err)
	sub := auth.Subject{UserID: "1", Email: "u@campus.edu", UserType: userType}
	a := session.NewAuthenticator(session.NewMemoryStore(), issuer{m: m, sub: sub}, session.WithLogger(logger.Discard()))
	a.Initialize(context.Background())
	return a
}

func TestResolve_RouteTable(t *testing.T) {
	cases := []struct {
		name string
		role rbac.Role
		want rbac.View
	}{
		{"home", "", rbac.ViewHome},
		{"login", rbac.RoleAdmin, rbac.ViewLogin},
		{"register", "", rbac.ViewRegister},
		{"clubs", "", rbac.ViewLogin},
		{"clubs", rbac.RoleStudent, rbac.ViewClubs},
		{"events", rbac.RoleEventAdmin, rbac.ViewEvents},
		{"dashboard", "", rbac.ViewLogin},
		{"dashboard", rbac.RoleStudent, rbac.ViewStudentDashboard},
		{"dashboard", rbac.RoleEventAdmin, rbac.ViewEventAdminDashboard},
		{"student-dashboard", "", rbac.ViewLogin},
		{"student-dashboard", rbac.RoleAdmin, rbac.ViewAdminDashboard},
		{"admin-dashboard", rbac.RoleStudent, rbac.ViewStudentDashboard},
		{"event-admin-dashboard", rbac.RoleEventAdmin, rbac.ViewEventAdminDashboard},
		{"no-such-page", rbac.RoleStudent, rbac.ViewHome},
		{"  Clubs ", rbac.RoleStudent, rbac.ViewClubs},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Resolve(tc.name, tc.role), "%q as %q", tc.name, tc.role)
	}
}

func TestResolve_NeverRendersRestrictedForOthers(t *testing.T) {
	roles := append([]rbac.Role{""}, rbac.Roles...)
	for view, r := range routes {
		if r.Public || len(r.Allowed) == 0 {
			continue
		}
		for _, role := range roles {
			got := Resolve(string(view), role)
			if got == view {
				assert.Contains(t, r.Allowed, role, "%s rendered for %q", view, role)
			}
		}
	}
}

func TestScenarioA_AdminRedirectedFromEventAdminView(t *testing.T) {
	ctx := context.Background()
	a := newSession(t, "ADMIN")
	n := New(a.State(), logger.Discard())
	defer n.Close()

	view, err := a.Login(ctx, "u@campus.edu", "pw")
	require.NoError(t, err)
	assert.Equal(t, rbac.ViewAdminDashboard, view)

	ev := n.Navigate(string(rbac.ViewEventAdminDashboard))
	assert.True(t, ev.Redirected)
	assert.Equal(t, rbac.ViewAdminDashboard, ev.View)
	assert.Equal(t, rbac.ViewAdminDashboard, n.Current())
}

func TestScenarioB_AnonymousSentToLogin(t *testing.T) {
	a := newSession(t, "STUDENT")
	n := New(a.State(), logger.Discard())
	defer n.Close()

	ev := n.Navigate(string(rbac.ViewStudentDashboard))
	assert.Equal(t, rbac.ViewLogin, ev.View)
	assert.True(t, ev.Redirected)
}

func TestUnknownDestinationIsRedirectedHome(t *testing.T) {
	a := newSession(t, "STUDENT")
	n := New(a.State(), logger.Discard())
	defer n.Close()

	ev := n.Navigate("no-such-page")
	assert.Equal(t, rbac.ViewHome, ev.View)
	assert.True(t, ev.Redirected)

	ev = n.Navigate("  Home ")
	assert.Equal(t, rbac.ViewHome, ev.View)
	assert.False(t, ev.Redirected, "case and spacing are not a redirect")
}

func TestLogoutReevaluatesRestrictedView(t *testing.T) {
	ctx := context.Background()
	a := newSession(t, "STUDENT")
	n := New(a.State(), logger.Discard())
	defer n.Close()

	var events []Event
	n.OnChange(func(e Event) { events = append(events, e) })

	_, err := a.Login(ctx, "u@campus.edu", "pw")
	require.NoError(t, err)
	n.Navigate(string(rbac.ViewClubs))
	require.Equal(t, rbac.ViewClubs, n.Current())

	a.Logout(ctx)
	assert.Equal(t, rbac.ViewLogin, n.Current())
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, session.ReasonLogout, last.Reason)
	assert.False(t, last.Forced)
}

func TestLogoutOnPublicViewStays(t *testing.T) {
	ctx := context.Background()
	a := newSession(t, "STUDENT")
	n := New(a.State(), logger.Discard())
	defer n.Close()

	_, err := a.Login(ctx, "u@campus.edu", "pw")
	require.NoError(t, err)
	n.Navigate(string(rbac.ViewHome))

	a.Logout(ctx)
	assert.Equal(t, rbac.ViewHome, n.Current())
}

func TestRefreshFailureForcesLogin(t *testing.T) {
	ctx := context.Background()
	a := newSession(t, "STUDENT")
	n := New(a.State(), logger.Discard())
	defer n.Close()

	var forced []Event
	n.OnChange(func(e Event) {
		if e.Forced {
			forced = append(forced, e)
		}
	})

	_, err := a.Login(ctx, "u@campus.edu", "pw")
	require.NoError(t, err)
	n.Navigate(string(rbac.ViewHome))

	_, err = a.Refresh(ctx)
	require.Error(t, err)
	a.Expire(ctx, err)

	assert.Equal(t, rbac.ViewLogin, n.Current())
	require.Len(t, forced, 1)
	assert.Equal(t, session.ReasonRefreshFailed, forced[0].Reason)
}

func TestCloseStopsFollowingSession(t *testing.T) {
	ctx := context.Background()
	a := newSession(t, "STUDENT")
	n := New(a.State(), logger.Discard())

	_, err := a.Login(ctx, "u@campus.edu", "pw")
	require.NoError(t, err)
	n.Navigate(string(rbac.ViewClubs))
	n.Close()

	a.Logout(ctx)
	assert.Equal(t, rbac.ViewClubs, n.Current())
}
