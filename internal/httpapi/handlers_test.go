package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clubhub/internal/accounts"
	"clubhub/internal/audit"
	"clubhub/internal/auth"
	"clubhub/internal/config"
	"clubhub/internal/directory"
	"clubhub/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	router *gin.Engine
	auth   *auth.Manager
	audit  *audit.MemoryRepo
}

func newFixture(t *testing.T, rotate bool) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := auth.NewManager(config.AuthConfig{JWTSecret: "secret", JWTIssuer: "clubhub", AccessTokenTTL: 5 * time.Minute, RefreshTokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	acc, err := accounts.NewService(accounts.NewMemoryRepo(), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	dir := directory.NewService(directory.NewMemoryRepo())
	if err := SeedDemo(context.Background(), acc, dir, time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	repo := audit.NewMemoryRepo()

	h := Handlers{
		Auth:          m,
		Accounts:      acc,
		Directory:     dir,
		Audit:         audit.NewService(repo, audit.SourceBackend),
		RotateRefresh: rotate,
	}
	return fixture{router: NewRouter(h, logger.Discard()), auth: m, audit: repo}
}

func (f fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f fixture) login(t *testing.T, email, password string) tokenResponse {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/token", "", gin.H{"email": email, "password": password})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, w.Code, w.Body.String())
	}
	var out tokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestObtainToken(t *testing.T) {
	f := newFixture(t, false)

	tok := f.login(t, "student@clubhub.test", "student-pass-1")
	if tok.Access == "" || tok.Refresh == "" || tok.UserType != "STUDENT" {
		t.Fatalf("unexpected token response: %+v", tok)
	}
	claims, err := auth.Decode(tok.Access)
	if err != nil {
		t.Fatalf("issued access token must decode: %v", err)
	}
	if claims.Email != "student@clubhub.test" || claims.UserID.String() != tok.UserID {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	wrong := f.do(t, http.MethodPost, "/api/token", "", gin.H{"email": "student@clubhub.test", "password": "nope"})
	unknown := f.do(t, http.MethodPost, "/api/token", "", gin.H{"email": "ghost@clubhub.test", "password": "student-pass-1"})
	if wrong.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401s, got %d / %d", wrong.Code, unknown.Code)
	}
	if wrong.Body.String() != unknown.Body.String() {
		t.Fatalf("failure bodies differ: %s vs %s", wrong.Body.String(), unknown.Body.String())
	}

	if got := f.audit.Types(); len(got) != 1 || got[0] != audit.EventTokenIssued {
		t.Fatalf("unexpected audit trail: %v", got)
	}
}

func TestRefreshToken(t *testing.T) {
	for _, rotate := range []bool{false, true} {
		f := newFixture(t, rotate)
		tok := f.login(t, "admin@clubhub.test", "admin-pass-1")

		w := f.do(t, http.MethodPost, "/api/token/refresh", "", gin.H{"refresh": tok.Refresh})
		if w.Code != http.StatusOK {
			t.Fatalf("refresh: %d %s", w.Code, w.Body.String())
		}
		out := decode[tokenResponse](t, w)
		if out.Access == "" {
			t.Fatalf("expected access token")
		}
		if rotate != (out.Refresh != "") {
			t.Fatalf("rotate=%v but refresh=%q", rotate, out.Refresh)
		}

		if w := f.do(t, http.MethodPost, "/api/token/refresh", "", gin.H{"refresh": tok.Access}); w.Code != http.StatusUnauthorized {
			t.Fatalf("access token must not refresh: %d", w.Code)
		}
		if w := f.do(t, http.MethodPost, "/api/token/refresh", "", gin.H{"refresh": "garbage"}); w.Code != http.StatusUnauthorized {
			t.Fatalf("garbage must not refresh: %d", w.Code)
		}
	}
}

func TestRegister(t *testing.T) {
	f := newFixture(t, false)
	valid := gin.H{"email": "new@campus.edu", "password": "longenough", "password2": "longenough", "first_name": "N", "last_name": "U"}

	cases := []struct {
		name string
		body gin.H
		want int
	}{
		{"missing confirmation", gin.H{"email": "x@campus.edu", "password": "longenough", "first_name": "N", "last_name": "U"}, http.StatusBadRequest},
		{"mismatch", gin.H{"email": "x@campus.edu", "password": "longenough", "password2": "different1", "first_name": "N", "last_name": "U"}, http.StatusBadRequest},
		{"short password", gin.H{"email": "x@campus.edu", "password": "short", "password2": "short", "first_name": "N", "last_name": "U"}, http.StatusBadRequest},
		{"bad role", gin.H{"email": "x@campus.edu", "password": "longenough", "password2": "longenough", "first_name": "N", "last_name": "U", "user_type": "DEAN"}, http.StatusBadRequest},
		{"valid", valid, http.StatusCreated},
		{"duplicate", valid, http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := f.do(t, http.MethodPost, "/api/register", "", tc.body)
		if w.Code != tc.want {
			t.Fatalf("%s: got %d want %d (%s)", tc.name, w.Code, tc.want, w.Body.String())
		}
	}

	tok := f.login(t, "new@campus.edu", "longenough")
	if tok.UserType != "STUDENT" {
		t.Fatalf("default role must be STUDENT, got %q", tok.UserType)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture(t, false)

	if w := f.do(t, http.MethodGet, "/api/clubs", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	expired, err := f.auth.IssuePair(time.Now().Add(-time.Hour), auth.Subject{UserID: "3", Email: "student@clubhub.test", UserType: "STUDENT"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if w := f.do(t, http.MethodGet, "/api/clubs", expired.AccessToken, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", w.Code)
	}

	tok := f.login(t, "student@clubhub.test", "student-pass-1")
	w := f.do(t, http.MethodGet, "/api/clubs", tok.Access, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list clubs: %d", w.Code)
	}
	if clubs := decode[[]directory.Club](t, w); len(clubs) != 3 {
		t.Fatalf("expected seeded clubs, got %d", len(clubs))
	}

	me := decode[userResponse](t, f.do(t, http.MethodGet, "/api/me", tok.Access, nil))
	if me.Email != "student@clubhub.test" {
		t.Fatalf("me: %+v", me)
	}
}

func TestClubWritesRequireAdmin(t *testing.T) {
	f := newFixture(t, false)
	student := f.login(t, "student@clubhub.test", "student-pass-1").Access
	admin := f.login(t, "admin@clubhub.test", "admin-pass-1").Access
	club := gin.H{"name": "Chess", "description": "d", "category": "Games", "meeting_time": "Mon", "location": "Hall", "email": "chess@campus.edu"}

	if w := f.do(t, http.MethodPost, "/api/clubs", student, club); w.Code != http.StatusForbidden {
		t.Fatalf("student create: %d", w.Code)
	}
	w := f.do(t, http.MethodPost, "/api/clubs", admin, club)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin create: %d %s", w.Code, w.Body.String())
	}
	created := decode[directory.Club](t, w)

	if w := f.do(t, http.MethodPatch, "/api/clubs/"+created.ID, admin, gin.H{"location": "Library"}); w.Code != http.StatusOK {
		t.Fatalf("admin update: %d", w.Code)
	}
	if w := f.do(t, http.MethodDelete, "/api/clubs/"+created.ID, student, nil); w.Code != http.StatusForbidden {
		t.Fatalf("student delete: %d", w.Code)
	}
	if w := f.do(t, http.MethodDelete, "/api/clubs/"+created.ID, admin, nil); w.Code != http.StatusNoContent {
		t.Fatalf("admin delete: %d", w.Code)
	}
	if w := f.do(t, http.MethodGet, "/api/clubs/"+created.ID, admin, nil); w.Code != http.StatusNotFound {
		t.Fatalf("deleted club: %d", w.Code)
	}
}

func TestMembershipAndRegistration(t *testing.T) {
	f := newFixture(t, false)
	student := f.login(t, "student@clubhub.test", "student-pass-1").Access
	admin := f.login(t, "admin@clubhub.test", "admin-pass-1").Access

	if w := f.do(t, http.MethodPost, "/api/clubs/1/join", admin, nil); w.Code != http.StatusForbidden {
		t.Fatalf("admin join: %d", w.Code)
	}
	if w := f.do(t, http.MethodPost, "/api/clubs/1/join", student, nil); w.Code != http.StatusOK {
		t.Fatalf("student join: %d", w.Code)
	}
	mine := decode[[]directory.Club](t, f.do(t, http.MethodGet, "/api/clubs?member=me", student, nil))
	if len(mine) != 1 || mine[0].MemberCount != 1 {
		t.Fatalf("member filter: %+v", mine)
	}
	if w := f.do(t, http.MethodPost, "/api/clubs/2/leave", student, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("leave non-member: %d", w.Code)
	}

	if w := f.do(t, http.MethodPost, "/api/events/1/register", student, nil); w.Code != http.StatusOK {
		t.Fatalf("register: %d", w.Code)
	}
	w := f.do(t, http.MethodPost, "/api/events/1/register", student, nil)
	if w.Code != http.StatusBadRequest || decode[map[string]string](t, w)["error"] != "already registered" {
		t.Fatalf("double register: %d %s", w.Code, w.Body.String())
	}
	if w := f.do(t, http.MethodPost, "/api/events/1/unregister", student, nil); w.Code != http.StatusOK {
		t.Fatalf("unregister: %d", w.Code)
	}
	if w := f.do(t, http.MethodPost, "/api/events/404/register", student, nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown event: %d", w.Code)
	}
}

func TestEventWritesRequireEventAdmin(t *testing.T) {
	f := newFixture(t, false)
	admin := f.login(t, "admin@clubhub.test", "admin-pass-1").Access
	events := f.login(t, "events@clubhub.test", "events-pass-1").Access
	body := gin.H{"title": "Open mic", "description": "d", "date": time.Now().Add(72 * time.Hour).Format(time.RFC3339), "location": "Hall", "club": "1"}

	if w := f.do(t, http.MethodPost, "/api/events", admin, body); w.Code != http.StatusForbidden {
		t.Fatalf("admin create event: %d", w.Code)
	}
	if w := f.do(t, http.MethodPost, "/api/events", events, body); w.Code != http.StatusCreated {
		t.Fatalf("event admin create: %d %s", w.Code, w.Body.String())
	}
	body["club"] = "999"
	if w := f.do(t, http.MethodPost, "/api/events", events, body); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown club: %d", w.Code)
	}
}

func TestDeleteRecordsCallerFromToken(t *testing.T) {
	f := newFixture(t, false)
	admin := f.login(t, "admin@clubhub.test", "admin-pass-1").Access
	events := f.login(t, "events@clubhub.test", "events-pass-1").Access

	if w := f.do(t, http.MethodDelete, "/api/clubs/2", admin, nil); w.Code != http.StatusNoContent {
		t.Fatalf("admin delete club: %d", w.Code)
	}
	if w := f.do(t, http.MethodDelete, "/api/events/1", events, nil); w.Code != http.StatusNoContent {
		t.Fatalf("event admin delete event: %d", w.Code)
	}
	if w := f.do(t, http.MethodDelete, "/api/events/404", events, nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown event: %d", w.Code)
	}

	var deleted []audit.Event
	for _, e := range f.audit.Events() {
		if e.Type == audit.EventResourceDeleted {
			deleted = append(deleted, e)
		}
	}
	if len(deleted) != 2 {
		t.Fatalf("want 2 resource_deleted events, got %+v", deleted)
	}
	if deleted[0].ActorEmail != "admin@clubhub.test" || deleted[0].ActorRole != "ADMIN" || deleted[0].ActorUserID == "" || deleted[0].Message != "club 2" {
		t.Fatalf("club delete actor: %+v", deleted[0])
	}
	if deleted[1].ActorEmail != "events@clubhub.test" || deleted[1].ActorRole != "EVENT_ADMIN" || deleted[1].Message != "event 1" {
		t.Fatalf("event delete actor: %+v", deleted[1])
	}
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	get := func(h Handlers) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		NewRouter(h, logger.Discard()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		return w
	}

	if w := get(Handlers{}); w.Code != http.StatusOK {
		t.Fatalf("no database configured: %d", w.Code)
	}
	if w := get(Handlers{DBCheck: func(context.Context) error { return nil }}); w.Code != http.StatusOK {
		t.Fatalf("healthy database: %d", w.Code)
	}

	w := get(Handlers{DBCheck: func(context.Context) error { return errors.New("postgres: ping: connection refused") }})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("down database: %d", w.Code)
	}
	if got := decode[map[string]string](t, w)["status"]; got != "degraded" {
		t.Fatalf("status: %q", got)
	}
}
