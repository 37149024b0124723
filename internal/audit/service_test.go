package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestService_AppendRequiresType(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, SourceClient)

	if err := svc.Append(context.Background(), Event{}); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
	if err := NewService(repo, "").Append(context.Background(), Event{Type: EventLogout}); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent without source, got %v", err)
	}
}

func TestService_AppendsImmutableEvents(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, SourceBackend)

	svc.LogTokenIssued(context.Background(), Actor{UserID: "u", Email: "u@campus.edu", Role: "ADMIN"}, "1.2.3.4", "password")

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event")
	}
	if evs[0].IPAddress != "1.2.3.4" {
		t.Fatalf("expected ip captured")
	}
	if evs[0].Type != EventTokenIssued || evs[0].Source != SourceBackend {
		t.Fatalf("unexpected event: %+v", evs[0])
	}
	if evs[0].ID == "" || evs[0].CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp assigned")
	}
}

func TestService_LoginAndRefreshOutcomes(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, SourceClient).ForProfile("work")
	ctx := context.Background()

	svc.LogLogin(ctx, Actor{Email: "a@campus.edu"}, false)
	svc.LogLogin(ctx, Actor{Email: "a@campus.edu"}, true)
	svc.LogRefresh(ctx, Actor{}, nil)
	svc.LogRefresh(ctx, Actor{}, errors.New("refresh rejected"))
	svc.LogLogout(ctx, Actor{})

	want := []EventType{EventLoginFailed, EventLoginSucceeded, EventTokenRefreshed, EventRefreshFailed, EventLogout}
	got := repo.Types()
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: got %s want %s", i, got[i], want[i])
		}
	}
	if p := repo.Events()[0].Profile; p != "work" {
		t.Fatalf("expected profile stamped, got %q", p)
	}
}

func TestService_ResourceDeletedNamesTarget(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, SourceBackend)

	svc.LogResourceDeleted(context.Background(), Actor{UserID: "1", Email: "admin@campus.edu", Role: "ADMIN"}, "club", "7")

	evs := repo.Events()
	if len(evs) != 1 || evs[0].Type != EventResourceDeleted {
		t.Fatalf("unexpected events: %+v", evs)
	}
	if evs[0].ActorEmail != "admin@campus.edu" || evs[0].Message != "club 7" {
		t.Fatalf("unexpected event: %+v", evs[0])
	}
}

type failingRepo struct{}

func (failingRepo) Append(context.Context, Event) error { return errors.New("disk full") }

func TestService_RecordIsBestEffort(t *testing.T) {
	var svc *Service
	svc.Record(context.Background(), Event{Type: EventLogout}) // nil service is a no-op

	NewService(failingRepo{}, SourceClient).Record(context.Background(), Event{Type: EventLogout})
}

func TestLogRepo_WritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	repo := NewLogRepo(slog.New(slog.NewJSONHandler(&buf, nil)))
	svc := NewService(repo, SourceClient)

	svc.LogCredentialDiscarded(context.Background(), "malformed credential")

	out := buf.String()
	if !strings.Contains(out, `"type":"credential_discarded"`) || !strings.Contains(out, `"message":"malformed credential"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}
