package audit

import (
	"context"
	"log/slog"
)

// LogRepo writes each event as a structured log record. It is the client's default sink.
type LogRepo struct {
	log *slog.Logger
}

func NewLogRepo(l *slog.Logger) *LogRepo {
	if l == nil {
		l = slog.Default()
	}
	return &LogRepo{log: l}
}

func (r *LogRepo) Append(ctx context.Context, e Event) error {
	attrs := []any{
		"audit_id", e.ID,
		"source", string(e.Source),
		"type", string(e.Type),
		"created_at", e.CreatedAt,
	}
	if e.ActorUserID != "" {
		attrs = append(attrs, "actor_user_id", e.ActorUserID)
	}
	if e.ActorRole != "" {
		attrs = append(attrs, "actor_role", e.ActorRole)
	}
	if e.Profile != "" {
		attrs = append(attrs, "profile", e.Profile)
	}
	if e.IPAddress != "" {
		attrs = append(attrs, "ip_address", e.IPAddress)
	}
	if e.Message != "" {
		attrs = append(attrs, "message", e.Message)
	}
	r.log.InfoContext(ctx, "audit", attrs...)
	return nil
}
