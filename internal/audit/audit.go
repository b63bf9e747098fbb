// Package audit appends immutable outcome records for every security-relevant
// action. When durable storage is unavailable the trail degrades to structured
// log output; it never vanishes and never blocks the response path.
package audit

import (
	"context"
	"strings"
	"time"

	"carefront.org/internal/obs"
)

// Outcome classifies how the audited action ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Entry is one append-only audit record. Once written it is never mutated or
// deleted by this service. Metadata carries reason codes only, never payload
// contents.
type Entry struct {
	TenantID     string
	ActorID      string
	ActorRole    string
	Action       string
	ResourceType string
	ResourceID   string
	Outcome      Outcome
	Metadata     map[string]string
	RequestID    string
	OccurredAt   time.Time
}

// Store appends entries to durable storage.
type Store interface {
	AppendAudit(ctx context.Context, entry Entry) error
}

const writeTimeout = 2 * time.Second

// Logger writes audit entries. A nil Store is a supported degraded mode.
type Logger struct {
	store   Store
	timeout time.Duration
	now     func() time.Time
}

// NewLogger creates a Logger over the given store; store may be nil.
func NewLogger(store Store) *Logger {
	return &Logger{store: store, timeout: writeTimeout, now: time.Now}
}

// Write records the entry. It never reports an error to the caller: a failed
// or unconfigured durable write falls back to a structured log line carrying
// the same fields. The write is detached from the request's cancellation so
// an aborted caller cannot lose the record.
func (l *Logger) Write(ctx context.Context, entry Entry) {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = l.now().UTC()
	}
	if entry.Outcome == "" {
		entry.Outcome = OutcomeSuccess
	}

	if l.store != nil {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		if err := l.store.AppendAudit(writeCtx, entry); err == nil {
			return
		}
	}

	obs.CountAuditDegraded()
	obs.Log("info", "audit", logFields(entry))
}

func logFields(entry Entry) map[string]any {
	fields := map[string]any{
		"type":          "audit",
		"tenant_id":     entry.TenantID,
		"actor_id":      entry.ActorID,
		"actor_role":    entry.ActorRole,
		"action":        entry.Action,
		"resource_type": entry.ResourceType,
		"outcome":       string(entry.Outcome),
		"occurred_at":   entry.OccurredAt.Format(time.RFC3339Nano),
	}
	if entry.ResourceID != "" {
		fields["resource_id"] = entry.ResourceID
	}
	if rid := strings.TrimSpace(entry.RequestID); rid != "" {
		fields["request_id"] = rid
	}
	if len(entry.Metadata) > 0 {
		meta := make(map[string]string, len(entry.Metadata))
		for k, v := range entry.Metadata {
			meta[k] = v
		}
		fields["metadata"] = meta
	}
	return fields
}
