package services

import (
	"context"
	"log/slog"
	"ticketeira/src/models"
	"ticketeira/src/types"
	"time"

	"github.com/google/uuid"
)

// ActivityLogger is the audit sink. Writes are best-effort: a failed write
// is logged and never fails the operation being audited.
type ActivityLogger struct {
	store   ActivityStore
	timeout time.Duration
	log     *slog.Logger
}

func NewActivityLogger(store ActivityStore, timeout time.Duration, logger *slog.Logger) *ActivityLogger {
	return &ActivityLogger{store: store, timeout: timeout, log: logger.With("component", "activity")}
}

func (a *ActivityLogger) Record(ctx context.Context, actorID uuid.UUID, action, entityType, entityID string, metadata types.JSONB) {
	if a == nil || a.store == nil {
		return
	}
	entry := &models.ActivityLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
	}
	if actorID != uuid.Nil {
		entry.ActorID = &actorID
	}
	ctx, cancel := withTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()
	if err := a.store.LogActivity(ctx, entry); err != nil {
		a.log.Warn("activity log write failed", "action", action, "entity_id", entityID, "error", err.Error())
	}
}
