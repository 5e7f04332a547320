// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"
	"time"

	"github.com/dalemusser/assignportal/internal/app/store/audit"
	"go.uber.org/zap"
)

// EventReader queries stored audit events. *audit.Store satisfies it.
type EventReader interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	CountByFilter(ctx context.Context, filter audit.QueryFilter) (int64, error)
	GetFailedLogins(ctx context.Context, since time.Time, limit int64) ([]audit.Event, error)
}

type Handler struct {
	Events EventReader
	Log    *zap.Logger
}

// NewHandler constructs the audit log handler.
func NewHandler(events EventReader, logger *zap.Logger) *Handler {
	return &Handler{Events: events, Log: logger}
}
