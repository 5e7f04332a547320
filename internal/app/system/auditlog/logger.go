// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/assignportal/internal/app/store/audit"
	"github.com/dalemusser/assignportal/internal/app/system/ratelimit"
	"github.com/dalemusser/assignportal/internal/domain/models"
	"go.uber.org/zap"
)

// Destination settings for a category.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls register/login events. Values: all, db, log, off.
	Auth string
	// Admin controls assignment decisions. Values: all, db, log, off.
	Admin string
}

// ValidMode reports whether s is an accepted destination setting.
func ValidMode(s string) bool {
	switch s {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Logger records audit events to MongoDB (via audit.Store) and/or zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.Username != "" {
		fields = append(fields, zap.String("username", event.Username))
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to the category's setting.
// A nil Logger is a no-op. Storage failures are logged, never returned:
// auditing must not fail the request.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = ModeAll
	}

	if setting == ModeOff || setting == "" {
		return
	}
	if (setting == ModeAll || setting == ModeLog) && l.zapLog != nil {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil && l.zapLog != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func fromRequest(r *http.Request, category, eventType string) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// --- Authentication Events ---

// UserRegistered logs a successful registration.
func (l *Logger) UserRegistered(ctx context.Context, r *http.Request, username, role string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventUserRegistered)
	e.Username = username
	e.Success = true
	e.Details = map[string]string{"role": role}
	l.Log(ctx, e)
}

// RegisterFailed logs a rejected registration.
func (l *Logger) RegisterFailed(ctx context.Context, r *http.Request, username, reason string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventRegisterFailed)
	e.Username = username
	e.FailureReason = reason
	l.Log(ctx, e)
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, username string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginSuccess)
	e.Username = username
	e.Success = true
	l.Log(ctx, e)
}

// LoginFailed logs a login with invalid credentials.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, username string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginFailed)
	e.Username = username
	e.FailureReason = "invalid credentials"
	l.Log(ctx, e)
}

// LoginRateLimited logs a login attempt refused by the limiter.
func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, username string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit)
	e.Username = username
	e.FailureReason = "rate limited"
	l.Log(ctx, e)
}

// --- Admin Events ---

// AssignmentDecided logs an accept or reject by actor.
func (l *Logger) AssignmentDecided(ctx context.Context, r *http.Request, actor string, a models.Assignment) {
	eventType := audit.EventAssignmentAccepted
	if a.Status == models.StatusRejected {
		eventType = audit.EventAssignmentRejected
	}
	e := fromRequest(r, audit.CategoryAdmin, eventType)
	e.Username = a.UserID
	e.Actor = actor
	e.Success = true
	e.Details = map[string]string{"assignment_id": a.ID.Hex()}
	l.Log(ctx, e)
}
