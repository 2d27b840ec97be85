// internal/app/system/auditlog/logger.go

// Package auditlog records security-relevant events to MongoDB and zap.
// Destinations are configurable per category so operators can turn the
// database trail off without losing structured logs (or vice versa).
package auditlog

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/localchambers/localchambers/internal/app/store/audit"
	"github.com/localchambers/localchambers/internal/app/system/ratelimit"
)

// Config controls logging per event category.
// Values: "all" (MongoDB + zap), "db", "log", "off".
type Config struct {
	Verify string
	Admin  string
	Auth   string
}

// Logger writes audit events per configuration. A nil *Logger is a no-op,
// which keeps tests free of audit plumbing.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates an audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) settingFor(category string) string {
	switch category {
	case audit.CategoryVerify:
		return l.config.Verify
	case audit.CategoryAdmin:
		return l.config.Admin
	case audit.CategoryAuth:
		return l.config.Auth
	default:
		return "all"
	}
}

// Log records an event to the configured destinations. Database failures
// are logged and swallowed; an audit write must never fail the request
// it describes.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}
	setting := l.settingFor(event.Category)
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("audit event write failed",
				zap.String("event_type", event.EventType),
				zap.Error(err))
		}
	}
}

// LogRequest is Log with the client IP filled in from the request.
func (l *Logger) LogRequest(r *http.Request, event audit.Event) {
	if l == nil {
		return
	}
	event.IP = ratelimit.ClientIP(r)
	l.Log(r.Context(), event)
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.ChamberID != "" {
		fields = append(fields, zap.String("chamber_id", event.ChamberID))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
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
