// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"strings"

	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.uber.org/zap"
)

// Destination modes.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off" // disabled
)

// EventStore persists audit events. *audit.Store implements it.
type EventStore interface {
	Log(ctx context.Context, event models.AuditEvent) error
}

// Config holds audit logging configuration.
type Config struct {
	// Mode is one of "all", "db", "log" or "off". Unknown values mean "all".
	Mode string
}

// Logger records group lifecycle events to structured logs and, when a
// store is configured, to MongoDB.
type Logger struct {
	store  EventStore
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil, in which case only the
// zap destination is used.
func New(store EventStore, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) mode() string {
	switch m := strings.ToLower(strings.TrimSpace(l.config.Mode)); m {
	case ModeDB, ModeLog, ModeOff:
		return m
	default:
		return ModeAll
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event models.AuditEvent) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.GroupID != "" {
		fields = append(fields, zap.String("group_id", event.GroupID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.TargetID != "" {
		fields = append(fields, zap.String("target_id", event.TargetID))
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

// Record logs event according to the configured mode.
// A nil Logger is a no-op so tests can leave it unset.
func (l *Logger) Record(ctx context.Context, event models.AuditEvent) {
	if l == nil {
		return
	}
	mode := l.mode()
	if mode == ModeOff {
		return
	}

	if mode == ModeAll || mode == ModeLog {
		l.logToZap(event)
	}

	if (mode == ModeAll || mode == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}
