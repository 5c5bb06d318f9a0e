// internal/app/system/notify/logsink.go
package notify

import "go.uber.org/zap"

// LogSink writes notices to the structured log.
type LogSink struct {
	Log *zap.Logger
}

func (s LogSink) Deliver(n Notice) {
	fields := []zap.Field{
		zap.String("notice_id", n.ID),
		zap.String("kind", n.Kind),
		zap.String("title", n.Title),
		zap.String("message", n.Message),
	}
	if n.GroupID != "" {
		fields = append(fields, zap.String("group_id", n.GroupID))
	}
	switch n.Kind {
	case KindError:
		s.Log.Warn("notice", fields...)
	default:
		s.Log.Info("notice", fields...)
	}
}
