// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	"github.com/dalemusser/projecthub/internal/app/store/audit"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.uber.org/zap"
)

// EventQuery reads recorded lifecycle events.
type EventQuery interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]models.AuditEvent, error)
	CountByFilter(ctx context.Context, filter audit.QueryFilter) (int64, error)
}

type Handler struct {
	Events EventQuery
	Log    *zap.Logger
}

// NewHandler constructs an Audit Log feature handler bound to the given
// event store and logger.
func NewHandler(events EventQuery, logger *zap.Logger) *Handler {
	return &Handler{
		Events: events,
		Log:    logger,
	}
}
