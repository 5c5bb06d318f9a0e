// internal/app/features/groups/handler.go
package groups

import (
	"github.com/dalemusser/projecthub/internal/app/lifecycle"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the groups feature.
// Every route delegates to the lifecycle engine, which owns validation and
// storage; the handlers only bind requests and render results.
type Handler struct {
	Engine *lifecycle.Engine
	Log    *zap.Logger
}

// NewHandler constructs a new groups Handler. It is typically called
// from the bootstrap BuildHandler function.
func NewHandler(engine *lifecycle.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		Engine: engine,
		Log:    logger,
	}
}
