// internal/app/features/students/handler.go
package students

import (
	"net/http"

	"github.com/dalemusser/projecthub/internal/app/features/shared/respond"
	"github.com/dalemusser/projecthub/internal/app/lifecycle"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the available-student search used by invite pickers.
type Handler struct {
	Engine *lifecycle.Engine
	Log    *zap.Logger
}

// NewHandler constructs a students Handler.
func NewHandler(engine *lifecycle.Engine, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: logger}
}

// Routes mounts the search endpoint behind requireUser.
func Routes(h *Handler, requireUser func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.With(requireUser).Get("/search", h.ServeSearch)
	return r
}

// ServeSearch handles GET /students/search?q=.
//
// A query shorter than two characters returns an empty list; a directory
// failure returns 502 with a generic message.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	res := h.Engine.SearchAvailableStudents(r.Context(), r.URL.Query().Get("q"))
	if res.Students == nil {
		res.Students = []models.Student{}
	}
	respond.JSON(w, respond.Status(res.Result, false), res)
}
