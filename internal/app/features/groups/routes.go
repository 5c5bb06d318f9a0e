// internal/app/features/groups/routes.go
package groups

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the group lifecycle endpoints. requireUser guards every
// route; it is the session manager's RequireSignedIn in production.
func Routes(h *Handler, requireUser func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(requireUser)

		// CREATE / VIEW
		pr.Post("/", h.HandleCreateGroup)
		pr.Get("/mine", h.ServeMine)
		pr.Get("/{id}", h.ServeGroup)

		// INVITATIONS
		pr.Post("/{id}/invitations", h.HandleInvite)
		pr.Post("/{id}/join", h.HandleJoin)
		pr.Post("/{id}/decline", h.HandleDecline)

		// MEMBERSHIP
		pr.Post("/{id}/leave", h.HandleLeave)
		pr.Post("/{id}/members/{memberID}/remove", h.HandleRemoveMember)

		// LEADERSHIP
		pr.Post("/{id}/leader", h.HandleAssignLeader)
	})

	return r
}
