// internal/app/features/groups/create.go
package groups

import (
	"net/http"

	"github.com/dalemusser/projecthub/internal/app/features/shared/respond"
	"github.com/dalemusser/projecthub/internal/app/lifecycle"
	"github.com/dalemusser/projecthub/internal/app/policy/grouprules"
	"github.com/dalemusser/projecthub/internal/app/system/auth"
	"github.com/dalemusser/projecthub/internal/app/system/inputval"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HandleCreateGroup handles POST /groups. A student creates groups they
// lead: the single leader entry is bound to the session user, and a leader
// listed under another address is refused. Administrators may create a
// group on a student's behalf.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Unauthorized(w)
		return
	}
	var req createGroupRequest
	if err := inputval.DecodeJSON(w, r, &req); err != nil {
		respond.BadInput(w, h.Log, err)
		return
	}

	members := roster(req.Members)
	if !u.IsAdmin() && !bindLeader(members, u) {
		h.Log.Info("group creation for another leader refused", zap.String("user_id", u.ID))
		respond.Forbidden(w, "You can only create a group that you lead.")
		return
	}

	res := h.Engine.CreateGroup(r.Context(), lifecycle.CreateGroupInput{
		Name:       req.Name,
		ProjectRef: req.ProjectRef,
		ProposalID: req.ProposalID,
		MaxMembers: req.MaxMembers,
		Members:    members,
	})
	respond.Created(w, res)
}

// bindLeader ties the lone leader entry to u. It reports false when that
// entry names a different email. Rosters with no leader or several leaders
// are left for the creation rules to reject.
func bindLeader(members []models.GroupMember, u *auth.SessionUser) bool {
	idx := -1
	for i, m := range members {
		if m.IsLeader() {
			if idx >= 0 {
				return true
			}
			idx = i
		}
	}
	if idx < 0 {
		return true
	}

	l := &members[idx]
	if l.Email != "" && u.Email != "" && grouprules.FoldEmail(l.Email) != grouprules.FoldEmail(u.Email) {
		return false
	}
	l.ID = u.ID
	l.StudentID = u.ID
	if l.Email == "" {
		l.Email = u.Email
	}
	if l.Name == "" {
		l.Name = u.Name
	}
	return true
}

// ServeGroup handles GET /groups/{id}.
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	respond.Result(w, h.Engine.GetGroup(r.Context(), chi.URLParam(r, "id")))
}

// ServeMine handles GET /groups/mine: the groups the signed-in student is
// seated in.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Unauthorized(w)
		return
	}
	res := h.Engine.ListStudentGroups(r.Context(), u.ID)
	respond.JSON(w, respond.Status(res.Result, false), res)
}
