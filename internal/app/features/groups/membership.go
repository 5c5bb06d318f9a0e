// internal/app/features/groups/membership.go
package groups

import (
	"net/http"

	"github.com/dalemusser/projecthub/internal/app/features/shared/respond"
	"github.com/dalemusser/projecthub/internal/app/lifecycle"
	"github.com/dalemusser/projecthub/internal/app/system/auth"
	"github.com/dalemusser/projecthub/internal/app/system/inputval"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// HandleInvite handles POST /groups/{id}/invitations.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := inputval.DecodeJSON(w, r, &req); err != nil {
		respond.BadInput(w, h.Log, err)
		return
	}
	respond.Result(w, h.Engine.InviteMember(r.Context(), lifecycle.InviteInput{
		GroupID:         chi.URLParam(r, "id"),
		Email:           req.Email,
		Message:         req.Message,
		ExpectedVersion: req.ExpectedVersion,
	}))
}

// HandleJoin handles POST /groups/{id}/join for the signed-in student.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Unauthorized(w)
		return
	}
	respond.Result(w, h.Engine.JoinGroup(r.Context(), chi.URLParam(r, "id"), u.ID))
}

// HandleDecline handles POST /groups/{id}/decline for the signed-in student.
func (h *Handler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Unauthorized(w)
		return
	}
	respond.Result(w, h.Engine.DeclineInvitation(r.Context(), chi.URLParam(r, "id"), u.ID))
}

// HandleLeave handles POST /groups/{id}/leave. When actingMemberId is
// omitted the signed-in student's seat is used.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Unauthorized(w)
		return
	}
	var req leaveRequest
	if err := inputval.DecodeJSON(w, r, &req); err != nil {
		respond.BadInput(w, h.Log, err)
		return
	}

	groupID := chi.URLParam(r, "id")
	members, version, fail := h.snapshot(r, groupID, req.Members, req.ExpectedVersion)
	if fail != nil {
		respond.Result(w, *fail)
		return
	}
	acting := req.ActingMemberID
	if acting == "" {
		acting = seatOf(members, u.ID)
	}

	respond.Result(w, h.Engine.LeaveGroup(r.Context(), lifecycle.LeaveInput{
		GroupID:         groupID,
		Members:         members,
		ActingMemberID:  acting,
		ExpectedVersion: version,
	}))
}

// HandleRemoveMember handles POST /groups/{id}/members/{memberID}/remove.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Unauthorized(w)
		return
	}
	var req removeRequest
	if err := inputval.DecodeJSON(w, r, &req); err != nil {
		respond.BadInput(w, h.Log, err)
		return
	}

	groupID := chi.URLParam(r, "id")
	members, version, fail := h.snapshot(r, groupID, req.Members, req.ExpectedVersion)
	if fail != nil {
		respond.Result(w, *fail)
		return
	}

	respond.Result(w, h.Engine.RemoveMember(r.Context(), lifecycle.RemoveInput{
		GroupID:         groupID,
		MemberID:        chi.URLParam(r, "memberID"),
		Members:         members,
		ActorID:         u.ID,
		ExpectedVersion: version,
	}))
}

// HandleAssignLeader handles POST /groups/{id}/leader.
func (h *Handler) HandleAssignLeader(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Unauthorized(w)
		return
	}
	var req assignLeaderRequest
	if err := inputval.DecodeJSON(w, r, &req); err != nil {
		respond.BadInput(w, h.Log, err)
		return
	}
	respond.Result(w, h.Engine.AssignNewLeader(r.Context(), lifecycle.AssignLeaderInput{
		GroupID:         chi.URLParam(r, "id"),
		NewLeaderID:     req.NewLeaderID,
		ActorID:         u.ID,
		ExpectedVersion: req.ExpectedVersion,
	}))
}

// snapshot returns the roster the caller acted on. A roster sent in the body
// is used as is; otherwise the live group is loaded and its version pinned
// so a concurrent edit between load and commit is reported as stale.
func (h *Handler) snapshot(r *http.Request, groupID string, in []memberInput, version int64) ([]models.GroupMember, int64, *lifecycle.Result) {
	if in != nil {
		return roster(in), version, nil
	}
	res := h.Engine.GetGroup(r.Context(), groupID)
	if !res.OK {
		return nil, 0, &res
	}
	if version == 0 {
		version = res.Group.Version
	}
	return res.Group.Members, version, nil
}

// seatOf finds the member id held by a student, falling back to the
// student id itself.
func seatOf(members []models.GroupMember, studentID string) string {
	for _, m := range members {
		if m.StudentID == studentID {
			return m.ID
		}
	}
	return studentID
}
