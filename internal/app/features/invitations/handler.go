// internal/app/features/invitations/handler.go
package invitations

import (
	"errors"
	"net/http"

	"github.com/dalemusser/projecthub/internal/app/features/shared/respond"
	"github.com/dalemusser/projecthub/internal/app/lifecycle"
	"github.com/dalemusser/projecthub/internal/app/policy/grouprules"
	"github.com/dalemusser/projecthub/internal/app/system/auth"
	"github.com/dalemusser/projecthub/internal/app/system/inputval"
	invites "github.com/dalemusser/projecthub/internal/app/system/invitations"
	"github.com/dalemusser/projecthub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// KindInvalidInvitation reports a tampered, expired or malformed token.
const KindInvalidInvitation = "InvalidInvitation"

// Handler redeems emailed invitation links.
type Handler struct {
	Engine *lifecycle.Engine
	Tokens *invites.Codec
	Log    *zap.Logger
}

// NewHandler constructs an invitations Handler.
func NewHandler(engine *lifecycle.Engine, tokens *invites.Codec, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Tokens: tokens, Log: logger}
}

// Routes mounts the accept endpoint behind requireUser. A non-nil limiter
// caps redemption attempts per signed-in student.
func Routes(h *Handler, requireUser func(http.Handler) http.Handler, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.Use(requireUser)
	if limiter != nil {
		r.Use(limiter.Middleware(userKey))
	}
	r.Post("/accept", h.HandleAccept)
	return r
}

func userKey(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		return "user:" + u.ID
	}
	return ""
}

type acceptRequest struct {
	Token string `json:"token" validate:"notblank"`
}

// HandleAccept handles POST /invitations/accept. The token must verify and
// must have been issued to the signed-in student's address; the join itself
// goes through the engine and its rules.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Unauthorized(w)
		return
	}
	var req acceptRequest
	if err := inputval.DecodeJSON(w, r, &req); err != nil {
		respond.BadInput(w, h.Log, err)
		return
	}

	claims, err := h.Tokens.Parse(req.Token)
	if err != nil {
		if !errors.Is(err, invites.ErrInvalidToken) {
			h.Log.Warn("invitation token parse failed", zap.Error(err))
		}
		respond.Error(w, http.StatusBadRequest, KindInvalidInvitation,
			"This invitation link is invalid or has expired.")
		return
	}
	if grouprules.FoldEmail(claims.Email) != grouprules.FoldEmail(u.Email) {
		h.Log.Info("invitation redeemed by another address",
			zap.String("group_id", claims.GroupID),
			zap.String("user_id", u.ID))
		respond.Forbidden(w, "This invitation was sent to a different email address.")
		return
	}

	respond.Result(w, h.Engine.JoinGroup(r.Context(), claims.GroupID, u.ID))
}
