// internal/app/lifecycle/operations.go
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/projecthub/internal/app/policy/grouprules"
	"github.com/dalemusser/projecthub/internal/app/store/storeerr"
	"github.com/dalemusser/projecthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateGroupInput is a candidate group. Members must contain exactly one
// leader (the creator); anyone else listed is invited, not activated.
// ProposalID marks a conversion from an existing proposal, which makes
// ProjectRef optional.
type CreateGroupInput struct {
	Name       string
	ProjectRef string
	ProposalID string
	MaxMembers int
	Members    []models.GroupMember
}

// InviteInput invites Email into GroupID with an optional note.
type InviteInput struct {
	GroupID         string
	Email           string
	Message         string
	ExpectedVersion int64
}

// LeaveInput carries the caller's member snapshot; it is validated before
// any storage call.
type LeaveInput struct {
	GroupID         string
	Members         []models.GroupMember
	ActingMemberID  string
	ExpectedVersion int64
}

// RemoveInput removes MemberID on behalf of a leader or administrator.
type RemoveInput struct {
	GroupID         string
	MemberID        string
	Members         []models.GroupMember
	ActorID         string
	ExpectedVersion int64
}

// AssignLeaderInput hands the leader role to NewLeaderID.
type AssignLeaderInput struct {
	GroupID         string
	NewLeaderID     string
	ActorID         string
	ExpectedVersion int64
}

// CreateGroup validates and persists a new group.
func (e *Engine) CreateGroup(ctx context.Context, in CreateGroupInput) Result {
	actor := ""
	for _, m := range in.Members {
		if m.IsLeader() {
			actor = m.ID
			break
		}
	}
	return e.run(ctx, opCreate, actor, "", func(ctx context.Context) Result {
		candidate := models.Group{
			Name:       strings.TrimSpace(in.Name),
			ProjectRef: strings.TrimSpace(in.ProjectRef),
			ProposalID: strings.TrimSpace(in.ProposalID),
			MaxMembers: in.MaxMembers,
			Members:    in.Members,
		}
		if v := grouprules.ValidateGroupCreation(candidate, candidate.ProposalID == ""); v != nil {
			return rejected(v, "")
		}

		now := e.now()
		g := candidate
		g.NameCI = text.Fold(g.Name)
		g.Status = models.GroupActive
		g.CreatedAt = now
		g.UpdatedAt = now
		g.Members = make([]models.GroupMember, 0, len(in.Members))
		for _, m := range in.Members {
			g.Members = append(g.Members, e.seat(m, now))
		}
		if err := grouprules.CheckInvariants(g); err != nil {
			return e.fail(opCreate, "", fmt.Errorf("invariant: %w", err))
		}

		created, err := e.repo.Create(ctx, g)
		if err != nil {
			return e.fail(opCreate, "", err)
		}
		for _, m := range created.Members {
			if m.Status == models.MemberInvited {
				e.invites.SendInvitation(created.Clone(), m)
			}
		}
		return succeeded(created,
			"Group created. You may now invite members.",
			"Invite classmates to join your group.")
	})
}

// seat turns a candidate member into a stored one: the leader is active
// from the start, everyone else waits on an invitation.
func (e *Engine) seat(m models.GroupMember, now time.Time) models.GroupMember {
	m.Email = strings.TrimSpace(m.Email)
	m.EmailCI = grouprules.FoldEmail(m.Email)
	m.Name = strings.TrimSpace(m.Name)
	if m.ID == "" {
		if m.StudentID != "" {
			m.ID = m.StudentID
		} else {
			m.ID = e.newID()
		}
	}
	t := now
	if m.IsLeader() {
		m.Status = models.MemberActive
		m.JoinDate = &t
		m.InvitedAt = nil
	} else {
		m.Role = models.RoleMember
		m.Status = models.MemberInvited
		m.JoinDate = nil
		m.InvitedAt = &t
	}
	return m
}

// InviteMember adds an invited member entry for in.Email.
func (e *Engine) InviteMember(ctx context.Context, in InviteInput) Result {
	return e.run(ctx, opInvite, "", grouprules.FoldEmail(in.Email), func(ctx context.Context) Result {
		oid, ok := parseGroupID(in.GroupID)
		if !ok {
			return notFound(in.GroupID)
		}
		note := htmlsanitize.CleanNote(in.Message)
		email := strings.TrimSpace(in.Email)

		var invited models.GroupMember
		g, err := e.mutate(ctx, oid, in.ExpectedVersion, func(g *models.Group) error {
			if v := grouprules.ValidateInvite(g.Members, g.MaxMembers, email); v != nil {
				return v
			}
			now := e.now()
			invited = models.GroupMember{
				ID:            e.newID(),
				Email:         email,
				EmailCI:       grouprules.FoldEmail(email),
				Role:          models.RoleMember,
				Status:        models.MemberInvited,
				InvitedAt:     &now,
				InviteMessage: note,
			}
			g.Members = append(g.Members, invited)
			return nil
		})
		if err != nil {
			return e.fail(opInvite, in.GroupID, err)
		}

		e.invites.SendInvitation(g.Clone(), invited)
		return succeeded(g,
			fmt.Sprintf("Invitation sent to %s.", email),
			"Awaiting the invitee's acceptance.")
	})
}

// JoinGroup activates studentID in the group. A student with an open
// invitation accepts it; a student without one takes a free seat.
func (e *Engine) JoinGroup(ctx context.Context, groupID, studentID string) Result {
	return e.run(ctx, opJoin, studentID, studentID, func(ctx context.Context) Result {
		oid, ok := parseGroupID(groupID)
		if !ok {
			return notFound(groupID)
		}
		st, res, ok := e.student(ctx, opJoin, groupID, studentID)
		if !ok {
			return res
		}

		g, err := e.mutate(ctx, oid, 0, func(g *models.Group) error {
			i, v := grouprules.ValidateJoin(g.Members, g.MaxMembers, st.Email)
			if v != nil {
				return v
			}
			now := e.now()
			if i < 0 {
				g.Members = append(g.Members, models.GroupMember{
					ID:     studentID,
					Email:  st.Email,
					Role:   models.RoleMember,
					Status: models.MemberPending,
				})
				i = len(g.Members) - 1
			}
			m := &g.Members[i]
			m.StudentID = studentID
			m.Name = st.FullName
			m.EmailCI = grouprules.FoldEmail(m.Email)
			m.InstitutionalID = st.InstitutionalID
			m.Status = models.MemberActive
			m.JoinDate = &now
			return nil
		})
		if err != nil {
			return e.fail(opJoin, groupID, err)
		}
		return succeeded(g,
			fmt.Sprintf("You have joined %s.", g.Name),
			"Participate in group activities and coordinate with your group leader.")
	})
}

// DeclineInvitation removes the open invitation of studentID.
func (e *Engine) DeclineInvitation(ctx context.Context, groupID, studentID string) Result {
	return e.run(ctx, opDecline, studentID, studentID, func(ctx context.Context) Result {
		oid, ok := parseGroupID(groupID)
		if !ok {
			return notFound(groupID)
		}
		st, res, ok := e.student(ctx, opDecline, groupID, studentID)
		if !ok {
			return res
		}

		g, err := e.mutate(ctx, oid, 0, func(g *models.Group) error {
			i, v := grouprules.ValidateDecline(g.Members, st.Email)
			if v != nil {
				return v
			}
			g.Members = without(g.Members, i)
			return nil
		})
		if err != nil {
			return e.fail(opDecline, groupID, err)
		}
		return succeeded(g, "Invitation declined.", "You can join or create another group.")
	})
}

// LeaveGroup removes the acting member. The caller's snapshot is checked
// first so a rejected leave costs no storage call; the rules are checked
// again against the live group before committing.
func (e *Engine) LeaveGroup(ctx context.Context, in LeaveInput) Result {
	return e.run(ctx, opLeave, in.ActingMemberID, in.ActingMemberID, func(ctx context.Context) Result {
		if v := grouprules.ValidateLeave(in.Members, in.ActingMemberID); v != nil {
			return rejected(v, in.GroupID)
		}
		oid, ok := parseGroupID(in.GroupID)
		if !ok {
			return notFound(in.GroupID)
		}

		g, err := e.mutate(ctx, oid, in.ExpectedVersion, func(g *models.Group) error {
			if v := grouprules.ValidateLeave(g.Members, in.ActingMemberID); v != nil {
				return v
			}
			g.Members = without(g.Members, grouprules.IndexByID(g.Members, in.ActingMemberID))
			return nil
		})
		if err != nil {
			return e.fail(opLeave, in.GroupID, err)
		}
		return succeeded(g, "You have left the group.", "Join or create another group.")
	})
}

// RemoveMember removes in.MemberID. Mirrors LeaveGroup.
func (e *Engine) RemoveMember(ctx context.Context, in RemoveInput) Result {
	return e.run(ctx, opRemove, in.ActorID, in.MemberID, func(ctx context.Context) Result {
		if v := grouprules.ValidateRemoveMember(in.Members, in.MemberID); v != nil {
			return rejected(v, in.GroupID)
		}
		oid, ok := parseGroupID(in.GroupID)
		if !ok {
			return notFound(in.GroupID)
		}

		g, err := e.mutate(ctx, oid, in.ExpectedVersion, func(g *models.Group) error {
			if v := grouprules.ValidateRemoveMember(g.Members, in.MemberID); v != nil {
				return v
			}
			g.Members = without(g.Members, grouprules.IndexByID(g.Members, in.MemberID))
			return nil
		})
		if err != nil {
			return e.fail(opRemove, in.GroupID, err)
		}
		return succeeded(g, "Member removed from the group.", "Invite a replacement if the group needs more members.")
	})
}

// AssignNewLeader moves the leader role to in.NewLeaderID. The previous
// leader stays in the group as a member; no statuses change.
func (e *Engine) AssignNewLeader(ctx context.Context, in AssignLeaderInput) Result {
	return e.run(ctx, opLeader, in.ActorID, in.NewLeaderID, func(ctx context.Context) Result {
		oid, ok := parseGroupID(in.GroupID)
		if !ok {
			return notFound(in.GroupID)
		}

		var name string
		g, err := e.mutate(ctx, oid, in.ExpectedVersion, func(g *models.Group) error {
			if v := grouprules.ValidateAssignLeader(g.Members, in.NewLeaderID); v != nil {
				return v
			}
			for i := range g.Members {
				if g.Members[i].ID == in.NewLeaderID {
					g.Members[i].Role = models.RoleLeader
					name = g.Members[i].Name
				} else if g.Members[i].IsLeader() {
					g.Members[i].Role = models.RoleMember
				}
			}
			return nil
		})
		if err != nil {
			return e.fail(opLeader, in.GroupID, err)
		}
		if name == "" {
			name = "The selected member"
		}
		return succeeded(g,
			fmt.Sprintf("%s is now the group leader.", name),
			"The previous leader can now leave the group if needed.")
	})
}

// GetGroup returns the current snapshot of a group.
func (e *Engine) GetGroup(ctx context.Context, groupID string) Result {
	oid, ok := parseGroupID(groupID)
	if !ok {
		return notFound(groupID)
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	g, err := e.repo.GetByID(ctx, oid)
	if err != nil {
		return e.fail(op{name: "group_loaded"}, groupID, err)
	}
	return succeeded(g, "", "")
}

// ListStudentGroups returns the groups with a member bound to studentID.
// Invitations not yet accepted are bound by email only and do not appear.
func (e *Engine) ListStudentGroups(ctx context.Context, studentID string) GroupsResult {
	if strings.TrimSpace(studentID) == "" {
		return GroupsResult{Result: Result{Kind: KindStudentNotFound, Message: msgStudentNotFound}}
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	groups, err := e.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return GroupsResult{Result: e.fail(op{name: "groups_listed"}, "", err)}
	}
	out := make([]models.Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Clone())
	}
	return GroupsResult{Result: Result{OK: true}, Groups: out}
}

// mutate wraps Repository.Mutate so every commit is stamped and checked
// against the structural invariants.
func (e *Engine) mutate(ctx context.Context, id primitive.ObjectID, expected int64, fn func(g *models.Group) error) (models.Group, error) {
	return e.repo.Mutate(ctx, id, expected, func(g *models.Group) error {
		if err := fn(g); err != nil {
			return err
		}
		g.UpdatedAt = e.now()
		if err := grouprules.CheckInvariants(*g); err != nil {
			return fmt.Errorf("invariant: %w", err)
		}
		return nil
	})
}

// student resolves studentID through the directory.
func (e *Engine) student(ctx context.Context, o op, groupID, studentID string) (models.Student, Result, bool) {
	if strings.TrimSpace(studentID) == "" {
		return models.Student{}, Result{Kind: KindStudentNotFound, Message: msgStudentNotFound, GroupID: groupID}, false
	}
	st, err := e.dir.GetStudent(ctx, studentID)
	if errors.Is(err, storeerr.ErrNotFound) {
		return models.Student{}, Result{Kind: KindStudentNotFound, Message: msgStudentNotFound, GroupID: groupID}, false
	}
	if err != nil {
		return models.Student{}, e.fail(o, groupID, err), false
	}
	return st, Result{}, true
}

// without returns a new slice lacking index i. The input is not modified.
func without(members []models.GroupMember, i int) []models.GroupMember {
	out := make([]models.GroupMember, 0, len(members))
	out = append(out, members[:i]...)
	return append(out, members[i+1:]...)
}

func modelsAuditEvent(eventType string, res Result, actor, target string, at time.Time) models.AuditEvent {
	ev := models.AuditEvent{
		GroupID:   res.GroupID,
		EventType: eventType,
		ActorID:   actor,
		TargetID:  target,
		Success:   res.OK,
		CreatedAt: at,
	}
	if !res.OK {
		ev.FailureReason = string(res.Kind)
	}
	return ev
}
