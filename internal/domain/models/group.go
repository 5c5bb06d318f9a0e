// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group roles.
const (
	RoleLeader = "leader"
	RoleMember = "member"
)

// Member statuses. Only active members have accepted; invited members are
// waiting on the invitee and pending members are mid-transition.
const (
	MemberActive  = "active"
	MemberPending = "pending"
	MemberInvited = "invited"
)

// Group statuses.
const (
	GroupActive   = "active"
	GroupPending  = "pending"
	GroupInactive = "inactive"
)

// Capacity bounds for a student team. MaxMembers must fall inside them.
const (
	MinGroupSize = 2
	MaxGroupSize = 5
)

// Group is a student team working on a proposal or project.
//
// NOTE:
//   - Members are embedded and always replaced as a whole list.
//   - Version is bumped on every committed change and is compared on
//     write so concurrent editors cannot both remove the last leader.
type Group struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Name       string             `bson:"name" json:"name"`
	NameCI     string             `bson:"name_ci" json:"-"`
	ProjectRef string             `bson:"project_ref,omitempty" json:"projectRef,omitempty"`
	ProposalID string             `bson:"proposal_id,omitempty" json:"proposalId,omitempty"`
	MaxMembers int                `bson:"max_members" json:"maxMembers"`
	Members    []GroupMember      `bson:"members" json:"members"`
	Status     string             `bson:"status" json:"status"`
	Version    int64              `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// GroupMember is one seat in a group. Role is a flag orthogonal to Status.
type GroupMember struct {
	ID              string     `bson:"id" json:"id"`
	StudentID       string     `bson:"student_id,omitempty" json:"studentId,omitempty"`
	Name            string     `bson:"name" json:"name"`
	Email           string     `bson:"email" json:"email"`
	EmailCI         string     `bson:"email_ci" json:"-"`
	InstitutionalID string     `bson:"institutional_id,omitempty" json:"institutionalId,omitempty"`
	Role            string     `bson:"role" json:"role"`     // "leader" | "member"
	Status          string     `bson:"status" json:"status"` // "active" | "pending" | "invited"
	JoinDate        *time.Time `bson:"join_date,omitempty" json:"joinDate,omitempty"`
	InvitedAt       *time.Time `bson:"invited_at,omitempty" json:"invitedAt,omitempty"`
	InviteMessage   string     `bson:"invite_message,omitempty" json:"inviteMessage,omitempty"`
}

// IsLeader reports whether the member holds the leader role.
func (m GroupMember) IsLeader() bool { return m.Role == RoleLeader }

// Clone returns a deep copy so callers can mutate without aliasing the
// member slice of the original.
func (g Group) Clone() Group {
	out := g
	if g.Members != nil {
		out.Members = make([]GroupMember, len(g.Members))
		copy(out.Members, g.Members)
	}
	return out
}
