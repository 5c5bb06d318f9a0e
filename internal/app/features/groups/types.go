// internal/app/features/groups/types.go
package groups

import (
	"strings"

	"github.com/dalemusser/projecthub/internal/domain/models"
)

// memberInput is one roster entry in a request body.
type memberInput struct {
	ID              string `json:"id"`
	StudentID       string `json:"studentId"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	InstitutionalID string `json:"institutionalId"`
	Role            string `json:"role" validate:"omitempty,oneof=leader member"`
	Status          string `json:"status" validate:"omitempty,oneof=active pending invited"`
}

func (m memberInput) model() models.GroupMember {
	role := m.Role
	if role == "" {
		role = models.RoleMember
	}
	return models.GroupMember{
		ID:              strings.TrimSpace(m.ID),
		StudentID:       strings.TrimSpace(m.StudentID),
		Name:            strings.TrimSpace(m.Name),
		Email:           strings.TrimSpace(m.Email),
		InstitutionalID: strings.TrimSpace(m.InstitutionalID),
		Role:            role,
		Status:          m.Status,
	}
}

func roster(in []memberInput) []models.GroupMember {
	if in == nil {
		return nil
	}
	out := make([]models.GroupMember, len(in))
	for i, m := range in {
		out[i] = m.model()
	}
	return out
}

type createGroupRequest struct {
	Name       string        `json:"name"`
	ProjectRef string        `json:"projectRef"`
	ProposalID string        `json:"proposalId"`
	MaxMembers int           `json:"maxMembers"`
	Members    []memberInput `json:"members" validate:"dive"`
}

type inviteRequest struct {
	Email           string `json:"email"`
	Message         string `json:"message" validate:"max=4000"`
	ExpectedVersion int64  `json:"expectedVersion" validate:"gte=0"`
}

// leaveRequest and removeRequest may carry the caller's roster snapshot.
// Without one the live group is used.
type leaveRequest struct {
	Members         []memberInput `json:"members" validate:"dive"`
	ActingMemberID  string        `json:"actingMemberId"`
	ExpectedVersion int64         `json:"expectedVersion" validate:"gte=0"`
}

type removeRequest struct {
	Members         []memberInput `json:"members" validate:"dive"`
	ExpectedVersion int64         `json:"expectedVersion" validate:"gte=0"`
}

type assignLeaderRequest struct {
	NewLeaderID     string `json:"newLeaderId" validate:"notblank"`
	ExpectedVersion int64  `json:"expectedVersion" validate:"gte=0"`
}
