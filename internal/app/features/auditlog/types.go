// internal/app/features/auditlog/types.go
package auditlog

import (
	"github.com/dalemusser/projecthub/internal/app/store/audit"
	"github.com/dalemusser/projecthub/internal/domain/models"
)

const pageSize = 50

// listResponse is one page of audit events, newest first.
type listResponse struct {
	OK         bool                `json:"ok"`
	Events     []models.AuditEvent `json:"events"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"totalPages"`
	Total      int64               `json:"total"`
	HasPrev    bool                `json:"hasPrev"`
	HasNext    bool                `json:"hasNext"`
}

// eventTypes lists the filterable event types.
var eventTypes = map[string]bool{
	audit.EventGroupCreated:       true,
	audit.EventMemberInvited:      true,
	audit.EventMemberJoined:       true,
	audit.EventInvitationDeclined: true,
	audit.EventMemberLeft:         true,
	audit.EventMemberRemoved:      true,
	audit.EventLeaderAssigned:     true,
	audit.EventInvitationsExpired: true,
}
