// internal/app/lifecycle/result.go
package lifecycle

import (
	"github.com/dalemusser/projecthub/internal/app/policy/grouprules"
	"github.com/dalemusser/projecthub/internal/domain/models"
)

// Kinds produced by the engine itself, alongside the grouprules kinds.
const (
	KindGroupNotFound   grouprules.Kind = "GroupNotFound"
	KindStudentNotFound grouprules.Kind = "StudentNotFound"
	KindStaleState      grouprules.Kind = "StaleState"
	KindRemote          grouprules.Kind = "Remote"
	KindConflict        grouprules.Kind = "Conflict"
)

// Result is the outcome of every lifecycle operation. Exactly one of the two
// shapes is filled: OK with Message/NextStep (and Group when a snapshot is
// available), or !OK with Kind and Message.
type Result struct {
	OK       bool            `json:"ok"`
	Kind     grouprules.Kind `json:"kind,omitempty"`
	Message  string          `json:"message"`
	NextStep string          `json:"nextStep,omitempty"`
	GroupID  string          `json:"groupId,omitempty"`
	Group    *models.Group   `json:"group,omitempty"`
}

// IsValidation reports whether the failure came from a business rule
// rather than storage, concurrency or a missing group or student.
func (r Result) IsValidation() bool {
	if r.OK || r.Kind == "" {
		return false
	}
	switch r.Kind {
	case KindGroupNotFound, KindStudentNotFound, KindStaleState, KindRemote, KindConflict:
		return false
	}
	return true
}

// SearchResult is the outcome of SearchAvailableStudents.
type SearchResult struct {
	Result
	Students []models.Student `json:"students"`
}

// GroupsResult is the outcome of ListStudentGroups.
type GroupsResult struct {
	Result
	Groups []models.Group `json:"groups"`
}

func succeeded(g models.Group, message, next string) Result {
	snap := g.Clone()
	return Result{
		OK:       true,
		Message:  message,
		NextStep: next,
		GroupID:  g.ID.Hex(),
		Group:    &snap,
	}
}

func rejected(v *grouprules.Violation, groupID string) Result {
	return Result{Kind: v.Kind, Message: v.Message, GroupID: groupID}
}

const (
	msgGroupNotFound   = "Group not found."
	msgStudentNotFound = "Student not found."
	msgStale           = "This group was changed by someone else. Reload it and try again."
	msgRemote          = "We couldn't save your changes. Please try again."
	msgTimeout         = "The request timed out. Please try again."
	msgSearchFailed    = "Student search is unavailable right now. Please try again."
	msgConflict        = "This proposal has already been converted into a group."
)
