// internal/app/policy/grouprules/validate.go
package grouprules

import (
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/projecthub/internal/domain/models"
)

// ValidateMaxMembers checks the capacity policy range.
func ValidateMaxMembers(value int) *Violation {
	if value < models.MinGroupSize {
		return violation(MaxMembersTooLow)
	}
	if value > models.MaxGroupSize {
		return violation(MaxMembersTooHigh)
	}
	return nil
}

// ValidateGroupCreation checks a candidate group before it is first saved.
// fresh is false when the group is converted from an existing proposal, in
// which case the project reference is inherited and not required.
func ValidateGroupCreation(candidate models.Group, fresh bool) *Violation {
	name := strings.TrimSpace(candidate.Name)
	if name == "" {
		return violation(NameRequired)
	}
	if n := utf8.RuneCountInString(name); n < NameMin || n > NameMax {
		return violation(NameLength)
	}

	if fresh {
		ref := strings.TrimSpace(candidate.ProjectRef)
		if ref == "" {
			return violation(ProjectRefRequired)
		}
		if n := utf8.RuneCountInString(ref); n < ProjectRefMin || n > ProjectRefMax {
			return violation(ProjectRefLength)
		}
	}

	if v := ValidateMaxMembers(candidate.MaxMembers); v != nil {
		return v
	}

	if len(candidate.Members) == 0 {
		return violation(MembersRequired)
	}
	if len(candidate.Members) > candidate.MaxMembers {
		return violation(TooManyMembers)
	}

	seen := make(map[string]struct{}, len(candidate.Members))
	ids := make(map[string]struct{}, len(candidate.Members))
	for _, m := range candidate.Members {
		if id := seatID(m); id != "" {
			if _, dup := ids[id]; dup {
				return violation(DuplicateMemberID)
			}
			ids[id] = struct{}{}
		}
		if strings.TrimSpace(m.Email) == "" {
			return violation(EmailRequired)
		}
		if !IsValidEmail(m.Email) {
			return violation(InvalidEmailFormat)
		}
		key := FoldEmail(m.Email)
		if _, dup := seen[key]; dup {
			return violation(DuplicateMember)
		}
		seen[key] = struct{}{}
	}

	switch leaderCount(candidate.Members) {
	case 0:
		return violation(LeaderRequired)
	case 1:
		return nil
	default:
		return violation(MultipleLeaders)
	}
}

// seatID is the id a member will be stored under. Blank means one is
// generated on save.
func seatID(m models.GroupMember) string {
	if id := strings.TrimSpace(m.ID); id != "" {
		return id
	}
	return strings.TrimSpace(m.StudentID)
}

// ValidateLeave checks whether actingMemberID may leave the group.
// The member-count rule is evaluated before the sole-leader rule.
func ValidateLeave(members []models.GroupMember, actingMemberID string) *Violation {
	if len(members) <= 1 {
		return violation(InsufficientMembers)
	}
	i := IndexByID(members, actingMemberID)
	if i < 0 {
		return violation(MemberNotFound)
	}
	if members[i].IsLeader() && leaderCount(members) == 1 {
		return violation(SoleLeaderLeaving)
	}
	return nil
}

// ValidateRemoveMember checks whether targetMemberID may be removed by
// someone else. Same ordering as ValidateLeave.
func ValidateRemoveMember(members []models.GroupMember, targetMemberID string) *Violation {
	if len(members) <= 1 {
		return &Violation{
			Kind:    InsufficientMembers,
			Message: "Cannot remove: at least one member must remain in the group.",
		}
	}
	i := IndexByID(members, targetMemberID)
	if i < 0 {
		return violation(MemberNotFound)
	}
	if members[i].IsLeader() && leaderCount(members) == 1 {
		return violation(SoleLeaderRemoval)
	}
	return nil
}

// ValidateInvite checks an invitation for email. Members of any status
// count toward both the duplicate and the capacity checks.
func ValidateInvite(members []models.GroupMember, maxMembers int, email string) *Violation {
	if strings.TrimSpace(email) == "" {
		return violation(EmailRequired)
	}
	if !IsValidEmail(email) {
		return violation(InvalidEmailFormat)
	}
	if IndexByEmail(members, email) >= 0 {
		return violation(DuplicateMember)
	}
	if len(members) >= maxMembers {
		return violation(GroupFull)
	}
	return nil
}

// ValidateJoin checks whether the student with email may join. It returns
// the index of the invitation being accepted, or -1 when the student is
// joining without one.
func ValidateJoin(members []models.GroupMember, maxMembers int, email string) (int, *Violation) {
	if strings.TrimSpace(email) == "" {
		return -1, violation(EmailRequired)
	}
	if i := IndexByEmail(members, email); i >= 0 {
		if members[i].Status == models.MemberActive {
			return -1, violation(AlreadyActive)
		}
		return i, nil
	}
	if len(members) >= maxMembers {
		return -1, violation(GroupFull)
	}
	return -1, nil
}

// ValidateDecline checks that email has an open invitation to decline.
func ValidateDecline(members []models.GroupMember, email string) (int, *Violation) {
	i := IndexByEmail(members, email)
	if i < 0 {
		return -1, violation(MemberNotFound)
	}
	if members[i].Status != models.MemberInvited {
		return -1, violation(NotInvited)
	}
	return i, nil
}

// ValidateAssignLeader checks that newLeaderID names an active member who
// is not already the leader. Any active member is eligible.
func ValidateAssignLeader(members []models.GroupMember, newLeaderID string) *Violation {
	i := IndexByID(members, newLeaderID)
	if i < 0 {
		return violation(MemberNotFound)
	}
	if members[i].Status != models.MemberActive {
		return violation(MemberNotActive)
	}
	if members[i].IsLeader() {
		return violation(AlreadyLeader)
	}
	return nil
}

// IndexByID returns the position of the member with id, or -1.
func IndexByID(members []models.GroupMember, id string) int {
	if id == "" {
		return -1
	}
	for i, m := range members {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// IndexByEmail returns the position of the member with email (folded), or -1.
func IndexByEmail(members []models.GroupMember, email string) int {
	key := FoldEmail(email)
	if key == "" {
		return -1
	}
	for i, m := range members {
		if FoldEmail(m.Email) == key {
			return i
		}
	}
	return -1
}

func leaderCount(members []models.GroupMember) int {
	n := 0
	for _, m := range members {
		if m.IsLeader() {
			n++
		}
	}
	return n
}
