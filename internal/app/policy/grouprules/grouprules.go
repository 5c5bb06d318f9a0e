// internal/app/policy/grouprules/grouprules.go
//
// Package grouprules holds the pure membership and leadership rules for
// student groups. Each function inspects a proposed change against a
// snapshot and reports the first rule it breaks, or nil.
package grouprules

// Kind names a rule. Callers branch on Kind; Message is for people.
type Kind string

const (
	NameRequired        Kind = "NameRequired"
	NameLength          Kind = "NameLength"
	ProjectRefRequired  Kind = "ProjectRefRequired"
	ProjectRefLength    Kind = "ProjectRefLength"
	MaxMembersTooLow    Kind = "MaxMembersTooLow"
	MaxMembersTooHigh   Kind = "MaxMembersTooHigh"
	MembersRequired     Kind = "MembersRequired"
	TooManyMembers      Kind = "TooManyMembers"
	DuplicateMember     Kind = "DuplicateMember"
	DuplicateMemberID   Kind = "DuplicateMemberID"
	LeaderRequired      Kind = "LeaderRequired"
	MultipleLeaders     Kind = "MultipleLeaders"
	InsufficientMembers Kind = "InsufficientMembers"
	SoleLeaderLeaving   Kind = "SoleLeaderLeaving"
	SoleLeaderRemoval   Kind = "SoleLeaderRemoval"
	MemberNotFound      Kind = "MemberNotFound"
	EmailRequired       Kind = "EmailRequired"
	InvalidEmailFormat  Kind = "InvalidEmailFormat"
	GroupFull           Kind = "GroupFull"
	NotInvited          Kind = "NotInvited"
	AlreadyActive       Kind = "AlreadyActive"
	MemberNotActive     Kind = "MemberNotActive"
	AlreadyLeader       Kind = "AlreadyLeader"
)

// Violation is a broken rule. It satisfies error so it can travel through
// Mutate callbacks and be recovered with errors.As.
type Violation struct {
	Kind    Kind
	Message string
}

func (v *Violation) Error() string { return v.Message }

func violation(k Kind) *Violation {
	return &Violation{Kind: k, Message: messages[k]}
}

// Name and project reference length bounds, in runes.
const (
	NameMin       = 3
	NameMax       = 100
	ProjectRefMin = 5
	ProjectRefMax = 200
)

var messages = map[Kind]string{
	NameRequired:        "Group name is required.",
	NameLength:          "Group name must be between 3 and 100 characters.",
	ProjectRefRequired:  "A project is required.",
	ProjectRefLength:    "Project must be between 5 and 200 characters.",
	MaxMembersTooLow:    "At least two members required.",
	MaxMembersTooHigh:   "No more than five members allowed.",
	MembersRequired:     "A group needs at least one member.",
	TooManyMembers:      "The group has more members than its maximum size.",
	DuplicateMember:     "This person is already a member of the group.",
	DuplicateMemberID:   "Each member must have a different id.",
	LeaderRequired:      "A group must have a leader.",
	MultipleLeaders:     "A group can only have one leader.",
	InsufficientMembers: "Cannot leave: at least one member must remain in the group.",
	SoleLeaderLeaving:   "Cannot leave: you are the only leader. Assign a new leader first.",
	SoleLeaderRemoval:   "Cannot remove the only leader. Assign a new leader first.",
	MemberNotFound:      "Member not found in this group.",
	EmailRequired:       "Email is required.",
	InvalidEmailFormat:  "Enter a valid email address.",
	GroupFull:           "The group is full.",
	NotInvited:          "There is no pending invitation for this student.",
	AlreadyActive:       "You are already an active member of this group.",
	MemberNotActive:     "Only active members can become leader.",
	AlreadyLeader:       "This member is already the group leader.",
}

// Message returns the human-readable text for a rule kind.
func Message(k Kind) string { return messages[k] }
