// internal/domain/models/student.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Student is a directory entry for someone who may join a group.
//
// CommitteeExcluded students are hidden from the available pool (they sit on
// a review committee and may not be team members).
type Student struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName          string             `bson:"full_name" json:"name"`
	FullNameCI        string             `bson:"full_name_ci" json:"-"`
	Email             string             `bson:"email" json:"email"`
	EmailCI           string             `bson:"email_ci" json:"-"`
	InstitutionalID   string             `bson:"institutional_id" json:"institutionalId"`
	InstitutionalIDCI string             `bson:"institutional_id_ci" json:"-"`
	CommitteeExcluded bool               `bson:"committee_excluded" json:"-"`
	Status            string             `bson:"status" json:"-"`
}

// Student statuses. Disabled students never appear in searches.
const (
	StudentActive   = "active"
	StudentDisabled = "disabled"
)
