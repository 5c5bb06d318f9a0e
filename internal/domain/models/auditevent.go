// internal/domain/models/auditevent.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditEvent records one committed (or rejected) group lifecycle operation.
type AuditEvent struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID       string             `bson:"group_id,omitempty" json:"group_id,omitempty"`
	EventType     string             `bson:"event_type" json:"event_type"`
	ActorID       string             `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	TargetID      string             `bson:"target_id,omitempty" json:"target_id,omitempty"`
	Success       bool               `bson:"success" json:"success"`
	FailureReason string             `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	Details       map[string]string  `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
