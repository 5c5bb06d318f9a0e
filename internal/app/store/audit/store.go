// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the audit collection.
const Collection = "audit_events"

// Group lifecycle event types.
const (
	EventGroupCreated       = "group_created"
	EventMemberInvited      = "member_invited"
	EventMemberJoined       = "member_joined"
	EventInvitationDeclined = "invitation_declined"
	EventMemberLeft         = "member_left"
	EventMemberRemoved      = "member_removed"
	EventLeaderAssigned     = "leader_assigned"
	EventInvitationsExpired = "invitations_expired"
)

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	GroupID   string
	ActorID   string
	EventType string
	Success   *bool
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
	Offset    int64
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event models.AuditEvent) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

func buildQuery(filter QueryFilter) bson.M {
	query := bson.M{}
	if filter.GroupID != "" {
		query["group_id"] = filter.GroupID
	}
	if filter.ActorID != "" {
		query["actor_id"] = filter.ActorID
	}
	if filter.EventType != "" {
		query["event_type"] = filter.EventType
	}
	if filter.Success != nil {
		query["success"] = *filter.Success
	}

	// Time range
	if filter.StartTime != nil || filter.EndTime != nil {
		timeQuery := bson.M{}
		if filter.StartTime != nil {
			timeQuery["$gte"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			timeQuery["$lte"] = *filter.EndTime
		}
		query["created_at"] = timeQuery
	}
	return query
}

// Query retrieves audit events matching the given filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]models.AuditEvent, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cursor, err := s.c.Find(ctx, buildQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.AuditEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter returns the count of events matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, buildQuery(filter))
}

// GetByGroup retrieves recent audit events for one group.
func (s *Store) GetByGroup(ctx context.Context, groupID string, limit int64) ([]models.AuditEvent, error) {
	return s.Query(ctx, QueryFilter{GroupID: groupID, Limit: limit})
}
