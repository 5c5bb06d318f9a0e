// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/projecthub/internal/app/store/storeerr"
	"github.com/dalemusser/projecthub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the groups collection.
const Collection = "groups"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Group{}, storeerr.ErrNotFound
		}
		return models.Group{}, err
	}
	return g, nil
}

// Create inserts g at version 1. The unique proposal index turns a second
// conversion of the same proposal into storeerr.ErrDuplicate.
func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	g.Version = 1
	if g.Status == "" {
		g.Status = models.GroupActive
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = now
	}
	if g.Members == nil {
		g.Members = []models.GroupMember{}
	}
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, storeerr.ErrDuplicate
		}
		return models.Group{}, err
	}
	return g, nil
}

// Mutate loads the group, applies fn to a copy, and replaces the document
// only while its version is unchanged. A writer that lost the race gets
// storeerr.ErrStale and nothing is written.
func (s *Store) Mutate(ctx context.Context, id primitive.ObjectID, expectedVersion int64, fn func(g *models.Group) error) (models.Group, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Group{}, err
	}
	if expectedVersion != 0 && expectedVersion != cur.Version {
		return models.Group{}, storeerr.ErrStale
	}

	next := cur.Clone()
	if err := fn(&next); err != nil {
		return models.Group{}, err
	}
	next.ID = cur.ID
	next.Version = cur.Version + 1
	if next.Members == nil {
		next.Members = []models.GroupMember{}
	}

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": id, "version": cur.Version}, next)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, storeerr.ErrDuplicate
		}
		return models.Group{}, err
	}
	if res.MatchedCount == 0 {
		return models.Group{}, storeerr.ErrStale
	}
	return next, nil
}

// ListByStudent returns the groups a directory student belongs to, most
// recently updated first.
func (s *Store) ListByStudent(ctx context.Context, studentID string) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"members.student_id": studentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MemberStudentIDs returns every student id bound to a member of any group.
func (s *Store) MemberStudentIDs(ctx context.Context) ([]string, error) {
	raw, err := s.c.Distinct(ctx, "members.student_id", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok && id != "" {
			out = append(out, id)
		}
	}
	return out, nil
}

// GroupsWithInvitationsBefore lists groups holding an invitation sent
// before cutoff.
func (s *Store) GroupsWithInvitationsBefore(ctx context.Context, cutoff time.Time) ([]primitive.ObjectID, error) {
	filter := bson.M{"members": bson.M{"$elemMatch": bson.M{
		"status":     models.MemberInvited,
		"invited_at": bson.M{"$lt": cutoff},
	}}}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, row.ID)
	}
	return out, cur.Err()
}
