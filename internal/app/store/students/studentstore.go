// internal/app/store/students/studentstore.go
package studentstore

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/projecthub/internal/app/store/storeerr"
	"github.com/dalemusser/projecthub/internal/app/system/search"
	"github.com/dalemusser/projecthub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the students collection.
const Collection = "students"

// ErrDuplicateEmail is returned when a student with the same email exists.
var ErrDuplicateEmail = errors.New("a student with this email already exists")

// GroupMembers reports which students already belong to a group.
// *groupstore.Store implements it.
type GroupMembers interface {
	MemberStudentIDs(ctx context.Context) ([]string, error)
}

type Store struct {
	c      *mongo.Collection
	groups GroupMembers
}

func New(db *mongo.Database, groups GroupMembers) *Store {
	return &Store{c: db.Collection(Collection), groups: groups}
}

// Create inserts a directory entry with its folded fields filled in.
func (s *Store) Create(ctx context.Context, st models.Student) (models.Student, error) {
	st.ID = primitive.NewObjectID()
	st.FullName = strings.TrimSpace(st.FullName)
	st.Email = strings.TrimSpace(st.Email)
	st.FullNameCI = text.Fold(st.FullName)
	st.EmailCI = text.Fold(st.Email)
	st.InstitutionalIDCI = text.Fold(st.InstitutionalID)
	if st.Status == "" {
		st.Status = models.StudentActive
	}
	if _, err := s.c.InsertOne(ctx, st); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Student{}, ErrDuplicateEmail
		}
		return models.Student{}, err
	}
	return st, nil
}

// GetStudent loads a student by hex id.
func (s *Store) GetStudent(ctx context.Context, id string) (models.Student, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Student{}, storeerr.ErrNotFound
	}
	var st models.Student
	if err := s.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&st); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Student{}, storeerr.ErrNotFound
		}
		return models.Student{}, err
	}
	return st, nil
}

// SearchAvailable matches query against the folded name, email and
// institutional id. Committee-excluded, disabled and already-grouped
// students are filtered out.
func (s *Store) SearchAvailable(ctx context.Context, query string, limit int) ([]models.Student, error) {
	filter, err := s.availableFilter(ctx, query)
	if err != nil {
		return nil, err
	}

	sortField := search.SortField(query)
	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Student, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) availableFilter(ctx context.Context, query string) (bson.M, error) {
	pattern := search.ContainsPattern(search.Needle(query))
	filter := bson.M{
		"status":             models.StudentActive,
		"committee_excluded": bson.M{"$ne": true},
		"$or": bson.A{
			bson.M{"full_name_ci": bson.M{"$regex": pattern}},
			bson.M{"email_ci": bson.M{"$regex": pattern}},
			bson.M{"institutional_id_ci": bson.M{"$regex": pattern}},
		},
	}
	if s.groups == nil {
		return filter, nil
	}

	taken, err := s.groups.MemberStudentIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(taken) > 0 {
		ids := make(bson.A, 0, len(taken))
		for _, id := range taken {
			if oid, err := primitive.ObjectIDFromHex(id); err == nil {
				ids = append(ids, oid)
			}
		}
		filter["_id"] = bson.M{"$nin": ids}
	}
	return filter, nil
}
