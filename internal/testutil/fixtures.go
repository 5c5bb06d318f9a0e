package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateStudent inserts an active, group-eligible student.
func (f *Fixtures) CreateStudent(ctx context.Context, fullName, email string) models.Student {
	f.t.Helper()

	s := models.Student{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		EmailCI:    text.Fold(email),
		Status:     models.StudentActive,
	}
	if _, err := f.db.Collection("students").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("failed to create test student: %v", err)
	}
	return s
}

// CreateGroup inserts an active group holding the given members at version 1.
// MaxMembers is the largest allowed size so callers only need to care about
// the roster.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, members ...models.GroupMember) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	for i := range members {
		if members[i].EmailCI == "" {
			members[i].EmailCI = text.Fold(members[i].Email)
		}
		if members[i].Status == models.MemberActive && members[i].JoinDate == nil {
			members[i].JoinDate = &now
		}
	}
	g := models.Group{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		MaxMembers: models.MaxGroupSize,
		Members:    members,
		Status:     models.GroupActive,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if g.Members == nil {
		g.Members = []models.GroupMember{}
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}
