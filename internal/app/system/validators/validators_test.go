package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/projecthub/internal/app/system/validators"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/projecthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"groups", "students", "audit_events"} {
		if !have[want] {
			t.Errorf("collection %q not created", want)
		}
	}
}

func validGroupDoc() bson.M {
	now := time.Now().UTC()
	return bson.M{
		"name":        "Team Alpha",
		"name_ci":     "team alpha",
		"project_ref": "Library System",
		"max_members": 4,
		"status":      models.GroupActive,
		"version":     1,
		"created_at":  now,
		"updated_at":  now,
		"members": bson.A{
			bson.M{"id": "x", "email": "x@uni.edu", "email_ci": "x@uni.edu", "role": models.RoleLeader, "status": models.MemberActive, "join_date": now},
		},
	}
}

func TestGroupsValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	coll := db.Collection("groups")

	if _, err := coll.InsertOne(ctx, validGroupDoc()); err != nil {
		t.Errorf("Insert valid group failed: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(d bson.M)
	}{
		{"missing name", func(d bson.M) { delete(d, "name") }},
		{"max members too low", func(d bson.M) { d["max_members"] = 1 }},
		{"max members too high", func(d bson.M) { d["max_members"] = 6 }},
		{"bad status", func(d bson.M) { d["status"] = "archived" }},
		{"bad member role", func(d bson.M) {
			d["members"] = bson.A{bson.M{"id": "x", "email": "x@uni.edu", "role": "owner", "status": models.MemberActive}}
		}},
		{"bad member status", func(d bson.M) {
			d["members"] = bson.A{bson.M{"id": "x", "email": "x@uni.edu", "role": models.RoleLeader, "status": "declined"}}
		}},
		{"zero version", func(d bson.M) { d["version"] = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validGroupDoc()
			tt.mutate(doc)
			if _, err := coll.InsertOne(ctx, doc); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestStudentsValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	coll := db.Collection("students")

	_, err := coll.InsertOne(ctx, bson.M{
		"full_name":          "Ada Lovelace",
		"full_name_ci":       "ada lovelace",
		"email":              "ada@uni.edu",
		"email_ci":           "ada@uni.edu",
		"committee_excluded": false,
		"status":             models.StudentActive,
	})
	if err != nil {
		t.Errorf("Insert valid student failed: %v", err)
	}

	if _, err := coll.InsertOne(ctx, bson.M{"full_name": "No Email"}); err == nil {
		t.Error("expected validation error when inserting student without required fields")
	}
}

func TestAuditEvents_NoValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	if _, err := db.Collection("audit_events").InsertOne(ctx, bson.M{"anything": true}); err != nil {
		t.Errorf("audit_events should accept any document: %v", err)
	}
}
