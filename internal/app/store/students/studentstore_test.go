package studentstore_test

import (
	"errors"
	"testing"

	groupstore "github.com/dalemusser/projecthub/internal/app/store/groups"
	"github.com/dalemusser/projecthub/internal/app/store/storeerr"
	studentstore "github.com/dalemusser/projecthub/internal/app/store/students"
	"github.com/dalemusser/projecthub/internal/app/system/indexes"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/projecthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Student{FullName: " Ada Lovelace ", Email: "Ada@Uni.edu", InstitutionalID: "S-100"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.FullName != "Ada Lovelace" || created.FullNameCI == "" {
		t.Errorf("normalized fields = %+v", created)
	}

	got, err := store.GetStudent(ctx, created.ID.Hex())
	if err != nil {
		t.Fatalf("GetStudent failed: %v", err)
	}
	if got.Email != "Ada@Uni.edu" {
		t.Errorf("Email = %q", got.Email)
	}
}

func TestStore_GetStudent_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, id := range []string{"bad-hex", primitive.NewObjectID().Hex()} {
		if _, err := store.GetStudent(ctx, id); !errors.Is(err, storeerr.ErrNotFound) {
			t.Errorf("GetStudent(%q) err = %v, want ErrNotFound", id, err)
		}
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := studentstore.New(db, nil)

	if _, err := store.Create(ctx, models.Student{FullName: "Ada", Email: "ada@uni.edu"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Student{FullName: "Ada Two", Email: "ADA@uni.edu"}); !errors.Is(err, studentstore.ErrDuplicateEmail) {
		t.Errorf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestStore_SearchAvailable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	groups := groupstore.New(db)
	store := studentstore.New(db, groups)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ada := fixtures.CreateStudent(ctx, "Ada Lovelace", "ada@uni.edu")
	fixtures.CreateStudent(ctx, "Adam Smith", "adam@uni.edu")
	excluded := fixtures.CreateStudent(ctx, "Adele Panel", "adele@uni.edu")
	if _, err := db.Collection(studentstore.Collection).UpdateByID(ctx, excluded.ID,
		bson.M{"$set": bson.M{"committee_excluded": true}}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := store.SearchAvailable(ctx, "AD", 10)
	if err != nil {
		t.Fatalf("SearchAvailable failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d, want 2: %+v", len(got), got)
	}
	if got[0].FullName != "Ada Lovelace" {
		t.Errorf("first = %q, want Ada Lovelace", got[0].FullName)
	}

	fixtures.CreateGroup(ctx, "Team Alpha", models.GroupMember{
		ID: ada.ID.Hex(), StudentID: ada.ID.Hex(), Email: ada.Email, Role: models.RoleLeader, Status: models.MemberActive,
	})
	got, err = store.SearchAvailable(ctx, "ad", 10)
	if err != nil {
		t.Fatalf("SearchAvailable failed: %v", err)
	}
	if len(got) != 1 || got[0].FullName != "Adam Smith" {
		t.Errorf("after grouping ada = %+v", got)
	}

	// Regex metacharacters are matched literally.
	got, _ = store.SearchAvailable(ctx, "a.*", 10)
	if len(got) != 0 {
		t.Errorf("metacharacter query matched %d students", len(got))
	}
}
