package groupstore_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	groupstore "github.com/dalemusser/projecthub/internal/app/store/groups"
	"github.com/dalemusser/projecthub/internal/app/store/storeerr"
	"github.com/dalemusser/projecthub/internal/app/system/indexes"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/projecthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newGroup(name string) models.Group {
	return models.Group{
		Name:       name,
		ProjectRef: "Library System",
		MaxMembers: 4,
		Status:     models.GroupActive,
		Members: []models.GroupMember{
			{ID: "x", Email: "x@uni.edu", EmailCI: "x@uni.edu", Role: models.RoleLeader, Status: models.MemberActive},
		},
	}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, newGroup("Test Group"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Verify ID was assigned
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}

	// Verify normalized fields
	if created.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if created.Version != 1 {
		t.Errorf("Version = %d, want 1", created.Version)
	}

	// Verify timestamps
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Test Group" || len(got.Members) != 1 || got.Members[0].Role != models.RoleLeader {
		t.Errorf("round trip = %+v", got)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, storeerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Create_DuplicateProposal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := groupstore.New(db)

	a := newGroup("From Proposal")
	a.ProposalID = "prop-1"
	if _, err := store.Create(ctx, a); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, a); !errors.Is(err, storeerr.ErrDuplicate) {
		t.Errorf("err = %v, want ErrDuplicate", err)
	}

	// Groups without a proposal never collide.
	if _, err := store.Create(ctx, newGroup("Plain 1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, newGroup("Plain 2")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
}

func TestStore_Mutate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Create(ctx, newGroup("Mutable"))

	updated, err := store.Mutate(ctx, created.ID, created.Version, func(g *models.Group) error {
		g.Members = append(g.Members, models.GroupMember{
			ID: "m1", Email: "m1@uni.edu", EmailCI: "m1@uni.edu", Role: models.RoleMember, Status: models.MemberInvited,
		})
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}
	if updated.Version != 2 || len(updated.Members) != 2 {
		t.Errorf("updated = %+v", updated)
	}

	got, _ := store.GetByID(ctx, created.ID)
	if got.Version != 2 || len(got.Members) != 2 {
		t.Errorf("stored = %+v", got)
	}

	_, err = store.Mutate(ctx, created.ID, created.Version, func(g *models.Group) error { return nil })
	if !errors.Is(err, storeerr.ErrStale) {
		t.Errorf("err = %v, want ErrStale", err)
	}

	boom := errors.New("boom")
	if _, err := store.Mutate(ctx, created.ID, 0, func(g *models.Group) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("callback error = %v, want boom", err)
	}
	got, _ = store.GetByID(ctx, created.ID)
	if got.Version != 2 {
		t.Errorf("aborted mutation bumped version to %d", got.Version)
	}
}

func TestStore_Mutate_ConcurrentWritersOneWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Create(ctx, newGroup("Racy"))

	const writers = 5
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Mutate(ctx, created.ID, created.Version, func(g *models.Group) error {
				time.Sleep(10 * time.Millisecond)
				g.Name = "winner"
				return nil
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, storeerr.ErrStale):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("wins = %d, want exactly 1", wins)
	}
}

func TestStore_GroupsWithInvitationsBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	old := time.Now().UTC().Add(-10 * 24 * time.Hour)
	recent := time.Now().UTC()

	withOld := newGroup("Old Invite")
	withOld.Members = append(withOld.Members, models.GroupMember{ID: "m1", Email: "m1@uni.edu", Role: models.RoleMember, Status: models.MemberInvited, InvitedAt: &old})
	a, _ := store.Create(ctx, withOld)

	withRecent := newGroup("Recent Invite")
	withRecent.Members = append(withRecent.Members, models.GroupMember{ID: "m2", Email: "m2@uni.edu", Role: models.RoleMember, Status: models.MemberInvited, InvitedAt: &recent})
	store.Create(ctx, withRecent)

	ids, err := store.GroupsWithInvitationsBefore(ctx, time.Now().UTC().Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("GroupsWithInvitationsBefore failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != a.ID {
		t.Errorf("ids = %v, want [%s]", ids, a.ID.Hex())
	}
}

func TestStore_MemberStudentIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := newGroup("Bound")
	g.Members[0].StudentID = "s-1"
	store.Create(ctx, g)
	store.Create(ctx, newGroup("Unbound"))

	ids, err := store.MemberStudentIDs(ctx)
	if err != nil {
		t.Fatalf("MemberStudentIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "s-1" {
		t.Errorf("ids = %v", ids)
	}

	groups, err := store.ListByStudent(ctx, "s-1")
	if err != nil {
		t.Fatalf("ListByStudent failed: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != "Bound" {
		t.Errorf("groups = %+v", groups)
	}
}
