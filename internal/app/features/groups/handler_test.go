package groups_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/projecthub/internal/app/features/groups"
	"github.com/dalemusser/projecthub/internal/app/lifecycle"
	"github.com/dalemusser/projecthub/internal/app/policy/grouprules"
	memstore "github.com/dalemusser/projecthub/internal/app/store/memory"
	"github.com/dalemusser/projecthub/internal/app/system/auth"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/projecthub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type env struct {
	router   chi.Router
	students *memstore.Students
	leader   testutil.TestUser
}

func newEnv(t *testing.T) *env {
	t.Helper()
	sm, err := auth.NewSessionManager(strings.Repeat("k", 32), "", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	groupStore := memstore.NewGroups()
	students := memstore.NewStudents(groupStore)
	engine := lifecycle.New(groupStore, students)

	r := chi.NewRouter()
	r.Mount("/groups", groups.Routes(groups.NewHandler(engine, zap.NewNop()), sm.RequireSignedIn))
	return &env{
		router:   r,
		students: students,
		leader:   testutil.StudentUser("lead-1", "lead@uni.edu"),
	}
}

func (e *env) do(t *testing.T, method, target string, body any, user *testutil.TestUser) *testutil.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = ""
	}
	req := testutil.NewJSONRequest(method, target, body)
	if user != nil {
		req = testutil.WithUser(req, *user)
	}
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) createGroup(t *testing.T) models.Group {
	t.Helper()
	rec := e.do(t, "POST", "/groups", map[string]any{
		"name":       "Team Alpha",
		"projectRef": "Library System",
		"maxMembers": 4,
		"members": []map[string]any{
			{"id": "lead-1", "studentId": "lead-1", "name": "Lee Leader", "email": "lead@uni.edu", "role": "leader"},
		},
	}, &e.leader)
	rec.AssertStatus(t, http.StatusCreated)

	var res lifecycle.Result
	rec.DecodeJSON(t, &res)
	if !res.OK || res.Group == nil {
		t.Fatalf("create result = %+v", res)
	}
	return *res.Group
}

func decode(t *testing.T, rec *testutil.ResponseRecorder) lifecycle.Result {
	t.Helper()
	var res lifecycle.Result
	rec.DecodeJSON(t, &res)
	return res
}

func TestCreateGroup(t *testing.T) {
	e := newEnv(t)
	g := e.createGroup(t)

	if len(g.Members) != 1 || g.Members[0].Status != models.MemberActive || !g.Members[0].IsLeader() {
		t.Errorf("members = %+v", g.Members)
	}
	if g.Version != 1 {
		t.Errorf("version = %d, want 1", g.Version)
	}
}

func TestCreateGroup_Failures(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name   string
		body   any
		user   *testutil.TestUser
		status int
		kind   string
	}{
		{"no session", map[string]any{"name": "x"}, nil, http.StatusUnauthorized, "Unauthorized"},
		{"malformed json", `{"name":`, &e.leader, http.StatusBadRequest, "BadRequest"},
		{"bad member role", map[string]any{"members": []map[string]any{{"role": "owner"}}}, &e.leader, http.StatusBadRequest, "BadRequest"},
		{"max members too high", map[string]any{
			"name": "Team Alpha", "projectRef": "Library System", "maxMembers": 6,
			"members": []map[string]any{{"email": "lead@uni.edu", "role": "leader"}},
		}, &e.leader, http.StatusUnprocessableEntity, string(grouprules.MaxMembersTooHigh)},
		{"missing name", map[string]any{
			"projectRef": "Library System", "maxMembers": 3,
			"members": []map[string]any{{"email": "lead@uni.edu", "role": "leader"}},
		}, &e.leader, http.StatusUnprocessableEntity, string(grouprules.NameRequired)},
		{"leader is someone else", map[string]any{
			"name": "Team Alpha", "projectRef": "Library System", "maxMembers": 3,
			"members": []map[string]any{{"id": "x", "studentId": "x", "email": "other@uni.edu", "role": "leader"}},
		}, &e.leader, http.StatusForbidden, "Forbidden"},
		{"duplicate member id", map[string]any{
			"name": "Team Alpha", "projectRef": "Library System", "maxMembers": 3,
			"members": []map[string]any{
				{"email": "lead@uni.edu", "role": "leader"},
				{"id": "lead-1", "email": "b@uni.edu", "status": "invited"},
			},
		}, &e.leader, http.StatusUnprocessableEntity, string(grouprules.DuplicateMemberID)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, "POST", "/groups", tt.body, tt.user)
			rec.AssertStatus(t, tt.status)
			res := decode(t, rec)
			if res.OK || string(res.Kind) != tt.kind {
				t.Errorf("ok=%v kind=%q, want kind %q", res.OK, res.Kind, tt.kind)
			}
		})
	}
}

func TestCreateGroup_BindsLeaderToSession(t *testing.T) {
	e := newEnv(t)
	st := e.students.Add(models.Student{FullName: "Ada Lovelace", Email: "ada@uni.edu"})
	ada := testutil.StudentUser(st.ID.Hex(), "ada@uni.edu")

	rec := e.do(t, "POST", "/groups", map[string]any{
		"name": "Team Ada", "projectRef": "Engines", "maxMembers": 3,
		"members": []map[string]any{{"email": "ADA@uni.edu", "role": "leader"}},
	}, &ada)
	rec.AssertStatus(t, http.StatusCreated)
	res := decode(t, rec)
	if res.Group == nil || len(res.Group.Members) != 1 {
		t.Fatalf("result = %+v", res)
	}
	l := res.Group.Members[0]
	if l.ID != ada.ID || l.StudentID != ada.ID || l.Name != ada.Name {
		t.Errorf("leader = %+v, want bound to %s", l, ada.ID)
	}

	found, err := e.students.SearchAvailable(context.Background(), "ada", 10)
	if err != nil {
		t.Fatalf("SearchAvailable: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("leader still searchable: %+v", found)
	}
}

func TestCreateGroup_AdminForAnotherLeader(t *testing.T) {
	e := newEnv(t)
	admin := testutil.AdminUser()

	rec := e.do(t, "POST", "/groups", map[string]any{
		"name": "Team Alpha", "projectRef": "Library System", "maxMembers": 3,
		"members": []map[string]any{{"id": "lead-1", "studentId": "lead-1", "email": "lead@uni.edu", "role": "leader"}},
	}, &admin)
	rec.AssertStatus(t, http.StatusCreated)
	if res := decode(t, rec); res.Group == nil || res.Group.Members[0].StudentID != "lead-1" {
		t.Errorf("result = %+v", res)
	}
}

func TestServeMine(t *testing.T) {
	e := newEnv(t)
	g := e.createGroup(t)

	rec := e.do(t, "GET", "/groups/mine", nil, &e.leader)
	rec.AssertStatus(t, http.StatusOK)
	var body lifecycle.GroupsResult
	rec.DecodeJSON(t, &body)
	if !body.OK || len(body.Groups) != 1 || body.Groups[0].ID != g.ID {
		t.Errorf("body = %+v", body)
	}

	other := testutil.StudentUser("nobody", "nobody@uni.edu")
	rec = e.do(t, "GET", "/groups/mine", nil, &other)
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &body)
	if len(body.Groups) != 0 {
		t.Errorf("groups for outsider = %+v", body.Groups)
	}

	e.do(t, "GET", "/groups/mine", nil, nil).AssertStatus(t, http.StatusUnauthorized)
}

func TestServeGroup(t *testing.T) {
	e := newEnv(t)
	g := e.createGroup(t)

	rec := e.do(t, "GET", "/groups/"+g.ID.Hex(), nil, &e.leader)
	rec.AssertStatus(t, http.StatusOK)
	if res := decode(t, rec); res.Group == nil || res.Group.Name != "Team Alpha" {
		t.Errorf("group = %+v", res.Group)
	}

	for _, id := range []string{"000000000000000000000000", "not-an-id"} {
		rec := e.do(t, "GET", "/groups/"+id, nil, &e.leader)
		rec.AssertStatus(t, http.StatusNotFound)
		if res := decode(t, rec); res.Kind != lifecycle.KindGroupNotFound {
			t.Errorf("%s: kind = %q", id, res.Kind)
		}
	}
}

func TestInviteJoinLeave(t *testing.T) {
	e := newEnv(t)
	g := e.createGroup(t)
	path := "/groups/" + g.ID.Hex()

	st := e.students.Add(models.Student{FullName: "Ada Lovelace", Email: "ada@uni.edu"})
	ada := testutil.StudentUser(st.ID.Hex(), st.Email)

	rec := e.do(t, "POST", path+"/invitations", map[string]any{"email": "ADA@uni.edu", "message": "<b>join</b> us"}, &e.leader)
	rec.AssertStatus(t, http.StatusOK)
	res := decode(t, rec)
	if res.NextStep == "" || len(res.Group.Members) != 2 || res.Group.Members[1].Status != models.MemberInvited {
		t.Fatalf("invite result = %+v", res)
	}

	// A second invite to the same address fails on the rules.
	rec = e.do(t, "POST", path+"/invitations", map[string]any{"email": "ada@uni.edu"}, &e.leader)
	rec.AssertStatus(t, http.StatusUnprocessableEntity)

	rec = e.do(t, "POST", path+"/join", nil, &ada)
	rec.AssertStatus(t, http.StatusOK)
	res = decode(t, rec)
	joined := res.Group.Members[1]
	if joined.Status != models.MemberActive || joined.StudentID != st.ID.Hex() || joined.Name != "Ada Lovelace" {
		t.Fatalf("joined member = %+v", joined)
	}

	// Leaving without a body uses the live roster and the caller's seat.
	rec = e.do(t, "POST", path+"/leave", nil, &ada)
	rec.AssertStatus(t, http.StatusOK)
	res = decode(t, rec)
	if len(res.Group.Members) != 1 || res.Group.Members[0].ID != "lead-1" {
		t.Errorf("after leave members = %+v", res.Group.Members)
	}
}

func TestLeave_SoleLeader(t *testing.T) {
	e := newEnv(t)
	g := e.createGroup(t)

	rec := e.do(t, "POST", "/groups/"+g.ID.Hex()+"/leave", nil, &e.leader)
	rec.AssertStatus(t, http.StatusUnprocessableEntity)
	if res := decode(t, rec); res.Kind != grouprules.InsufficientMembers {
		t.Errorf("kind = %q, want %q", res.Kind, grouprules.InsufficientMembers)
	}
}

func TestDecline(t *testing.T) {
	e := newEnv(t)
	g := e.createGroup(t)
	path := "/groups/" + g.ID.Hex()

	st := e.students.Add(models.Student{FullName: "Ada Lovelace", Email: "ada@uni.edu"})
	ada := testutil.StudentUser(st.ID.Hex(), st.Email)

	// Nothing to decline yet.
	rec := e.do(t, "POST", path+"/decline", nil, &ada)
	rec.AssertStatus(t, http.StatusUnprocessableEntity)

	e.do(t, "POST", path+"/invitations", map[string]any{"email": "ada@uni.edu"}, &e.leader).AssertStatus(t, http.StatusOK)
	rec = e.do(t, "POST", path+"/decline", nil, &ada)
	rec.AssertStatus(t, http.StatusOK)
	if res := decode(t, rec); len(res.Group.Members) != 1 {
		t.Errorf("members after decline = %+v", res.Group.Members)
	}

	// Unknown student.
	ghost := testutil.StudentUser("000000000000000000000000", "ghost@uni.edu")
	rec = e.do(t, "POST", path+"/decline", nil, &ghost)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestRemoveMemberAndAssignLeader(t *testing.T) {
	e := newEnv(t)
	g := e.createGroup(t)
	path := "/groups/" + g.ID.Hex()

	st := e.students.Add(models.Student{FullName: "Ada Lovelace", Email: "ada@uni.edu"})
	ada := testutil.StudentUser(st.ID.Hex(), st.Email)
	e.do(t, "POST", path+"/invitations", map[string]any{"email": "ada@uni.edu"}, &e.leader).AssertStatus(t, http.StatusOK)

	// Unknown members cannot lead.
	rec := e.do(t, "POST", path+"/leader", map[string]any{"newLeaderId": "gone"}, &e.leader)
	rec.AssertStatus(t, http.StatusUnprocessableEntity)

	rec = e.do(t, "POST", path+"/leader", map[string]any{}, &e.leader)
	rec.AssertStatus(t, http.StatusBadRequest)

	res := decode(t, e.do(t, "POST", path+"/join", nil, &ada))
	adaSeat := res.Group.Members[1].ID

	rec = e.do(t, "POST", path+"/leader", map[string]any{"newLeaderId": adaSeat}, &e.leader)
	rec.AssertStatus(t, http.StatusOK)
	res = decode(t, rec)
	for _, m := range res.Group.Members {
		if (m.ID == adaSeat) != m.IsLeader() {
			t.Errorf("member %s role = %s", m.ID, m.Role)
		}
	}

	// The former leader is now an ordinary member and can be removed.
	rec = e.do(t, "POST", path+"/members/lead-1/remove", nil, &ada)
	rec.AssertStatus(t, http.StatusOK)
	res = decode(t, rec)
	if len(res.Group.Members) != 1 || res.Group.Members[0].ID != adaSeat {
		t.Errorf("members after remove = %+v", res.Group.Members)
	}

	// The last member cannot be removed.
	rec = e.do(t, "POST", path+"/members/"+adaSeat+"/remove", nil, &ada)
	rec.AssertStatus(t, http.StatusUnprocessableEntity)
}

func TestStaleVersion(t *testing.T) {
	e := newEnv(t)
	g := e.createGroup(t)

	rec := e.do(t, "POST", "/groups/"+g.ID.Hex()+"/invitations",
		map[string]any{"email": "ada@uni.edu", "expectedVersion": 7}, &e.leader)
	rec.AssertStatus(t, http.StatusConflict)
	if res := decode(t, rec); res.Kind != lifecycle.KindStaleState {
		t.Errorf("kind = %q, want StaleState", res.Kind)
	}
}
