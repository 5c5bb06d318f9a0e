package auditlog_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dalemusser/projecthub/internal/app/features/auditlog"
	"github.com/dalemusser/projecthub/internal/app/store/audit"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/projecthub/internal/testutil"
	"go.uber.org/zap"
)

type fakeEvents struct {
	events []models.AuditEvent
	total  int64
	err    error
	last   audit.QueryFilter
}

func (f *fakeEvents) Query(_ context.Context, filter audit.QueryFilter) ([]models.AuditEvent, error) {
	f.last = filter
	return f.events, f.err
}

func (f *fakeEvents) CountByFilter(_ context.Context, filter audit.QueryFilter) (int64, error) {
	return f.total, f.err
}

func serve(h *auditlog.Handler, target string) *testutil.ResponseRecorder {
	req := testutil.NewAuthenticatedRequest("GET", target, testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.ServeList(rec, req)
	return rec
}

func TestServeList_Filters(t *testing.T) {
	events := &fakeEvents{
		events: []models.AuditEvent{{GroupID: "g1", EventType: audit.EventMemberJoined, Success: true}},
		total:  120,
	}
	h := auditlog.NewHandler(events, zap.NewNop())

	rec := serve(h, "/audit?group=g1&actor=s1&event_type=member_joined&outcome=failed&start_date=2026-01-01&end_date=2026-01-31&page=2")
	rec.AssertStatus(t, http.StatusOK)

	f := events.last
	if f.GroupID != "g1" || f.ActorID != "s1" || f.EventType != audit.EventMemberJoined {
		t.Errorf("filter = %+v", f)
	}
	if f.Success == nil || *f.Success {
		t.Errorf("Success = %v, want false", f.Success)
	}
	if f.StartTime == nil || f.EndTime == nil || f.EndTime.Day() != 31 {
		t.Errorf("time range = %v..%v", f.StartTime, f.EndTime)
	}
	if f.Limit != 50 || f.Offset != 50 {
		t.Errorf("Limit/Offset = %d/%d, want 50/50", f.Limit, f.Offset)
	}

	var body struct {
		OK         bool                `json:"ok"`
		Events     []models.AuditEvent `json:"events"`
		Page       int                 `json:"page"`
		TotalPages int                 `json:"totalPages"`
		HasPrev    bool                `json:"hasPrev"`
		HasNext    bool                `json:"hasNext"`
	}
	rec.DecodeJSON(t, &body)
	if !body.OK || len(body.Events) != 1 || body.Page != 2 || body.TotalPages != 3 || !body.HasPrev || !body.HasNext {
		t.Errorf("body = %+v", body)
	}
}

func TestServeList_EmptyIsArray(t *testing.T) {
	h := auditlog.NewHandler(&fakeEvents{}, zap.NewNop())
	rec := serve(h, "/audit")
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"events":[]`)
}

func TestServeList_BadParams(t *testing.T) {
	h := auditlog.NewHandler(&fakeEvents{}, zap.NewNop())

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"unknown event type", "event_type=login_success", "event_type"},
		{"bad outcome", "outcome=maybe", "outcome"},
		{"bad start", "start_date=01/02/2026", "start_date"},
		{"bad end", "end_date=tomorrow", "end_date"},
		{"bad page", "page=0", "page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, "/audit?"+tt.query)
			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertContains(t, tt.field)
		})
	}
}

func TestServeList_StoreFailure(t *testing.T) {
	h := auditlog.NewHandler(&fakeEvents{err: errors.New("down")}, zap.NewNop())
	serve(h, "/audit").AssertStatus(t, http.StatusBadGateway)
}
