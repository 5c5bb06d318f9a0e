// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/projecthub/internal/app/features/shared/respond"
	"github.com/dalemusser/projecthub/internal/app/lifecycle"
	"github.com/dalemusser/projecthub/internal/app/store/audit"
	"github.com/dalemusser/projecthub/internal/app/system/inputval"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.uber.org/zap"
)

// ServeList handles GET /audit. Query parameters group, actor, event_type,
// outcome (ok|failed), start_date and end_date (YYYY-MM-DD) narrow the
// result; page selects a 1-based page.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, page, err := parseFilter(q.Get)
	if err != nil {
		respond.BadInput(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		respond.Error(w, http.StatusBadGateway, string(lifecycle.KindRemote), "A database error occurred.")
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.Log.Error("failed to count audit events", zap.Error(err))
		respond.Error(w, http.StatusBadGateway, string(lifecycle.KindRemote), "A database error occurred.")
		return
	}
	if events == nil {
		events = []models.AuditEvent{}
	}

	totalPages := max(int((total+pageSize-1)/pageSize), 1)
	respond.JSON(w, http.StatusOK, listResponse{
		OK:         true,
		Events:     events,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	})
}

func parseFilter(get func(string) string) (audit.QueryFilter, int, error) {
	fields := inputval.FieldErrors{}
	filter := audit.QueryFilter{
		GroupID: strings.TrimSpace(get("group")),
		ActorID: strings.TrimSpace(get("actor")),
		Limit:   pageSize,
	}

	if et := strings.TrimSpace(get("event_type")); et != "" {
		if !eventTypes[et] {
			fields["event_type"] = "is not a known event type"
		}
		filter.EventType = et
	}

	switch strings.TrimSpace(get("outcome")) {
	case "":
	case "ok":
		ok := true
		filter.Success = &ok
	case "failed":
		ok := false
		filter.Success = &ok
	default:
		fields["outcome"] = "must be one of: ok failed"
	}

	if s := strings.TrimSpace(get("start_date")); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartTime = &t
		} else {
			fields["start_date"] = "must be a date like 2006-01-02"
		}
	}
	if s := strings.TrimSpace(get("end_date")); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			// End of day
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.EndTime = &end
		} else {
			fields["end_date"] = "must be a date like 2006-01-02"
		}
	}

	page := 1
	if s := get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			page = n
		} else {
			fields["page"] = "must be a positive number"
		}
	}
	filter.Offset = int64((page - 1) * pageSize)

	if len(fields) > 0 {
		return filter, page, fields
	}
	return filter, page, nil
}
