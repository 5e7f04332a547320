// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/assignportal/internal/app/store/audit"
	"github.com/dalemusser/assignportal/internal/app/system/apierr"
	"github.com/dalemusser/assignportal/internal/app/system/jsonutil"
	"github.com/dalemusser/assignportal/internal/app/system/timeouts"
)

const (
	pageSize = 50

	defaultFailedWindow = 24 * time.Hour
	maxFailedWindow     = 30 * 24 * time.Hour
)

type listResponse struct {
	Events     []audit.Event `json:"events"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
}

// ServeList handles GET /audit.
//
// Query parameters: category, event_type, username, actor, start_date and
// end_date (YYYY-MM-DD, end date inclusive), page (1-based).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if p := q.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			apierr.Write(w, r, h.Log, apierr.Validation("Invalid page"))
			return
		}
		page = n
	}

	filter := audit.QueryFilter{
		Username:  strings.TrimSpace(q.Get("username")),
		Actor:     strings.TrimSpace(q.Get("actor")),
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}
	if s := strings.TrimSpace(q.Get("start_date")); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			apierr.Write(w, r, h.Log, apierr.Validation("Invalid start_date, expected YYYY-MM-DD"))
			return
		}
		filter.StartTime = &t
	}
	if s := strings.TrimSpace(q.Get("end_date")); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			apierr.Write(w, r, h.Log, apierr.Validation("Invalid end_date, expected YYYY-MM-DD"))
			return
		}
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &endOfDay
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		apierr.Write(w, r, h.Log, apierr.Internal("Error fetching audit events", err))
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		apierr.Write(w, r, h.Log, apierr.Internal("Error counting audit events", err))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	jsonutil.Write(w, http.StatusOK, listResponse{
		Events:     events,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	})
}

// ServeFailedLogins handles GET /audit/failed-logins?hours=N. The window
// defaults to 24 hours and is capped at 30 days.
func (h *Handler) ServeFailedLogins(w http.ResponseWriter, r *http.Request) {
	window := defaultFailedWindow
	if s := r.URL.Query().Get("hours"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			apierr.Write(w, r, h.Log, apierr.Validation("Invalid hours"))
			return
		}
		window = min(time.Duration(n)*time.Hour, maxFailedWindow)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit failed logins")
	defer cancel()

	events, err := h.Events.GetFailedLogins(ctx, time.Now().UTC().Add(-window), pageSize)
	if err != nil {
		apierr.Write(w, r, h.Log, apierr.Internal("Error fetching failed logins", err))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	jsonutil.Write(w, http.StatusOK, events)
}
