package auditlog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	uierrors "github.com/dalemusser/modconsole/internal/app/features/errors"
	"github.com/dalemusser/modconsole/internal/app/store/audit"
	"github.com/dalemusser/modconsole/internal/testutil"
	"go.uber.org/zap"
)

type fakeEvents struct {
	events   []audit.Event
	total    int64
	err      error
	lastFilt audit.QueryFilter
}

func (f *fakeEvents) Query(_ context.Context, filter audit.QueryFilter) ([]audit.Event, error) {
	f.lastFilt = filter
	return f.events, f.err
}

func (f *fakeEvents) Count(context.Context, audit.QueryFilter) (int64, error) {
	return f.total, nil
}

func serve(t *testing.T, events Events, target string) (*httptest.ResponseRecorder, listData, bool) {
	t.Helper()
	h := NewHandler(events, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
	var (
		got      listData
		rendered bool
	)
	h.render = func(w http.ResponseWriter, r *http.Request, name string, data any) {
		got = data.(listData)
		rendered = true
	}
	rec := httptest.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", target, testutil.AdminUser()))
	return rec, got, rendered
}

func TestServeList_NoDatabase(t *testing.T) {
	_, d, rendered := serve(t, nil, "/audit")
	if !rendered {
		t.Fatal("page not rendered")
	}
	if d.Enabled {
		t.Error("Enabled = true without an event store")
	}
}

func TestServeList_ShowsEvents(t *testing.T) {
	ev := &fakeEvents{
		total: 2,
		events: []audit.Event{
			{Timestamp: time.Now(), Category: audit.CategoryAdmin, EventType: audit.EventActionPerformed, ActorID: "1", Resource: "venues", TargetID: "7", Success: true},
			{Timestamp: time.Now(), Category: audit.CategoryAuth, EventType: audit.EventLoginFailedCode, UserID: "2", FailureReason: "bad code"},
		},
	}
	_, d, _ := serve(t, ev, "/audit")

	if !d.Enabled || len(d.Items) != 2 {
		t.Fatalf("Enabled=%v items=%d", d.Enabled, len(d.Items))
	}
	if d.Items[0].Target != "venues/7" {
		t.Errorf("Target = %q, want venues/7", d.Items[0].Target)
	}
	if d.Items[1].Target != "" || d.Items[1].Reason != "bad code" {
		t.Errorf("item = %+v", d.Items[1])
	}
	if d.TotalPages != 1 || d.HasNext || d.HasPrev {
		t.Errorf("pagination = %d pages next=%v prev=%v", d.TotalPages, d.HasNext, d.HasPrev)
	}
}

func TestServeList_Filters(t *testing.T) {
	ev := &fakeEvents{}
	_, d, _ := serve(t, ev, "/audit?category=admin&event_type=export&resource=teams&start_date=2026-01-02&end_date=2026-01-03")

	f := ev.lastFilt
	if f.Category != "admin" || f.EventType != "export" || f.Resource != "teams" {
		t.Errorf("filter = %+v", f)
	}
	if f.StartTime == nil || !f.StartTime.Equal(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartTime = %v", f.StartTime)
	}
	if f.EndTime == nil || f.EndTime.Day() != 3 || f.EndTime.Hour() != 23 {
		t.Errorf("EndTime = %v, want end of 2026-01-03", f.EndTime)
	}
	if len(d.EventTypes) != len(eventTypesForCategory(audit.CategoryAdmin)) {
		t.Errorf("EventTypes = %v, want admin events only", d.EventTypes)
	}
}

func TestServeList_IgnoresUnknownFilters(t *testing.T) {
	ev := &fakeEvents{}
	_, d, _ := serve(t, ev, "/audit?category=bogus&event_type=nope&resource=planets&start_date=yesterday")

	f := ev.lastFilt
	if f.Category != "" || f.EventType != "" || f.Resource != "" || f.StartTime != nil {
		t.Errorf("filter = %+v, want empty", f)
	}
	if d.StartDate != "" {
		t.Errorf("StartDate = %q, want cleared", d.StartDate)
	}
}

func TestServeList_Pagination(t *testing.T) {
	ev := &fakeEvents{total: 120}
	_, d, _ := serve(t, ev, "/audit?page=2&category=auth")

	if ev.lastFilt.Offset != pageSize || ev.lastFilt.Limit != pageSize {
		t.Errorf("offset/limit = %d/%d", ev.lastFilt.Offset, ev.lastFilt.Limit)
	}
	if d.TotalPages != 3 || !d.HasPrev || !d.HasNext {
		t.Errorf("pages=%d prev=%v next=%v", d.TotalPages, d.HasPrev, d.HasNext)
	}
	if d.PrevURL != "/audit?category=auth" {
		t.Errorf("PrevURL = %q", d.PrevURL)
	}
	if d.NextURL != "/audit?category=auth&page=3" {
		t.Errorf("NextURL = %q", d.NextURL)
	}
}

func TestServeList_QueryError(t *testing.T) {
	rec, _, rendered := serve(t, &fakeEvents{err: errors.New("boom")}, "/audit")
	if rendered {
		t.Error("list rendered after a query error")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestEventTypesForCategory(t *testing.T) {
	all := eventTypesForCategory("")
	if len(all) != len(eventTypesForCategory(audit.CategoryAuth))+len(eventTypesForCategory(audit.CategoryAdmin)) {
		t.Errorf("all = %d entries", len(all))
	}
	if eventTypesForCategory("other") != nil {
		t.Error("unknown category returned events")
	}
}
