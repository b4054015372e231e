package screen

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	uierrors "github.com/dalemusser/modconsole/internal/app/features/errors"
	"github.com/dalemusser/modconsole/internal/app/store/preferences"
	"github.com/dalemusser/modconsole/internal/app/system/backend"
	"github.com/dalemusser/modconsole/internal/app/system/listing"
	"github.com/dalemusser/modconsole/internal/app/system/notify"
	"github.com/dalemusser/modconsole/internal/app/system/screens"
	"github.com/dalemusser/modconsole/internal/domain/models"
	"github.com/dalemusser/modconsole/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type post struct {
	id     string
	action string
	body   map[string]any
}

// fakeAPI serves /api/admin/venues like the real backend.
type fakeAPI struct {
	mu         sync.Mutex
	venues     []map[string]any
	lists      []url.Values
	posts      []post
	statsCalls int
	listStatus int
	actStatus  int
}

func (a *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := strings.TrimPrefix(r.URL.Path, "/api/admin/venues")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && p == "":
		a.lists = append(a.lists, r.URL.Query())
		if a.listStatus != 0 {
			w.WriteHeader(a.listStatus)
			_, _ = io.WriteString(w, `{"message":"Token expired"}`)
			return
		}
		var rows []map[string]any
		for _, v := range a.venues {
			if s := r.URL.Query().Get("status"); s == "" || v["status"] == s {
				rows = append(rows, v)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": rows, "current_page": 1, "last_page": 1, "per_page": 20, "total": len(rows),
		})
	case r.Method == http.MethodGet && p == "/stats":
		a.statsCalls++
		_, _ = io.WriteString(w, `{"stats":{"total":2,"pending":1,"verified":1,"rejected":0}}`)
	case r.Method == http.MethodGet && strings.HasSuffix(p, "/download"):
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="floorplan.pdf"`)
		_, _ = io.WriteString(w, "%PDF-1.4")
	case r.Method == http.MethodPost:
		parts := strings.Split(strings.Trim(p, "/"), "/")
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		a.posts = append(a.posts, post{id: parts[0], action: parts[1], body: body})
		if a.actStatus != 0 {
			w.WriteHeader(a.actStatus)
			_, _ = io.WriteString(w, `{"message":"Venue is locked"}`)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	default:
		http.NotFound(w, r)
	}
}

func (a *fakeAPI) snapshot() (lists []url.Values, posts []post, stats int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]url.Values(nil), a.lists...), append([]post(nil), a.posts...), a.statsCalls
}

func venueDef() Definition[models.Venue] {
	return Definition[models.Venue]{
		Name:  "venues",
		Title: "Venues",
		Path:  "/venues",
		Filters: []listing.Filter{
			{Key: "status", Label: "Status", Options: []string{"pending", "approved", "rejected"}},
		},
		Columns: []Column[models.Venue]{
			{Label: "Name", Value: func(v models.Venue) string { return models.Display(v.Name) }, Sort: "name"},
			{Label: "City", Value: func(v models.Venue) string { return models.Display(v.City) }},
			{Label: "Status", Value: func(v models.Venue) string { return models.Display(v.Status) }},
		},
		Actions: []listing.ActionRule{
			{Action: "approve", Label: "Approve", Color: "success", Bulk: true},
			{Action: "reject", Label: "Reject", Color: "error", RequiresNotes: true},
		},
		ID:    func(v models.Venue) string { return v.ID },
		Map:   models.VenueFromRaw,
		Label: func(v models.Venue) string { return models.Display(v.Name) },
		Available: StatusIs(func(v models.Venue) *string { return v.Status }, map[string][]string{
			"approve": {"pending", "rejected"},
			"reject":  {"pending"},
		}),
		Stats:    true,
		Download: true,
	}
}

type env struct {
	api    *fakeAPI
	h      *Handler[models.Venue]
	reg    *screens.Registry
	router http.Handler

	rendered string
	data     listData
}

func newEnv(t *testing.T) *env {
	t.Helper()
	api := &fakeAPI{venues: []map[string]any{
		{"id": "v1", "name": "Blue Hall", "city": "Oslo", "status": "pending"},
		{"id": "v2", "name": "Red Barn", "status": "approved"},
	}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	be, err := backend.New(srv.URL + "/api")
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}
	reg := screens.NewRegistry(preferences.NewMemory(), zap.NewNop())
	h := NewHandler(venueDef(), be, nil, reg, nil, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
	e := &env{api: api, h: h, reg: reg}
	h.render = func(w http.ResponseWriter, r *http.Request, name string, data any) {
		e.rendered, e.data = name, data.(listData)
	}
	h.snippet = func(w http.ResponseWriter, name string, data any) {
		e.rendered, e.data = name, data.(listData)
	}
	h.now = func() time.Time { return time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC) }

	r := chi.NewRouter()
	r.Mount("/venues", Routes(h))
	e.router = reg.Attach(r)
	return e
}

func (e *env) do(method, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "text/html")
	if htmx {
		req.Header.Set("HX-Request", "true")
		req.Header.Set("HX-Target", bodyTarget)
	}
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func toastColors(ns []notify.Notification) []notify.Color {
	var out []notify.Color
	for _, n := range ns {
		out = append(out, n.Color)
	}
	return out
}

func TestServeList_RendersRowsAndForwardsFilters(t *testing.T) {
	e := newEnv(t)

	e.do(http.MethodGet, "/venues?status=pending&q=hall", nil, false)

	if e.rendered != "screen_list" {
		t.Fatalf("rendered %q, want screen_list", e.rendered)
	}
	lists, _, stats := e.api.snapshot()
	if len(lists) != 1 {
		t.Fatalf("list calls = %d, want 1", len(lists))
	}
	q := lists[0]
	if q.Get("status") != "pending" || q.Get("q") != "hall" || q.Get("page") != "1" || q.Get("per_page") != "20" {
		t.Errorf("params = %v", q)
	}
	if len(e.data.Rows) != 1 || e.data.Rows[0].Cells[0] != "Blue Hall" {
		t.Fatalf("rows = %+v", e.data.Rows)
	}
	if stats != 1 || e.data.Stats == nil || e.data.Stats.Pending != "1" {
		t.Errorf("stats calls = %d, view = %+v", stats, e.data.Stats)
	}
	if got := e.data.Filters[0].Options[1]; got.Value != "pending" || !got.Selected {
		t.Errorf("pending option = %+v", got)
	}
}

func TestServeList_AbsentFilterMeansAll(t *testing.T) {
	e := newEnv(t)

	e.do(http.MethodGet, "/venues?status=pending", nil, false)
	e.do(http.MethodGet, "/venues", nil, false)

	lists, _, _ := e.api.snapshot()
	if len(lists) != 2 {
		t.Fatalf("list calls = %d", len(lists))
	}
	if _, ok := lists[1]["status"]; ok {
		t.Errorf("status should be omitted once the filter is cleared, got %v", lists[1])
	}
	if len(e.data.Rows) != 2 {
		t.Errorf("rows = %d, want 2", len(e.data.Rows))
	}
	if e.data.Rows[1].Cells[1] != models.Missing {
		t.Errorf("missing city should render %q, got %q", models.Missing, e.data.Rows[1].Cells[1])
	}
}

func TestServeList_HTMXRendersBody(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/venues", nil, true)
	if e.rendered != "screen_body" {
		t.Errorf("rendered %q, want screen_body", e.rendered)
	}
}

func TestServeList_RowActionsFollowStatus(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/venues", nil, false)

	actions := func(row rowView) []string {
		var out []string
		for _, a := range row.Actions {
			out = append(out, a.Action)
		}
		return out
	}
	if got := actions(e.data.Rows[0]); strings.Join(got, ",") != "approve,reject" {
		t.Errorf("pending venue actions = %v", got)
	}
	if got := actions(e.data.Rows[1]); len(got) != 0 {
		t.Errorf("approved venue actions = %v, want none", got)
	}
	if e.data.Rows[0].Actions[1].URL != "/venues/v1/dialog/reject" {
		t.Errorf("reject should open a dialog, got %q", e.data.Rows[0].Actions[1].URL)
	}
}

func TestHandleAction_RejectWithoutNotesSendsNothing(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/venues", nil, false)

	e.do(http.MethodPost, "/venues/v1/reject", url.Values{"notes": {"   "}}, true)

	if _, posts, _ := e.api.snapshot(); len(posts) != 0 {
		t.Fatalf("backend received %d posts, want 0", len(posts))
	}
	if e.data.Dialog == nil || e.data.Dialog.Action != "reject" || e.data.Dialog.TargetLabel != "Blue Hall" {
		t.Fatalf("dialog = %+v", e.data.Dialog)
	}
	if got := toastColors(e.data.Toasts); len(got) != 1 || got[0] != notify.Warning {
		t.Errorf("toasts = %v, want one warning", got)
	}
}

func TestHandleAction_RejectWithReasonReloadsOnce(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/venues", nil, false)
	e.do(http.MethodGet, "/venues/v1/dialog/reject", nil, true)

	e.do(http.MethodPost, "/venues/v1/reject", url.Values{"reason": {"Duplicate listing"}}, true)

	lists, posts, stats := e.api.snapshot()
	if len(posts) != 1 || posts[0].id != "v1" || posts[0].action != "reject" {
		t.Fatalf("posts = %+v", posts)
	}
	if posts[0].body["notes"] != "Duplicate listing" {
		t.Errorf("body = %v", posts[0].body)
	}
	if len(lists) != 2 {
		t.Errorf("list calls = %d, want 2 (initial + one reload)", len(lists))
	}
	if stats != 2 {
		t.Errorf("stats calls = %d, want 2", stats)
	}
	if e.data.Dialog != nil {
		t.Errorf("dialog should close on success, got %+v", e.data.Dialog)
	}
	if got := toastColors(e.data.Toasts); len(got) != 1 || got[0] != notify.Success {
		t.Errorf("toasts = %v, want one success", got)
	}
}

func TestHandleAction_BackendFailureKeepsDialog(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/venues", nil, false)
	e.do(http.MethodGet, "/venues/v1/dialog/reject", nil, true)
	e.api.mu.Lock()
	e.api.actStatus = http.StatusConflict
	e.api.mu.Unlock()

	e.do(http.MethodPost, "/venues/v1/reject", url.Values{"notes": {"Spam"}}, true)

	if e.data.Dialog == nil || e.data.Dialog.Notes != "Spam" {
		t.Fatalf("dialog should stay open with notes, got %+v", e.data.Dialog)
	}
	if len(e.data.Toasts) != 1 || e.data.Toasts[0].Message != "Venue is locked" {
		t.Errorf("toasts = %+v", e.data.Toasts)
	}
}

func TestHandleAction_PlainFormRedirectsToReturn(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/venues", nil, false)

	rec := e.do(http.MethodPost, "/venues/v1/approve", url.Values{"return": {"/venues?status=pending"}}, false)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/venues?status=pending" {
		t.Errorf("Location = %q", loc)
	}
}

func TestHandleAction_UnknownActionIs404(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodPost, "/venues/v1/explode", url.Values{}, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUnauthorizedBackend_SignsOut(t *testing.T) {
	e := newEnv(t)
	e.api.listStatus = http.StatusUnauthorized

	rec := e.do(http.MethodGet, "/venues", nil, false)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/login") {
		t.Errorf("Location = %q, want the sign-in page", loc)
	}
	if e.reg.Len() != 0 {
		t.Errorf("screen session should be dropped, %d left", e.reg.Len())
	}
	if e.rendered != "" {
		t.Errorf("nothing should render, got %q", e.rendered)
	}
}

func TestHandleAction_ForbiddenKeepsSession(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/venues", nil, false)
	e.api.mu.Lock()
	e.api.actStatus = http.StatusForbidden
	e.api.mu.Unlock()

	rec := e.do(http.MethodPost, "/venues/v1/approve", url.Values{}, true)

	if rec.Code != http.StatusOK || e.rendered != "screen_body" {
		t.Fatalf("status = %d rendered %q, want the refreshed body", rec.Code, e.rendered)
	}
	if e.reg.Len() != 1 {
		t.Errorf("screen session should survive a refused change, %d left", e.reg.Len())
	}
	if len(e.data.Toasts) != 1 || e.data.Toasts[0].Color != notify.Error || e.data.Toasts[0].Message != "Venue is locked" {
		t.Errorf("toasts = %+v, want the backend message as an error", e.data.Toasts)
	}
}

func TestBulk_ForbiddenKeepsSession(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/venues", nil, false)
	e.do(http.MethodPost, "/venues/select-all", url.Values{}, true)
	e.api.mu.Lock()
	e.api.actStatus = http.StatusForbidden
	e.api.mu.Unlock()

	rec := e.do(http.MethodPost, "/venues/bulk/approve", url.Values{}, true)

	if rec.Code != http.StatusOK || e.reg.Len() != 1 {
		t.Errorf("status = %d sessions = %d, want 200 with the session kept", rec.Code, e.reg.Len())
	}
}

func TestHandleAction_UnauthenticatedSignsOut(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/venues", nil, false)
	e.api.mu.Lock()
	e.api.actStatus = http.StatusUnauthorized
	e.api.mu.Unlock()

	rec := e.do(http.MethodPost, "/venues/v1/approve", url.Values{}, true)

	if e.reg.Len() != 0 {
		t.Errorf("screen session should be dropped, %d left", e.reg.Len())
	}
	if rec.Code != http.StatusUnauthorized || !strings.HasPrefix(rec.Header().Get("HX-Redirect"), "/login") {
		t.Errorf("status = %d HX-Redirect = %q, want the sign-in page", rec.Code, rec.Header().Get("HX-Redirect"))
	}
}

func TestHandleAction_UnavailableActionSendsNothing(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/venues", nil, false)

	// v2 is already approved.
	e.do(http.MethodPost, "/venues/v2/approve", url.Values{}, true)

	_, posts, _ := e.api.snapshot()
	if len(posts) != 0 {
		t.Fatalf("posts = %+v, want none", posts)
	}
	if got := toastColors(e.data.Toasts); len(got) != 1 || got[0] != notify.Warning {
		t.Errorf("toasts = %v, want one warning", got)
	}
}

func TestServeList_FirstRequestHonoursPage(t *testing.T) {
	e := newEnv(t)

	e.do(http.MethodGet, "/venues?status=pending&page=3", nil, false)

	lists, _, _ := e.api.snapshot()
	if len(lists) != 1 {
		t.Fatalf("list calls = %d, want 1", len(lists))
	}
	if lists[0].Get("page") != "3" || lists[0].Get("status") != "pending" {
		t.Errorf("params = %v, want page 3 of pending", lists[0])
	}

	// Later filter changes still start again at page 1.
	e.do(http.MethodGet, "/venues?status=approved&page=3", nil, false)
	lists, _, _ = e.api.snapshot()
	if got := lists[len(lists)-1].Get("page"); got != "1" {
		t.Errorf("page after filter change = %s, want 1", got)
	}
}

func TestBulk_ApprovesSelection(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/venues", nil, false)
	e.do(http.MethodPost, "/venues/select-all", url.Values{}, true)
	if e.data.SelectedCount != 2 || !e.data.AllSelected {
		t.Fatalf("selected = %d all=%v", e.data.SelectedCount, e.data.AllSelected)
	}

	e.do(http.MethodPost, "/venues/bulk/approve", url.Values{}, true)

	_, posts, _ := e.api.snapshot()
	if len(posts) != 2 {
		t.Fatalf("posts = %d, want 2", len(posts))
	}
	if e.data.SelectedCount != 0 {
		t.Errorf("selection should clear after bulk, got %d", e.data.SelectedCount)
	}
}

func TestBulk_RejectsNonBulkAction(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodPost, "/venues/bulk/reject", url.Values{}, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSelect_TogglesRow(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/venues", nil, false)

	e.do(http.MethodPost, "/venues/select/v2", url.Values{}, true)
	if !e.data.Rows[1].Selected || e.data.SelectedCount != 1 {
		t.Fatalf("v2 should be selected: %+v", e.data.Rows)
	}
	e.do(http.MethodPost, "/venues/select/v2", url.Values{}, true)
	if e.data.SelectedCount != 0 {
		t.Errorf("second toggle should deselect")
	}
}

func TestDialog_CloseDiscardsNotes(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/venues", nil, false)
	e.do(http.MethodGet, "/venues/v1/dialog/reject", nil, true)
	if e.data.Dialog == nil {
		t.Fatal("dialog should be open")
	}
	e.do(http.MethodPost, "/venues/v1/dialog/close", url.Values{}, true)
	if e.data.Dialog != nil {
		t.Errorf("dialog should be closed, got %+v", e.data.Dialog)
	}
}

func TestDialog_BulkWithoutSelectionWarns(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodGet, "/venues", nil, false)
	e.do(http.MethodGet, "/venues/bulk/dialog/approve", nil, true)
	if e.data.Dialog != nil {
		t.Errorf("no dialog expected without a selection")
	}
	if got := toastColors(e.data.Toasts); len(got) != 1 || got[0] != notify.Warning {
		t.Errorf("toasts = %v", got)
	}
}

func TestServeExport_CSV(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodGet, "/venues/export?format=csv&status=pending", nil, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "venues-20250304-0930.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "Name,City,Status\n") || !strings.Contains(body, "Blue Hall,Oslo,pending") {
		t.Errorf("body = %q", body)
	}
	if strings.Contains(body, "Red Barn") {
		t.Error("export should honour the status filter")
	}
}

func TestServeExport_BadFormat(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodGet, "/venues/export?format=docx", nil, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestServeDownload(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodGet, "/venues/v1/download", nil, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename=floorplan.pdf` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if rec.Body.String() != "%PDF-1.4" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestStateQuery(t *testing.T) {
	snap := listing.Snapshot[models.Venue]{
		Filters:   map[string]string{"status": "pending", "role": "All"},
		Query:     "hall",
		SortBy:    "name",
		SortOrder: "desc",
		Page:      3,
	}
	if got := stateQuery(snap, 0).Encode(); got != "page=3&q=hall&sort_by=name&sort_order=desc&status=pending" {
		t.Errorf("stateQuery = %q", got)
	}
	if got := stateQuery(snap, 1).Get("page"); got != "" {
		t.Errorf("page 1 should be omitted, got %q", got)
	}
}
