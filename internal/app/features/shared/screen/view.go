// internal/app/features/shared/screen/view.go
package screen

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/dalemusser/modconsole/internal/app/system/export"
	"github.com/dalemusser/modconsole/internal/app/system/listing"
	"github.com/dalemusser/modconsole/internal/app/system/navigation"
	"github.com/dalemusser/modconsole/internal/app/system/paging"
	"github.com/dalemusser/modconsole/internal/app/system/search"
	"github.com/dalemusser/modconsole/internal/app/system/viewdata"
	"github.com/dalemusser/modconsole/internal/domain/models"
)

type rowView struct {
	ID       string
	Label    string
	Cells    []string
	Selected bool
	Actions  []actionView
}

type actionView struct {
	Action string
	Label  string
	Color  string
	Dialog bool
	// URL is the dialog URL when Dialog is set, else the action endpoint.
	URL string
}

type optionView struct {
	Value    string
	Selected bool
}

type filterView struct {
	Key     string
	Label   string
	Options []optionView
}

type columnView struct {
	Label   string
	SortURL string // empty when the column cannot be sorted
	Active  bool
	Order   string
}

type pageLink struct {
	N       int
	URL     string
	Current bool
}

type exportLink struct {
	Label string
	URL   string
}

type dialogView struct {
	Action        string
	Title         string
	Confirm       string
	Color         string
	TargetLabel   string
	RequiresNotes bool
	NotesKey      string
	Notes         string
	Loading       bool
	Bulk          bool
	Count         int
	PostURL       string
	CloseURL      string
}

type statsView struct {
	Total    string
	Pending  string
	Verified string
	Rejected string
	Error    string
	Loaded   bool
}

// listData is the view model for screen_list and screen_body.
type listData struct {
	viewdata.BaseVM

	Name   string
	Path   string
	Query  string
	Status string

	Filters []filterView
	Columns []columnView
	Rows    []rowView
	Error   string

	Total       int
	Range       paging.Range
	Pages       []pageLink
	PrevURL     string
	NextURL     string
	LastPage    int
	CurrentPage int

	SelectedCount int
	AllSelected   bool
	BulkActions   []actionView

	Dialog   *dialogView
	Stats    *statsView
	Exports  []exportLink
	Download bool

	// ReturnURL is the list URL carried by forms so plain posts land back
	// on the same page.
	ReturnURL string

	// Fragment is set when only screen_body is rendered; its toasts are
	// then swapped into the layout out of band.
	Fragment bool
}

func (h *Handler[T]) listData(r *http.Request, st *state[T]) listData {
	snap := st.ctrl.Snapshot()
	res := snap.Result

	data := listData{
		BaseVM:      viewdata.NewBaseVM(r, h.Def.Title, "/dashboard"),
		Name:        h.Def.Name,
		Path:        h.Def.Path,
		Query:       snap.Query,
		Status:      snap.Status.String(),
		Error:       snap.Error,
		Total:       res.Total,
		LastPage:    res.LastPage,
		CurrentPage: res.CurrentPage,
		Range:       paging.ComputeRange(res.CurrentPage, res.PerPage, len(res.Items), res.LastPage),
		AllSelected: snap.AllSelected,
		Download:    h.Def.Download,
		ReturnURL:   h.pageURL(snap, 0),
	}
	data.SelectedCount = len(snap.Selected)

	for _, f := range h.Def.Filters {
		cur := snap.Filter(f.Key)
		fv := filterView{Key: f.Key, Label: f.Label}
		fv.Options = append(fv.Options, optionView{Value: search.All, Selected: search.Unconstrained(cur)})
		for _, o := range f.Options {
			fv.Options = append(fv.Options, optionView{Value: o, Selected: o == cur})
		}
		data.Filters = append(data.Filters, fv)
	}

	for _, c := range h.Def.Columns {
		cv := columnView{Label: c.Label}
		if c.Sort != "" {
			next := "asc"
			if snap.SortBy == c.Sort {
				cv.Active = true
				cv.Order = snap.SortOrder
				if snap.SortOrder != "desc" {
					next = "desc"
				}
			}
			q := stateQuery(snap, 1)
			q.Del("page")
			q.Set("sort_by", c.Sort)
			q.Set("sort_order", next)
			cv.SortURL = h.Def.Path + "?" + q.Encode()
		}
		data.Columns = append(data.Columns, cv)
	}

	for _, it := range res.Items {
		id := h.Def.ID(it)
		row := rowView{
			ID:       id,
			Label:    h.Def.label(it),
			Selected: snap.IsSelected(id),
		}
		for _, c := range h.Def.Columns {
			row.Cells = append(row.Cells, cellText(c.Value(it)))
		}
		for _, a := range h.Def.Actions {
			if h.Def.available(it, a.Action) {
				row.Actions = append(row.Actions, h.actionView(a, id))
			}
		}
		data.Rows = append(data.Rows, row)
	}

	for _, a := range h.Def.Actions {
		if a.Bulk {
			data.BulkActions = append(data.BulkActions, h.actionView(a, ""))
		}
	}

	for _, p := range data.Range.Pages {
		data.Pages = append(data.Pages, pageLink{N: p, URL: h.pageURL(snap, p), Current: p == res.CurrentPage})
	}
	if data.Range.HasPrev {
		data.PrevURL = h.pageURL(snap, data.Range.PrevPage)
	}
	if data.Range.HasNext {
		data.NextURL = h.pageURL(snap, data.Range.NextPage)
	}

	exportQ := stateQuery(snap, 1)
	exportQ.Del("page")
	for _, f := range []struct{ label, format string }{
		{"Excel", export.XLSX},
		{"PDF", export.PDF},
		{"CSV", export.CSV},
	} {
		q := url.Values{}
		for k, v := range exportQ {
			q[k] = v
		}
		q.Set("format", f.format)
		data.Exports = append(data.Exports, exportLink{Label: f.label, URL: h.Def.Path + "/export?" + q.Encode()})
	}

	if d := snap.Dialog; d.Open {
		data.Dialog = h.dialogView(d, len(snap.Selected))
	}

	if st.stats != nil {
		s, errMsg, loaded := st.stats.get()
		data.Stats = &statsView{
			Total:    models.DisplayInt(s.Total),
			Pending:  models.DisplayInt(s.Pending),
			Verified: models.DisplayInt(s.Verified),
			Rejected: models.DisplayInt(s.Rejected),
			Error:    errMsg,
			Loaded:   loaded,
		}
	}
	return data
}

func (h *Handler[T]) actionView(a listing.ActionRule, id string) actionView {
	av := actionView{Action: a.Action, Label: a.Label, Color: a.Color, Dialog: a.NeedsDialog()}
	switch {
	case id == "" && av.Dialog:
		av.URL = h.Def.Path + "/bulk/dialog/" + url.PathEscape(a.Action)
	case id == "":
		av.URL = h.Def.Path + "/bulk/" + url.PathEscape(a.Action)
	case av.Dialog:
		av.URL = h.Def.Path + "/" + url.PathEscape(id) + "/dialog/" + url.PathEscape(a.Action)
	default:
		av.URL = h.Def.Path + "/" + url.PathEscape(id) + "/" + url.PathEscape(a.Action)
	}
	return av
}

func (h *Handler[T]) dialogView(d listing.Dialog[T], selected int) *dialogView {
	rule, ok := h.findRule(d.Action)
	if !ok {
		return nil
	}
	dv := &dialogView{
		Action:        rule.Action,
		Title:         rule.Label,
		Confirm:       rule.Confirm,
		Color:         rule.Color,
		RequiresNotes: rule.RequiresNotes,
		NotesKey:      rule.NotesKey(),
		Notes:         d.Notes,
		Loading:       d.Loading,
		Bulk:          d.TargetID == "",
	}
	if dv.Bulk {
		dv.Count = selected
		dv.PostURL = h.Def.Path + "/bulk/" + url.PathEscape(rule.Action)
		dv.CloseURL = h.Def.Path + "/dialog/close"
		dv.TargetLabel = strconv.Itoa(selected) + " selected " + h.Def.Name
		return dv
	}
	dv.PostURL = h.Def.Path + "/" + url.PathEscape(d.TargetID) + "/" + url.PathEscape(rule.Action)
	dv.CloseURL = h.Def.Path + "/" + url.PathEscape(d.TargetID) + "/dialog/close"
	dv.TargetLabel = d.TargetID
	if d.Target != nil {
		dv.TargetLabel = h.Def.label(*d.Target)
	}
	return dv
}

func (h *Handler[T]) findRule(action string) (listing.ActionRule, bool) {
	for _, a := range h.Def.Actions {
		if a.Action == action {
			return a, true
		}
	}
	return listing.ActionRule{}, false
}

func (h *Handler[T]) pageURL(snap listing.Snapshot[T], page int) string {
	return navigation.ListURL(h.Def.Path, stateQuery(snap, page).Encode())
}

// cellText renders an empty cell as the missing-value placeholder.
func cellText(s string) string {
	if s == "" {
		return models.Missing
	}
	return s
}
