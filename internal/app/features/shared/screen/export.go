// internal/app/features/shared/screen/export.go
package screen

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/dalemusser/modconsole/internal/app/system/backend"
	"github.com/dalemusser/modconsole/internal/app/system/export"
	"github.com/dalemusser/modconsole/internal/app/system/notify"
	"github.com/dalemusser/modconsole/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// exportPageSize is the page size requested while collecting an export.
const exportPageSize = 100

// ServeExport downloads the filtered list, every page up to MaxExportRows,
// as an Excel, PDF, or CSV file.
// GET /export?format=xlsx|pdf|csv
func (h *Handler[T]) ServeExport(w http.ResponseWriter, r *http.Request) {
	s, u, ok := h.session(w, r)
	if !ok {
		return
	}
	st := h.state(s, u)

	format := query.Get(r, "format")
	if format == "" {
		format = export.XLSX
	}
	applyQuery(st.ctrl, r.URL.Query())

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Download(), h.Log, "export "+h.Def.Name)
	defer cancel()

	items, err := h.collect(ctx, st)
	if h.signedOut(w, r, u, err) {
		return
	}
	if err != nil {
		h.Log.Warn("export fetch failed", zap.Error(err))
		s.Notices.Notify(notify.New(notify.Error, notify.MessageFrom(err, "Export failed.")))
		http.Redirect(w, r, h.backURL(r, st), http.StatusSeeOther)
		return
	}

	t := export.Table{Title: h.Def.Title}
	for _, c := range h.Def.Columns {
		t.Headers = append(t.Headers, c.Label)
	}
	for _, it := range items {
		row := make([]string, 0, len(h.Def.Columns))
		for _, c := range h.Def.Columns {
			row = append(row, cellText(c.Value(it)))
		}
		t.Rows = append(t.Rows, row)
	}

	f, err := export.Render(t, format, h.Def.Name, h.now())
	if errors.Is(err, export.ErrFormat) {
		h.ErrLog.LogBadRequest(w, r, "unsupported export format", err, "Unsupported export format.", h.Def.Path)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "render export failed", err, "The export could not be created.", h.Def.Path)
		return
	}

	h.Audit.Export(ctx, r, u.ID, h.Def.Name, format, len(items))
	sendFile(w, f.Name, f.ContentType, f.Data)
}

// collect pages through the backend with the current filters.
func (h *Handler[T]) collect(ctx context.Context, st *state[T]) ([]T, error) {
	src := backend.Source(st.res, h.Def.Map)
	params := st.ctrl.Params()
	params.Set("per_page", strconv.Itoa(exportPageSize))

	var out []T
	for page := 1; len(out) < h.MaxExportRows; page++ {
		params.Set("page", strconv.Itoa(page))
		p, err := src.List(ctx, params)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Items...)
		if p.Meta == nil || len(p.Items) == 0 {
			break
		}
		last := p.Meta.LastPage
		if last == 0 && p.Meta.Total > 0 {
			last = (p.Meta.Total + exportPageSize - 1) / exportPageSize
		}
		if page >= last {
			break
		}
	}
	if len(out) > h.MaxExportRows {
		h.Log.Info("export truncated", zap.Int("rows", len(out)), zap.Int("max", h.MaxExportRows))
		out = out[:h.MaxExportRows]
	}
	return out, nil
}

// ServeDownload streams the attachment of one record.
// GET /{id}/download
func (h *Handler[T]) ServeDownload(w http.ResponseWriter, r *http.Request) {
	if !h.Def.Download {
		http.NotFound(w, r)
		return
	}
	s, u, ok := h.session(w, r)
	if !ok {
		return
	}
	st := h.state(s, u)
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Download(), h.Log, "download "+h.Def.Name)
	defer cancel()

	f, err := st.res.Download(ctx, id)
	if h.signedOut(w, r, u, err) {
		return
	}
	if err != nil {
		h.Log.Warn("download failed", zap.String("id", id), zap.Error(err))
		s.Notices.Notify(notify.New(notify.Error, notify.MessageFrom(err, "Download failed.")))
		http.Redirect(w, r, h.backURL(r, st), http.StatusSeeOther)
		return
	}

	h.Audit.Download(ctx, r, u.ID, h.Def.Name, id, f.Name)
	sendFile(w, f.Name, f.ContentType, f.Data)
}

func sendFile(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}
