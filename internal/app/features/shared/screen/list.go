// internal/app/features/shared/screen/list.go
package screen

import (
	"errors"
	"net/http"

	"github.com/dalemusser/modconsole/internal/app/system/listing"
	"github.com/dalemusser/modconsole/internal/app/system/paging"
	"github.com/dalemusser/modconsole/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeList renders the screen. The URL carries the list state: filters,
// q, sort_by and sort_order are applied first (an absent filter means All)
// and any change starts again at page 1; otherwise the page parameter is
// honoured. The first request of a screen session restores the whole URL,
// page included, so a bookmarked or reloaded link opens where it pointed.
//
// It supports HTMX partial refresh of the body when HX-Target="screen-body".
func (h *Handler[T]) ServeList(w http.ResponseWriter, r *http.Request) {
	s, u, ok := h.session(w, r)
	if !ok {
		return
	}
	st := h.state(s, u)

	fresh := st.ctrl.Snapshot().Generation == 0
	changed := applyQuery(st.ctrl, r.URL.Query())

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list "+h.Def.Name)
	defer cancel()

	var err error
	if changed && !fresh {
		err = st.ctrl.Load(ctx)
	} else {
		err = st.ctrl.SetPage(ctx, max(paging.ParsePage(r), 1))
	}
	if h.signedOut(w, r, u, err) {
		return
	}
	if err != nil && !errors.Is(err, listing.ErrSuperseded) {
		// Rendered inline from the controller state.
		h.Log.Debug("list load failed", zap.Error(err))
	}

	if st.stats != nil {
		st.stats.reload(ctx)
	}

	data := h.listData(r, st)
	if isHTMX(r) && r.Header.Get("HX-Target") == bodyTarget {
		data.Fragment = true
		h.snippet(w, "screen_body", data)
		return
	}
	h.render(w, r, "screen_list", data)
}
