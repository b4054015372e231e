// internal/app/features/shared/screen/actions.go
package screen

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/modconsole/internal/app/system/limits"
	"github.com/dalemusser/modconsole/internal/app/system/listing"
	"github.com/dalemusser/modconsole/internal/app/system/notify"
	"github.com/dalemusser/modconsole/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const busyMessage = "Another action is still in progress. Please wait."

// HandleSelect toggles one row in the selection.
// POST /select/{id}
func (h *Handler[T]) HandleSelect(w http.ResponseWriter, r *http.Request) {
	s, u, ok := h.session(w, r)
	if !ok {
		return
	}
	st := h.state(s, u)
	st.ctrl.ToggleSelect(chi.URLParam(r, "id"))
	h.respond(w, r, st)
}

// HandleSelectAll selects every row on the page, or restores the previous
// selection when the page is already fully selected.
// POST /select-all
func (h *Handler[T]) HandleSelectAll(w http.ResponseWriter, r *http.Request) {
	s, u, ok := h.session(w, r)
	if !ok {
		return
	}
	st := h.state(s, u)
	st.ctrl.SelectAll()
	h.respond(w, r, st)
}

// ServeDialog opens the action dialog for one row, or for the selection
// when the route has no id.
// GET /{id}/dialog/{action}, GET /bulk/dialog/{action}
func (h *Handler[T]) ServeDialog(w http.ResponseWriter, r *http.Request) {
	s, u, ok := h.session(w, r)
	if !ok {
		return
	}
	st := h.state(s, u)

	err := st.ctrl.OpenDialog(chi.URLParam(r, "action"), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, listing.ErrUnknownAction):
		http.NotFound(w, r)
		return
	case errors.Is(err, listing.ErrNotFound):
		s.Notices.Notify(notify.New(notify.Warning, "That record is no longer on this page."))
	case errors.Is(err, listing.ErrNothingSelected):
		s.Notices.Notify(notify.New(notify.Warning, fmt.Sprintf("Select at least one of the %s on this page.", h.Def.Name)))
	case errors.Is(err, listing.ErrBusy):
		s.Notices.Notify(notify.New(notify.Warning, busyMessage))
	}
	h.respond(w, r, st)
}

// HandleCloseDialog closes the open dialog and discards its notes.
// POST /dialog/close, POST /{id}/dialog/close
func (h *Handler[T]) HandleCloseDialog(w http.ResponseWriter, r *http.Request) {
	s, u, ok := h.session(w, r)
	if !ok {
		return
	}
	st := h.state(s, u)
	st.ctrl.CloseDialog()
	h.respond(w, r, st)
}

// HandleAction applies an action to one record. An action the record's
// current status does not offer is refused without calling the backend.
// POST /{id}/{action}
func (h *Handler[T]) HandleAction(w http.ResponseWriter, r *http.Request) {
	s, u, ok := h.session(w, r)
	if !ok {
		return
	}
	st := h.state(s, u)

	action, id := chi.URLParam(r, "action"), chi.URLParam(r, "id")
	rule, ok := st.ctrl.Rule(action)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := limits.ParseForm(w, r); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse action form failed", err, "Invalid form submission.", h.Def.Path)
		return
	}
	if it, found := st.ctrl.Find(id); found && !h.Def.available(it, action) {
		s.Notices.Notify(notify.New(notify.Warning, fmt.Sprintf("%s is not available for this record.", rule.Label)))
		h.respond(w, r, st)
		return
	}
	payload, hasNotes := notesPayload(r, rule, st.ctrl)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, action+" "+h.Def.Name)
	defer cancel()

	err := st.ctrl.PerformAction(ctx, action, id, payload)
	switch {
	case err == nil:
		h.Audit.Action(ctx, r, u.ID, h.Def.Name, action, id, hasNotes, nil)
	case errors.Is(err, listing.ErrNotesRequired):
		// The controller warned and left the dialog open.
	case errors.Is(err, listing.ErrBusy):
		s.Notices.Notify(notify.New(notify.Warning, busyMessage))
	case h.signedOutAfterMutation(w, r, u, err):
		return
	default:
		h.Audit.Action(ctx, r, u.ID, h.Def.Name, action, id, hasNotes, err)
	}
	h.respond(w, r, st)
}

// HandleBulk applies an action to every selected record on the page.
// POST /bulk/{action}
func (h *Handler[T]) HandleBulk(w http.ResponseWriter, r *http.Request) {
	s, u, ok := h.session(w, r)
	if !ok {
		return
	}
	st := h.state(s, u)

	action := chi.URLParam(r, "action")
	rule, ok := st.ctrl.Rule(action)
	if !ok || !rule.Bulk {
		http.NotFound(w, r)
		return
	}
	if err := limits.ParseForm(w, r); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse bulk form failed", err, "Invalid form submission.", h.Def.Path)
		return
	}
	payload, _ := notesPayload(r, rule, st.ctrl)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "bulk "+action+" "+h.Def.Name)
	defer cancel()

	res, err := st.ctrl.PerformBulk(ctx, action, payload)
	switch {
	case errors.Is(err, listing.ErrNotesRequired), errors.Is(err, listing.ErrNothingSelected):
		// Already warned.
	case errors.Is(err, listing.ErrBusy):
		s.Notices.Notify(notify.New(notify.Warning, busyMessage))
	case h.signedOutAfterMutation(w, r, u, err):
		return
	default:
		h.Audit.Bulk(ctx, r, u.ID, h.Def.Name, action, res.Succeeded, res.Failed)
		if err != nil {
			h.Log.Info("bulk action failed", zap.String("action", action), zap.Error(err))
		}
	}
	h.respond(w, r, st)
}

// notesPayload reads the notes field from the form. The rule's own key is
// preferred; "notes" and "reason" are accepted as aliases. It also records
// the text on the open dialog so a rejected submission keeps what was typed.
func notesPayload[T any](r *http.Request, rule listing.ActionRule, c *listing.Controller[T]) (map[string]any, bool) {
	for _, key := range []string{rule.NotesKey(), "notes", "reason"} {
		if vals, ok := r.PostForm[key]; ok {
			notes := strings.TrimSpace(strings.Join(vals, " "))
			if rs := []rune(notes); len(rs) > limits.MaxNotesLen {
				notes = string(rs[:limits.MaxNotesLen])
			}
			c.SetNotes(notes)
			return map[string]any{rule.NotesKey(): notes}, notes != ""
		}
	}
	return nil, false
}
