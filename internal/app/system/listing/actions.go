// internal/app/system/listing/actions.go
package listing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dalemusser/modconsole/internal/app/system/notify"
	"go.uber.org/zap"
)

// ActionRule describes one row action a screen offers.
type ActionRule struct {
	Action        string // approve, reject, ban, unban, verify, reset, close, delete
	Label         string // button text, "Reject"
	RequiresNotes bool
	// NotesField is the payload key the notes are sent under. Defaults to "notes".
	NotesField string
	// Confirm, when set, is shown in the dialog before the action is sent.
	Confirm string
	Success string // toast text on success
	Failure string // toast text when the backend gives no message
	Color   string // button color: success, error, warning, info
	Bulk    bool   // offered for the selection
	// Dialog forces a dialog even without notes or confirm text (optional notes).
	Dialog bool
}

// NeedsDialog reports whether the action is taken through a dialog rather
// than directly from the row.
func (a ActionRule) NeedsDialog() bool {
	return a.RequiresNotes || a.Confirm != "" || a.Dialog
}

// NotesKey is the payload key the notes are sent under.
func (a ActionRule) NotesKey() string {
	if a.NotesField != "" {
		return a.NotesField
	}
	return "notes"
}

func (a ActionRule) successMessage() string {
	if a.Success != "" {
		return a.Success
	}
	return a.Label + " succeeded."
}

func (a ActionRule) failureMessage() string {
	if a.Failure != "" {
		return a.Failure
	}
	return a.Label + " failed."
}

func (a ActionRule) notesPrompt() string {
	return fmt.Sprintf("Please provide notes to %s.", strings.ToLower(a.Label))
}

// Dialog is the action dialog state. TargetID is empty for bulk dialogs.
type Dialog[T any] struct {
	Action   string
	TargetID string
	Target   *T
	Open     bool
	Notes    string
	Loading  bool
}

// Rule returns the rule for action.
func (c *Controller[T]) Rule(action string) (ActionRule, bool) {
	for _, a := range c.cfg.Actions {
		if a.Action == action {
			return a, true
		}
	}
	return ActionRule{}, false
}

// Actions returns the configured action rules.
func (c *Controller[T]) Actions() []ActionRule { return c.cfg.Actions }

// OpenDialog opens the dialog for action on the record id, which must be on
// the loaded page. An empty id opens a bulk dialog for the selection.
func (c *Controller[T]) OpenDialog(action, id string) error {
	rule, ok := c.Rule(action)
	if !ok {
		return ErrUnknownAction
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	d := Dialog[T]{Action: rule.Action, TargetID: id, Open: true}
	if id != "" {
		t, ok := c.findLocked(id)
		if !ok {
			return ErrNotFound
		}
		d.Target = &t
	} else if len(c.selected) == 0 {
		return ErrNothingSelected
	}
	c.dialog = d
	return nil
}

// SetNotes records the notes typed into the open dialog.
func (c *Controller[T]) SetNotes(notes string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialog.Open {
		c.dialog.Notes = notes
	}
}

// CloseDialog closes the dialog and discards its notes. A dialog whose
// action is in flight stays open.
func (c *Controller[T]) CloseDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialog.Loading {
		return
	}
	c.dialog = Dialog[T]{}
}

// PerformAction applies action to record id.
//
// When the action requires notes and none were given, nothing is sent: a
// warning is emitted, the dialog is left open, and ErrNotesRequired is
// returned. On success the dialog is closed and its notes cleared, a success
// notification is emitted, the list is reloaded exactly once, and the
// after-mutation hooks run. On failure an error notification carries the
// backend message and the dialog stays open for retry.
//
// Notes are read from payload[NotesField] when present, otherwise from the
// open dialog.
func (c *Controller[T]) PerformAction(ctx context.Context, action, id string, payload map[string]any) error {
	rule, ok := c.Rule(action)
	if !ok {
		return ErrUnknownAction
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	notes := c.notesLocked(rule, id, payload)
	if rule.RequiresNotes && notes == "" {
		if !c.dialogForLocked(rule.Action, id) {
			d := Dialog[T]{Action: rule.Action, TargetID: id, Open: true}
			if t, ok := c.findLocked(id); ok {
				d.Target = &t
			}
			c.dialog = d
		}
		c.mu.Unlock()
		c.cfg.Notifier.Notify(notify.New(notify.Warning, rule.notesPrompt()))
		return ErrNotesRequired
	}
	c.busy = true
	inDialog := c.dialogForLocked(rule.Action, id)
	if inDialog {
		c.dialog.Loading = true
	}
	c.mu.Unlock()

	body := withNotes(payload, rule, notes)
	err := c.cfg.Mutator.Mutate(ctx, rule.Action, id, body)

	c.mu.Lock()
	c.busy = false
	if err != nil {
		if inDialog {
			c.dialog.Loading = false
		}
		c.mu.Unlock()
		c.cfg.Logger.Warn("action failed",
			zap.String("screen", c.cfg.Name),
			zap.String("action", rule.Action),
			zap.String("id", id),
			zap.Error(err))
		c.cfg.Notifier.Notify(notify.New(notify.Error, notify.MessageFrom(err, rule.failureMessage())))
		return fmt.Errorf("%s %s %s: %w", rule.Action, c.cfg.Name, id, err)
	}
	c.dialog = Dialog[T]{}
	c.mu.Unlock()

	c.cfg.Notifier.Notify(notify.New(notify.Success, rule.successMessage()))
	c.afterMutation(ctx)
	return nil
}

// BulkResult counts the outcome of PerformBulk.
type BulkResult struct {
	Succeeded int
	Failed    int
}

// PerformBulk applies action to every selected id, one mutation per id,
// then reloads once. The notes rule applies as for PerformAction.
func (c *Controller[T]) PerformBulk(ctx context.Context, action string, payload map[string]any) (BulkResult, error) {
	rule, ok := c.Rule(action)
	if !ok || !rule.Bulk {
		return BulkResult{}, ErrUnknownAction
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return BulkResult{}, ErrBusy
	}
	ids := c.selectedIDsLocked()
	if len(ids) == 0 {
		c.mu.Unlock()
		c.cfg.Notifier.Notify(notify.New(notify.Warning, fmt.Sprintf("Select at least one of the %s on this page.", c.cfg.Name)))
		return BulkResult{}, ErrNothingSelected
	}
	notes := c.notesLocked(rule, "", payload)
	if rule.RequiresNotes && notes == "" {
		if !c.dialogForLocked(rule.Action, "") {
			c.dialog = Dialog[T]{Action: rule.Action, Open: true}
		}
		c.mu.Unlock()
		c.cfg.Notifier.Notify(notify.New(notify.Warning, rule.notesPrompt()))
		return BulkResult{}, ErrNotesRequired
	}
	c.busy = true
	inDialog := c.dialogForLocked(rule.Action, "")
	if inDialog {
		c.dialog.Loading = true
	}
	c.mu.Unlock()

	body := withNotes(payload, rule, notes)
	var res BulkResult
	var errs []error
	for _, id := range ids {
		if err := c.cfg.Mutator.Mutate(ctx, rule.Action, id, body); err != nil {
			res.Failed++
			errs = append(errs, err)
			continue
		}
		res.Succeeded++
	}

	c.mu.Lock()
	c.busy = false
	if res.Failed > 0 && res.Succeeded == 0 {
		if inDialog {
			c.dialog.Loading = false
		}
	} else {
		c.dialog = Dialog[T]{}
		c.clearSelectionLocked()
	}
	c.mu.Unlock()

	if res.Failed > 0 {
		first := notify.MessageFrom(errs[0], rule.failureMessage())
		c.cfg.Logger.Warn("bulk action partly failed",
			zap.String("screen", c.cfg.Name),
			zap.String("action", rule.Action),
			zap.Int("succeeded", res.Succeeded),
			zap.Int("failed", res.Failed),
			zap.Error(errs[0]))
		c.cfg.Notifier.Notify(notify.New(notify.Error,
			fmt.Sprintf("%s failed for %d of %d %s: %s", rule.Label, res.Failed, len(ids), c.cfg.Name, first)))
	}
	if res.Succeeded == 0 {
		return res, fmt.Errorf("bulk %s %s: %w", rule.Action, c.cfg.Name, errors.Join(errs...))
	}
	if res.Failed == 0 {
		c.cfg.Notifier.Notify(notify.New(notify.Success,
			fmt.Sprintf("%s applied to %d %s.", rule.Label, res.Succeeded, c.cfg.Name)))
	}
	c.afterMutation(ctx)
	return res, nil
}

// afterMutation reloads the list once and runs the hooks. A reload failure
// is already recorded in the controller state for inline display.
func (c *Controller[T]) afterMutation(ctx context.Context) {
	if err := c.Load(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		c.cfg.Logger.Debug("reload after mutation failed", zap.String("screen", c.cfg.Name), zap.Error(err))
	}
	for _, hook := range c.cfg.AfterMutation {
		hook(ctx)
	}
}

func (c *Controller[T]) notesLocked(rule ActionRule, id string, payload map[string]any) string {
	if v, ok := payload[rule.NotesKey()]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	if c.dialogForLocked(rule.Action, id) {
		return strings.TrimSpace(c.dialog.Notes)
	}
	return ""
}

func (c *Controller[T]) dialogForLocked(action, id string) bool {
	return c.dialog.Open && c.dialog.Action == action && c.dialog.TargetID == id
}

// Find returns the record with id on the loaded page.
func (c *Controller[T]) Find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findLocked(id)
}

func (c *Controller[T]) findLocked(id string) (T, bool) {
	for _, it := range c.result.Items {
		if c.cfg.ID(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// withNotes copies payload and sets the notes field when notes are present.
func withNotes(payload map[string]any, rule ActionRule, notes string) map[string]any {
	out := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		out[k] = v
	}
	if notes != "" {
		out[rule.NotesKey()] = notes
	} else {
		delete(out, rule.NotesKey())
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
