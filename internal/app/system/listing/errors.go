// internal/app/system/listing/errors.go
package listing

import "errors"

var (
	// ErrSuperseded is returned by Load when a newer load started before
	// this one finished. Its response was discarded.
	ErrSuperseded = errors.New("listing: load superseded by a newer request")

	// ErrNotesRequired is returned when an action that needs notes is
	// submitted with blank notes. Nothing was sent to the backend.
	ErrNotesRequired = errors.New("listing: notes are required for this action")

	// ErrBusy is returned when a mutation is submitted while another is in flight.
	ErrBusy = errors.New("listing: another action is in progress")

	// ErrUnknownAction is returned for an action the screen does not offer.
	ErrUnknownAction = errors.New("listing: unknown action")

	// ErrNotFound is returned when the target id is not on the loaded page.
	ErrNotFound = errors.New("listing: record not on the current page")

	// ErrNothingSelected is returned by PerformBulk with an empty selection.
	ErrNothingSelected = errors.New("listing: nothing selected")
)
