// internal/app/system/listing/controller.go
package listing

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/dalemusser/modconsole/internal/app/system/notify"
	"github.com/dalemusser/modconsole/internal/app/system/paging"
	"github.com/dalemusser/modconsole/internal/app/system/search"
	"go.uber.org/zap"
)

// DefaultPerPage is the page size requested from the backend.
const DefaultPerPage = paging.PageSize

// Source fetches one page of records for the given query parameters.
type Source[T any] interface {
	List(ctx context.Context, params url.Values) (Page[T], error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context, params url.Values) (Page[T], error)

// List calls f.
func (f SourceFunc[T]) List(ctx context.Context, params url.Values) (Page[T], error) {
	return f(ctx, params)
}

// Mutator applies an action to one record.
type Mutator interface {
	Mutate(ctx context.Context, action, id string, payload map[string]any) error
}

// MutatorFunc adapts a function to Mutator.
type MutatorFunc func(ctx context.Context, action, id string, payload map[string]any) error

// Mutate calls f.
func (f MutatorFunc) Mutate(ctx context.Context, action, id string, payload map[string]any) error {
	return f(ctx, action, id, payload)
}

// Filter is one constraint the list can be narrowed by. Options lists the
// accepted values; the All sentinel is implied and always first. An empty
// Options accepts any value.
type Filter struct {
	Key     string
	Label   string
	Options []string
}

// Status is the load state of a controller.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return "idle"
}

// Config wires a Controller to its collaborators.
type Config[T any] struct {
	// Name is the plural noun used in messages ("users", "venues").
	Name     string
	Source   Source[T]
	Mutator  Mutator
	ID       func(T) string
	Filters  []Filter
	PerPage  int
	Actions  []ActionRule
	Notifier notify.Notifier
	// AfterMutation runs after every successful mutation and its reload,
	// for example to refresh verification statistics.
	AfterMutation []func(ctx context.Context)
	Logger        *zap.Logger
}

// Controller owns the filter, page, selection, and dialog state of one
// list screen and mediates between it and the backend.
//
// A Controller is safe for concurrent use. Each Load takes a new generation
// number; only the newest generation's response is applied and older
// in-flight loads are cancelled.
type Controller[T any] struct {
	cfg Config[T]

	mu        sync.Mutex
	filters   map[string]string
	query     string
	sortBy    string
	sortOrder string
	page      int
	result    Result[T]
	status    Status
	errMsg    string
	selected  map[string]struct{}
	preSelect map[string]struct{} // selection before the last SelectAll, for parity
	dialog    Dialog[T]
	busy      bool
	gen       uint64
	cancel    context.CancelFunc
}

// New returns a Controller with every filter set to All and page 1.
func New[T any](cfg Config[T]) *Controller[T] {
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Mutator == nil {
		cfg.Mutator = MutatorFunc(func(context.Context, string, string, map[string]any) error {
			return ErrUnknownAction
		})
	}
	filters := make(map[string]string, len(cfg.Filters))
	for _, f := range cfg.Filters {
		filters[f.Key] = search.All
	}
	return &Controller[T]{
		cfg:      cfg,
		filters:  filters,
		page:     1,
		result:   Result[T]{CurrentPage: 1, LastPage: 1, PerPage: cfg.PerPage},
		selected: map[string]struct{}{},
	}
}

// Name returns the configured plural noun.
func (c *Controller[T]) Name() string { return c.cfg.Name }

// Filters returns the configured filters.
func (c *Controller[T]) Filters() []Filter { return c.cfg.Filters }

/*─────────────────────────────────────────────────────────────────────────────*
| filter state                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// SetFilter changes one filter. Any change resets the page to 1 and clears
// the selection. It reports whether the value changed; unknown keys and
// unchanged values are no-ops.
func (c *Controller[T]) SetFilter(key, value string) bool {
	f, ok := c.filter(key)
	if !ok {
		return false
	}
	v := strings.TrimSpace(value)
	switch {
	case search.Unconstrained(v):
		v = search.All
	case len(f.Options) > 0:
		v = search.OneOf(v, f.Options...)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filters[key] == v {
		return false
	}
	c.filters[key] = v
	c.resetPageLocked()
	return true
}

// SetQuery changes the free-text search, with the same reset policy as SetFilter.
func (c *Controller[T]) SetQuery(q string) bool {
	q = search.NormalizeQuery(q)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.query == q {
		return false
	}
	c.query = q
	c.resetPageLocked()
	return true
}

// SetSort changes the sort column and direction, with the same reset policy
// as SetFilter. An empty by clears sorting.
func (c *Controller[T]) SetSort(by, order string) bool {
	by = strings.TrimSpace(by)
	order = search.SortOrder(order)
	if by == "" {
		order = ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sortBy == by && c.sortOrder == order {
		return false
	}
	c.sortBy, c.sortOrder = by, order
	c.resetPageLocked()
	return true
}

func (c *Controller[T]) resetPageLocked() {
	c.page = 1
	c.clearSelectionLocked()
}

func (c *Controller[T]) filter(key string) (Filter, bool) {
	for _, f := range c.cfg.Filters {
		if f.Key == key {
			return f, true
		}
	}
	return Filter{}, false
}

// Params builds the outbound query parameters. Filters set to All and a
// blank query are omitted; page and per_page are always present.
func (c *Controller[T]) Params() url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paramsLocked()
}

func (c *Controller[T]) paramsLocked() url.Values {
	v := url.Values{}
	for _, f := range c.cfg.Filters {
		if val := c.filters[f.Key]; !search.Unconstrained(val) {
			v.Set(f.Key, val)
		}
	}
	if c.query != "" {
		v.Set("q", c.query)
	}
	if c.sortBy != "" {
		v.Set("sort_by", c.sortBy)
		if c.sortOrder != "" {
			v.Set("sort_order", c.sortOrder)
		}
	}
	v.Set("page", strconv.Itoa(c.page))
	v.Set("per_page", strconv.Itoa(c.cfg.PerPage))
	return v
}

/*─────────────────────────────────────────────────────────────────────────────*
| loading                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// Load fetches the current page. On failure the record list is cleared and
// the error message is kept for inline display. If a newer Load starts
// before this one returns, this one's context is cancelled and it returns
// ErrSuperseded without touching state.
//
// When the backend answers a page past its last one with no records, the
// last page is fetched once in its place.
func (c *Controller[T]) Load(ctx context.Context) error {
	again, err := c.load(ctx)
	if again {
		_, err = c.load(ctx)
	}
	return err
}

// load performs one fetch and reports whether the page it asked for lay
// past the end.
func (c *Controller[T]) load(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	lctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	params := c.paramsLocked()
	page, perPage := c.page, c.cfg.PerPage
	c.status = StatusLoading
	c.mu.Unlock()

	p, err := c.cfg.Source.List(lctx, params)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false, ErrSuperseded
	}
	c.cancel = nil

	if err != nil {
		c.status = StatusFailed
		c.errMsg = notify.MessageFrom(err, fmt.Sprintf("Failed to load %s.", c.cfg.Name))
		c.result = Result[T]{CurrentPage: page, LastPage: max(page, 1), PerPage: perPage}
		c.clearSelectionLocked()
		c.cfg.Logger.Warn("list load failed",
			zap.String("screen", c.cfg.Name),
			zap.Int("page", page),
			zap.Error(err))
		return false, fmt.Errorf("load %s: %w", c.cfg.Name, err)
	}

	c.result = Normalize(p, page, perPage)
	c.page = c.result.CurrentPage
	c.status = StatusReady
	c.errMsg = ""
	c.pruneSelectionLocked()
	return p.Meta != nil && len(c.result.Items) == 0 && page > c.result.LastPage, nil
}

// SetPage moves to page n and loads it. Values below 1 become 1; a page
// past the end is clamped to the last page the backend reports.
func (c *Controller[T]) SetPage(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	c.mu.Lock()
	if c.page != n {
		c.page = n
		c.clearSelectionLocked()
	}
	c.mu.Unlock()
	return c.Load(ctx)
}

// Snapshot returns a copy of the controller state for rendering.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	filters := make(map[string]string, len(c.filters))
	for k, v := range c.filters {
		filters[k] = v
	}
	res := c.result
	res.Items = append([]T(nil), c.result.Items...)

	dlg := c.dialog
	if c.dialog.Target != nil {
		t := *c.dialog.Target
		dlg.Target = &t
	}

	return Snapshot[T]{
		Name:        c.cfg.Name,
		Filters:     filters,
		Query:       c.query,
		SortBy:      c.sortBy,
		SortOrder:   c.sortOrder,
		Page:        c.page,
		Result:      res,
		Status:      c.status,
		Error:       c.errMsg,
		Selected:    c.selectedIDsLocked(),
		AllSelected: c.allSelectedLocked(),
		Dialog:      dlg,
		Busy:        c.busy,
		Generation:  c.gen,
	}
}

// Snapshot is an immutable view of a Controller.
type Snapshot[T any] struct {
	Name        string
	Filters     map[string]string
	Query       string
	SortBy      string
	SortOrder   string
	Page        int
	Result      Result[T]
	Status      Status
	Error       string
	Selected    []string
	AllSelected bool
	Dialog      Dialog[T]
	Busy        bool
	Generation  uint64
}

// IsSelected reports whether id is in the selection.
func (s Snapshot[T]) IsSelected(id string) bool {
	for _, v := range s.Selected {
		if v == id {
			return true
		}
	}
	return false
}

// Filter returns the value of filter key, or All.
func (s Snapshot[T]) Filter(key string) string {
	if v, ok := s.Filters[key]; ok {
		return v
	}
	return search.All
}
