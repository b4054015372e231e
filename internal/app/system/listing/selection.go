// internal/app/system/listing/selection.go
package listing

// The selection is page-scoped: only ids of records on the loaded page can
// be selected, and it is cleared when the page or any filter changes.

// ToggleSelect adds or removes id and reports whether it is now selected.
// Ids not on the loaded page are ignored.
func (c *Controller[T]) ToggleSelect(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.findLocked(id); !ok {
		return false
	}
	c.preSelect = nil
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
		return false
	}
	c.selected[id] = struct{}{}
	return true
}

// SelectAll selects every record on the loaded page. When everything on the
// page is already selected it restores the selection that was in place
// before the previous SelectAll (empty if there was none), so two calls in a
// row always return to the starting selection.
func (c *Controller[T]) SelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.result.Items) == 0 {
		return
	}
	if c.allSelectedLocked() {
		prev := c.preSelect
		c.preSelect = c.copySelectionLocked()
		c.selected = map[string]struct{}{}
		for id := range prev {
			c.selected[id] = struct{}{}
		}
		return
	}
	c.preSelect = c.copySelectionLocked()
	for _, it := range c.result.Items {
		c.selected[c.cfg.ID(it)] = struct{}{}
	}
}

// ClearSelection empties the selection.
func (c *Controller[T]) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearSelectionLocked()
}

// Selected returns the selected ids in ascending order.
func (c *Controller[T]) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedIDsLocked()
}

func (c *Controller[T]) clearSelectionLocked() {
	c.selected = map[string]struct{}{}
	c.preSelect = nil
}

func (c *Controller[T]) copySelectionLocked() map[string]struct{} {
	out := make(map[string]struct{}, len(c.selected))
	for id := range c.selected {
		out[id] = struct{}{}
	}
	return out
}

func (c *Controller[T]) selectedIDsLocked() []string {
	return sortedKeys(c.selected)
}

func (c *Controller[T]) allSelectedLocked() bool {
	if len(c.result.Items) == 0 {
		return false
	}
	for _, it := range c.result.Items {
		if _, ok := c.selected[c.cfg.ID(it)]; !ok {
			return false
		}
	}
	return true
}

// pruneSelectionLocked drops selected ids that are no longer on the page,
// for example after a reload removed a rejected record.
func (c *Controller[T]) pruneSelectionLocked() {
	if len(c.selected) == 0 {
		return
	}
	onPage := make(map[string]struct{}, len(c.result.Items))
	for _, it := range c.result.Items {
		onPage[c.cfg.ID(it)] = struct{}{}
	}
	for id := range c.selected {
		if _, ok := onPage[id]; !ok {
			delete(c.selected, id)
		}
	}
	c.preSelect = nil
}
