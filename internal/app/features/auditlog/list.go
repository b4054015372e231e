// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/dalemusser/modconsole/internal/app/store/audit"
	"github.com/dalemusser/modconsole/internal/app/system/paging"
	"github.com/dalemusser/modconsole/internal/app/system/timeouts"
	"github.com/dalemusser/modconsole/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

const pageSize = 50

// ServeList handles GET /audit - the stored audit events, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	data := listData{
		BaseVM:     viewdata.NewBaseVM(r, "Audit log", "/dashboard"),
		Categories: allCategories(),
		Resources:  resources,
		Page:       1,
		TotalPages: 1,
	}
	if h.Events == nil {
		h.render(w, r, "audit_list", data)
		return
	}
	data.Enabled = true

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	data.Category = query.Get(r, "category")
	if !slices.ContainsFunc(data.Categories, func(c categoryOption) bool { return c.Value == data.Category }) {
		data.Category = ""
	}
	data.EventTypes = eventTypesForCategory(data.Category)
	data.EventType = query.Get(r, "event_type")
	if !slices.Contains(data.EventTypes, data.EventType) {
		data.EventType = ""
	}
	data.Resource = query.Get(r, "resource")
	if !slices.Contains(resources, data.Resource) {
		data.Resource = ""
	}
	data.StartDate = query.Get(r, "start_date")
	data.EndDate = query.Get(r, "end_date")
	if p := paging.ParsePage(r); p > 1 {
		data.Page = p
	}

	filter := audit.QueryFilter{
		Category:  data.Category,
		EventType: data.EventType,
		Resource:  data.Resource,
		Limit:     pageSize,
		Offset:    int64((data.Page - 1) * pageSize),
	}
	if t, err := time.Parse("2006-01-02", data.StartDate); err == nil {
		filter.StartTime = &t
	} else {
		data.StartDate = ""
	}
	if t, err := time.Parse("2006-01-02", data.EndDate); err == nil {
		endOfDay := t.Add(24*time.Hour - time.Second)
		filter.EndTime = &endOfDay
	} else {
		data.EndDate = ""
	}

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query audit events failed", err, "The audit log could not be loaded.", "/dashboard")
		return
	}
	total, err := h.Events.Count(ctx, filter)
	if err != nil {
		h.Log.Warn("count audit events failed", zap.Error(err))
		total = int64(filter.Offset) + int64(len(events))
	}

	data.Items = make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			Timestamp: e.Timestamp,
			Category:  e.Category,
			EventType: e.EventType,
			ActorID:   e.ActorID,
			UserID:    e.UserID,
			IP:        e.IP,
			Success:   e.Success,
			Reason:    e.FailureReason,
			Details:   e.Details,
		}
		if e.Resource != "" {
			item.Target = e.Resource
			if e.TargetID != "" {
				item.Target += "/" + e.TargetID
			}
		}
		data.Items = append(data.Items, item)
	}

	data.Total = total
	data.TotalPages = max(int((total+pageSize-1)/pageSize), 1)
	data.HasPrev = data.Page > 1
	data.HasNext = data.Page < data.TotalPages
	data.PrevURL = h.pageURL(data, data.Page-1)
	data.NextURL = h.pageURL(data, data.Page+1)

	h.render(w, r, "audit_list", data)
}

func (h *Handler) pageURL(d listData, page int) string {
	v := url.Values{}
	for k, val := range map[string]string{
		"category":   d.Category,
		"event_type": d.EventType,
		"resource":   d.Resource,
		"start_date": d.StartDate,
		"end_date":   d.EndDate,
	} {
		if val != "" {
			v.Set(k, val)
		}
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if len(v) == 0 {
		return "/audit"
	}
	return "/audit?" + v.Encode()
}
