// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/dalemusser/retreatreg/internal/app/store/audit"
	"github.com/dalemusser/retreatreg/internal/app/system/paging"
	"github.com/dalemusser/retreatreg/internal/app/system/timeouts"
	"github.com/dalemusser/retreatreg/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const pageSize = paging.PageSize

const dateLayout = "2006-01-02"

// ServeList handles GET /admin/activity - the audit log with filtering.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	data := listData{
		BaseVM:     viewdata.NewBaseVM(r, "Activity", "/admin"),
		Categories: allCategories(),
	}
	if h.Store == nil {
		data.Disabled = true
		data.Window = paging.Compute(1, pageSize, 0, 0)
		templates.Render(w, r, "activity_list", data)
		return
	}

	f, filter := h.parseFilters(r)
	page := paging.ParsePage(r)
	filter.Limit = pageSize
	filter.Offset = paging.Offset(page, pageSize)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "activity list")
	defer cancel()

	items, total, err := h.load(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query audit events", err, "A database error occurred.", "/admin")
		return
	}

	data.filters = f
	data.Items = items
	data.EventTypes = eventTypesForCategory(f.Category)
	data.Window = paging.Compute(page, pageSize, total, len(items))
	templates.Render(w, r, "activity_list", data)
}

// parseFilters reads the filter form. Dates are whole days in h.Loc;
// an unparsable date is ignored.
func (h *Handler) parseFilters(r *http.Request) (filters, audit.QueryFilter) {
	f := filters{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "event_type"),
		MemberID:  query.Get(r, "member_id"),
		StartDate: query.Get(r, "start_date"),
		EndDate:   query.Get(r, "end_date"),
	}
	q := audit.QueryFilter{
		Category:  f.Category,
		EventType: f.EventType,
		MemberID:  f.MemberID,
	}
	if f.StartDate != "" {
		if t, err := time.ParseInLocation(dateLayout, f.StartDate, h.Loc); err == nil {
			q.StartTime = &t
		}
	}
	if f.EndDate != "" {
		if t, err := time.ParseInLocation(dateLayout, f.EndDate, h.Loc); err == nil {
			// End of day
			endOfDay := t.Add(24*time.Hour - time.Second)
			q.EndTime = &endOfDay
		}
	}
	return f, q
}

func (h *Handler) load(ctx context.Context, filter audit.QueryFilter) ([]listItem, int64, error) {
	events, err := h.Store.Query(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := h.Store.CountByFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, h.newItem(e))
	}
	h.Log.Debug("activity loaded", zap.Int("shown", len(items)), zap.Int64("total", total))
	return items, total, nil
}

func (h *Handler) newItem(e audit.Event) listItem {
	item := listItem{
		ID:            e.ID.Hex(),
		When:          e.Timestamp.In(h.Loc).Format("2 Jan 2006 15:04"),
		Category:      e.Category,
		EventType:     e.EventType,
		MemberID:      e.MemberID,
		Actor:         e.Actor,
		IP:            e.IP,
		Success:       e.Success,
		FailureReason: e.FailureReason,
	}
	for k, v := range e.Details {
		item.Details = append(item.Details, detail{Key: k, Value: v})
	}
	sort.Slice(item.Details, func(i, j int) bool { return item.Details[i].Key < item.Details[j].Key })
	return item
}
