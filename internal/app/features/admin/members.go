// internal/app/features/admin/members.go
package admin

import (
	"net/http"
	"strings"

	"github.com/dalemusser/retreatreg/internal/app/policy/phasepolicy"
	"github.com/dalemusser/retreatreg/internal/app/store/audit"
	"github.com/dalemusser/retreatreg/internal/app/system/backend"
	"github.com/dalemusser/retreatreg/internal/app/system/paging"
	"github.com/dalemusser/retreatreg/internal/app/system/search"
	"github.com/dalemusser/retreatreg/internal/app/system/timeouts"
	"github.com/dalemusser/retreatreg/internal/app/system/viewdata"
	"github.com/dalemusser/retreatreg/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const memberEventLimit = 20

// ServeMembers renders the members table with search.
// GET /admin
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	q := query.Get(r, "q")
	data := membersData{
		BaseVM: viewdata.NewBaseVM(r, "Members", "/"),
		Q:      q,
	}

	all, err := h.members(r.Context())
	if err != nil {
		data.LoadError = backend.UserMessage(err, msgListFailed)
		data.Window = paging.Compute(1, paging.PageSize, 0, 0)
		data.WithFlashes(w, r, h.SessionMgr)
		w.WriteHeader(http.StatusBadGateway)
		templates.Render(w, r, "admin_members", data)
		return
	}

	matched := search.Members(all, q)
	page, win := paging.Slice(matched, paging.ParsePage(r), paging.PageSize)
	data.Window = win
	for _, m := range page {
		data.Rows = append(data.Rows, newMemberRow(m))
	}

	data.WithFlashes(w, r, h.SessionMgr)
	templates.Render(w, r, "admin_members", data)
}

func newMemberRow(m models.Member) memberRow {
	row := memberRow{
		ID:          m.ID,
		Name:        m.FullName,
		Phone:       m.Phone,
		Plan:        string(m.PaymentPlan),
		PlanLabel:   m.PaymentPlan.Label(),
		TotalPaid:   m.TotalPaid,
		Remaining:   m.RemainingAmount,
		PhaseStatus: phasepolicy.StatusLabel(m.Phases),
		Status:      string(m.Status()),
	}
	for _, p := range m.SortedPhases() {
		if c := p.Code(); c != "" {
			row.Codes = append(row.Codes, c)
		}
	}
	return row
}

// ServeMember renders one member's details and payment history.
// GET /admin/members/{id}
func (h *Handler) ServeMember(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	all, err := h.members(r.Context())
	if err != nil {
		h.ErrLog.LogBadGateway(w, r, "member details", err, backend.UserMessage(err, msgListFailed), "/admin")
		return
	}
	m, ok := findMember(all, id)
	if !ok {
		h.ErrLog.LogNotFound(w, r, "member not found", nil, msgMemberNotFound, "/admin")
		return
	}

	data := h.newMemberData(m)
	data.BaseVM = viewdata.NewBaseVM(r, m.FullName, "/admin")
	h.attachEvents(r, &data)
	data.WithFlashes(w, r, h.SessionMgr)
	templates.Render(w, r, "admin_member", data)
}

func (h *Handler) newMemberData(m models.Member) memberData {
	p := phasepolicy.Evaluate(m, h.Plan)
	data := memberData{
		Member:    m,
		PlanLabel: m.PaymentPlan.Label(),
		Status:    string(m.Status()),
		Paid:      p.Paid,
		Total:     p.Total,
		Remaining: p.Remaining,
		Percent:   p.Percent,
		Updated:   h.formatTime(m.Updated(), m.UpdatedAt),
	}
	for _, ph := range p.Phases {
		status := strings.ToLower(string(ph.Status))
		if status == "" {
			status = "pending"
		}
		data.History = append(data.History, historyRow{
			Number:      ph.PhaseNumber,
			Description: ph.Description,
			Amount:      ph.Amount,
			Code:        ph.Code(),
			Status:      status,
			Awaiting:    ph.AwaitingApproval(),
		})
	}
	return data
}

// attachEvents adds the member's recent audit trail when a store is
// configured. A failed query only hides the section.
func (h *Handler) attachEvents(r *http.Request, data *memberData) {
	if h.Events == nil {
		return
	}
	data.EventsEnabled = true

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "member events")
	defer cancel()

	events, err := h.Events.GetByMember(ctx, data.Member.ID, memberEventLimit)
	if err != nil {
		h.Log.Warn("member events failed", zap.String("member_id", data.Member.ID), zap.Error(err))
		data.EventsError = true
		return
	}
	for _, e := range events {
		data.Events = append(data.Events, h.newEventRow(e))
	}
}

func (h *Handler) newEventRow(e audit.Event) eventRow {
	return eventRow{
		When:          e.Timestamp.In(h.Loc).Format(timeLayout),
		EventType:     e.EventType,
		Actor:         e.Actor,
		Success:       e.Success,
		FailureReason: e.FailureReason,
	}
}
