// internal/app/features/admin/stats.go
package admin

import (
	"net/http"

	"github.com/dalemusser/retreatreg/internal/app/system/backend"
	"github.com/dalemusser/retreatreg/internal/app/system/viewdata"
	"github.com/dalemusser/retreatreg/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

// ServeStats renders the statistics tab.
// GET /admin/stats
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	data := statsData{BaseVM: viewdata.NewBaseVM(r, "Statistics", "/admin")}

	all, err := h.members(r.Context())
	if err != nil {
		data.LoadError = backend.UserMessage(err, msgListFailed)
		data.WithFlashes(w, r, h.SessionMgr)
		w.WriteHeader(http.StatusBadGateway)
		templates.Render(w, r, "admin_stats", data)
		return
	}
	data.statsView = computeStats(all)

	data.WithFlashes(w, r, h.SessionMgr)
	templates.Render(w, r, "admin_stats", data)
}

func computeStats(members []models.Member) statsView {
	s := statsView{
		Members:          len(members),
		PendingApprovals: len(models.PendingPayments(members)),
	}
	for _, m := range members {
		s.Collected += m.TotalPaid
		if m.RemainingAmount > 0 {
			s.Outstanding += m.RemainingAmount
		}
		switch m.Status() {
		case models.MemberCompleted:
			s.Completed++
		case models.MemberActive:
			s.Active++
		default:
			s.NotStarted++
		}
		switch plan, _ := models.NormalizePlan(string(m.PaymentPlan)); plan {
		case models.PlanFull:
			s.FullPlan++
		case models.PlanInstallment:
			s.InstallmentPlan++
		}
	}
	return s
}
