package home

import (
	"net/http"

	"github.com/dalemusser/retreatreg/internal/app/system/auth"
	"github.com/dalemusser/retreatreg/internal/app/system/viewdata"
	"github.com/dalemusser/retreatreg/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Event is the landing page's description of the retreat.
type Event struct {
	Date    string
	Venue   string
	Summary string
}

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Event      Event
	Plan       models.PlanConfig
}

func NewHandler(sessionMgr *auth.SessionManager, event Event, plan models.PlanConfig, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Event:      event,
		Plan:       plan,
	}
}

type homeData struct {
	viewdata.BaseVM
	Event
	Plans []models.PlanOption
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	data := h.newHomeData(r)
	data.WithFlashes(w, r, h.SessionMgr)
	templates.Render(w, r, "home", data)
}

func (h *Handler) newHomeData(r *http.Request) homeData {
	data := homeData{
		BaseVM: viewdata.NewBaseVM(r, "", "/"),
		Event:  h.Event,
		Plans:  h.Plan.Options(),
	}
	if data.TillNumber == "" {
		data.TillNumber = h.Plan.TillNumber
	}
	return data
}
