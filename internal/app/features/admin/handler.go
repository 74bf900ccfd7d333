// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/retreatreg/internal/app/features/errors"
	"github.com/dalemusser/retreatreg/internal/app/store/audit"
	"github.com/dalemusser/retreatreg/internal/app/system/auditlog"
	"github.com/dalemusser/retreatreg/internal/app/system/auth"
	"github.com/dalemusser/retreatreg/internal/app/system/backend"
	"github.com/dalemusser/retreatreg/internal/domain/models"
	"go.uber.org/zap"
)

const timeLayout = "2 Jan 2006 15:04"

type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	Backend    *backend.Client
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Events     *audit.Store // nil without MongoDB
	Plan       models.PlanConfig
	Loc        *time.Location
}

func NewHandler(
	client *backend.Client,
	sessionMgr *auth.SessionManager,
	auditLog *auditlog.Logger,
	events *audit.Store,
	plan models.PlanConfig,
	loc *time.Location,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		Log:        logger,
		ErrLog:     errLog,
		Backend:    client,
		SessionMgr: sessionMgr,
		AuditLog:   auditLog,
		Events:     events,
		Plan:       plan,
		Loc:        loc,
	}
}

// members fetches the full list. Nothing is cached between requests, and
// the backend client never serves a read that began before a write it has
// completed, so the page after a decision shows that decision.
func (h *Handler) members(ctx context.Context) ([]models.Member, error) {
	ms, err := h.Backend.ListMembers(ctx)
	if err != nil {
		h.Log.Warn("member list failed", zap.Error(err))
		return nil, err
	}
	return ms, nil
}

func findMember(members []models.Member, id string) (models.Member, bool) {
	for _, m := range members {
		if m.ID == id {
			return m, true
		}
	}
	return models.Member{}, false
}

// formatTime renders a backend timestamp in the event's zone, falling
// back to the raw string when it does not parse.
func (h *Handler) formatTime(t time.Time, raw string) string {
	if t.IsZero() {
		return raw
	}
	return t.In(h.Loc).Format(timeLayout)
}

func actor(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		return u.Name
	}
	return ""
}

func (h *Handler) flashSuccess(w http.ResponseWriter, r *http.Request, msg string) {
	if err := h.SessionMgr.FlashSuccess(w, r, msg); err != nil {
		h.Log.Warn("failed to queue flash", zap.Error(err))
	}
}

func (h *Handler) flashError(w http.ResponseWriter, r *http.Request, msg string) {
	if err := h.SessionMgr.FlashError(w, r, msg); err != nil {
		h.Log.Warn("failed to queue flash", zap.Error(err))
	}
}
