// internal/app/features/installments/handler.go
package installments

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/retreatreg/internal/app/features/errors"
	"github.com/dalemusser/retreatreg/internal/app/system/auditlog"
	"github.com/dalemusser/retreatreg/internal/app/system/auth"
	"github.com/dalemusser/retreatreg/internal/app/system/backend"
	"github.com/dalemusser/retreatreg/internal/app/system/ratelimit"
	"github.com/dalemusser/retreatreg/internal/app/system/viewstate"
	"github.com/dalemusser/retreatreg/internal/domain/models"
	"go.uber.org/zap"
)

// Payment submissions allowed per browser session in each window.
const (
	payLimit  = 5
	payWindow = 5 * time.Minute
)

type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	Backend    *backend.Client
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Views      *viewstate.Store
	Limiter    *ratelimit.Limiter
	Plan       models.PlanConfig
}

func NewHandler(
	client *backend.Client,
	sessionMgr *auth.SessionManager,
	views *viewstate.Store,
	auditLog *auditlog.Logger,
	plan models.PlanConfig,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:        logger,
		ErrLog:     errLog,
		Backend:    client,
		SessionMgr: sessionMgr,
		AuditLog:   auditLog,
		Views:      views,
		Limiter:    ratelimit.New(payLimit, payWindow),
		Plan:       plan,
	}
}

// fetch looks the member up and stores the result as viewID's snapshot,
// unless a later request has already written one. It returns the member
// the backend sent either way.
func (h *Handler) fetch(ctx context.Context, viewID string, l auth.Lookup) (models.Member, error) {
	tk := h.Views.Begin(viewID)
	m, err := h.Backend.LookupMember(ctx, l.Phone, l.FullName)
	if err != nil {
		return models.Member{}, err
	}
	if !h.Views.Replace(viewID, tk, m) {
		h.Log.Debug("dropped stale lookup response",
			zap.String("view_id", viewID),
			zap.Uint64("seq", tk.Seq()),
		)
	}
	return m, nil
}

// snapshot returns the view's member, fetching it on first use.
func (h *Handler) snapshot(ctx context.Context, viewID string, l auth.Lookup) (models.Member, error) {
	if m, ok := h.Views.Get(viewID); ok {
		return m, nil
	}
	return h.fetch(ctx, viewID, l)
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

func backToTracker(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/installments", http.StatusSeeOther)
}
