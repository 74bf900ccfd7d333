// internal/app/features/auditlog/handler.go
package auditlog

import (
	"time"

	uierrors "github.com/dalemusser/retreatreg/internal/app/features/errors"
	"github.com/dalemusser/retreatreg/internal/app/store/audit"
	"go.uber.org/zap"
)

type Handler struct {
	Store  *audit.Store
	Loc    *time.Location
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs the activity page handler. store is nil when no
// MongoDB is configured; the page then explains that events only go to
// the application log. loc is the zone timestamps are shown in.
func NewHandler(store *audit.Store, loc *time.Location, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		Store:  store,
		Loc:    loc,
		Log:    logger,
		ErrLog: errLog,
	}
}
