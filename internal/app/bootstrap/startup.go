// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/retreatreg/internal/app/resources"
	"github.com/dalemusser/retreatreg/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after the backends are
// connected but before the HTTP handler is built: the site text every page
// shows, the shared templates, and the snapshot sweeper.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	viewdata.Init(siteFromConfig(appCfg))
	resources.LoadSharedTemplates()

	if deps.Sweeper != nil {
		deps.Sweeper.Start()
	}
	return nil
}

func siteFromConfig(appCfg AppConfig) viewdata.Site {
	return viewdata.Site{
		Name:         appCfg.EventName,
		EventName:    appCfg.EventName,
		PickupPoint:  appCfg.PickupPoint,
		ContactPhone: appCfg.ContactPhone,
		ContactEmail: appCfg.ContactEmail,
		TillNumber:   appCfg.Plan.TillNumber,
		NoticeHTML:   appCfg.NoticeHTML,
	}
}
