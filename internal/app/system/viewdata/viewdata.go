// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"html/template"
	"net/http"
	"sync"

	"github.com/dalemusser/retreatreg/internal/app/system/auth"
	"github.com/dalemusser/retreatreg/internal/app/system/htmlsanitize"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is shown when no event name is configured.
const DefaultSiteName = "Vault Retreat Registration"

// Site is the per-deployment text every page shows.
type Site struct {
	Name         string
	EventName    string
	PickupPoint  string
	ContactPhone string
	ContactEmail string
	TillNumber   string
	NoticeHTML   string
}

var (
	siteMu sync.RWMutex
	site   = Site{Name: DefaultSiteName}
)

// Init sets the site text. Call it once at startup from bootstrap.
func Init(s Site) {
	if s.Name == "" {
		s.Name = DefaultSiteName
	}
	siteMu.Lock()
	site = s
	siteMu.Unlock()
}

// CurrentSite returns the configured site text.
func CurrentSite() Site {
	siteMu.RLock()
	defer siteMu.RUnlock()
	return site
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName     string
	EventName    string
	PickupPoint  string
	ContactPhone string
	ContactEmail string
	TillNumber   string
	Notice       template.HTML

	// Admin context (from auth middleware)
	IsAdmin  bool
	UserName string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	CSRFToken string

	Flashes auth.Flashes
}

// NewBaseVM creates a fully populated BaseVM for a page.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	s := CurrentSite()
	vm := BaseVM{
		SiteName:     s.Name,
		EventName:    s.EventName,
		PickupPoint:  s.PickupPoint,
		ContactPhone: s.ContactPhone,
		ContactEmail: s.ContactEmail,
		TillNumber:   s.TillNumber,
		Notice:       htmlsanitize.SanitizeToHTML(s.NoticeHTML),
		Title:        title,
		BackURL:      httpnav.ResolveBackURL(r, backDefault),
		CurrentPath:  httpnav.CurrentPath(r),
		CSRFToken:    csrf.Token(r),
	}
	if u, ok := auth.CurrentUser(r); ok && u.IsAdmin() {
		vm.IsAdmin = true
		vm.UserName = u.Name
	}
	return vm
}

// WithFlashes moves queued flash messages onto the view model.
func (vm *BaseVM) WithFlashes(w http.ResponseWriter, r *http.Request, sm *auth.SessionManager) {
	if sm == nil {
		return
	}
	vm.Flashes = sm.TakeFlashes(w, r)
}
