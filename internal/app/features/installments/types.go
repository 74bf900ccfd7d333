// internal/app/features/installments/types.go
package installments

import (
	"github.com/dalemusser/retreatreg/internal/app/system/viewdata"
	"github.com/dalemusser/retreatreg/internal/domain/models"
)

// Flash and panel text.
const (
	msgLookupRequired = "Please enter both name and phone number"
	msgLookupFailed   = "Failed to fetch payment record"
	msgRefreshed      = "Payment status refreshed"
	msgCodeRequired   = "Please enter your M-Pesa confirmation code"
	msgNoCurrentPhase = "No current phase to pay"
	msgBlocked        = "Your previous payment is awaiting approval. Please wait until it’s approved to proceed."
	msgPhaseChanged   = "Your payment status has changed. Please review it and try again."
	msgPayFailed      = "Failed to process payment"
	msgRateLimited    = "Too many payment attempts. Please wait a few minutes and try again."
)

type lookupData struct {
	viewdata.BaseVM
	FullName string
	Phone    string
}

// phaseRow is one line of the phase list.
type phaseRow struct {
	Number      int
	Description string
	Amount      models.Money
	Badge       string
	BadgeClass  string
	Code        string
	Current     bool
}

// trackerView is everything the tracker renders for one member. It is
// built from the snapshot alone so it can be tested without HTTP.
type trackerView struct {
	MemberName string
	Phone      string
	Plan       models.PaymentPlan

	NoPhases bool
	Phases   []phaseRow

	Paid      models.Money
	Total     models.Money
	Remaining models.Money
	Percent   int

	Complete   bool
	HasCurrent bool
	Current    phaseRow
	Blocked    bool

	// StatusError explains why no phase is payable.
	StatusError string
}

type trackerData struct {
	viewdata.BaseVM
	trackerView

	// LoadError replaces the tracker with a retry panel when the
	// backend could not be read.
	LoadError string
}
