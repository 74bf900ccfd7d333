// internal/app/features/auditlog/types.go
package auditlog

import (
	"github.com/dalemusser/retreatreg/internal/app/store/audit"
	"github.com/dalemusser/retreatreg/internal/app/system/paging"
	"github.com/dalemusser/retreatreg/internal/app/system/viewdata"
)

// listItem represents a single audit event row for display.
type listItem struct {
	ID            string
	When          string
	Category      string
	EventType     string
	MemberID      string
	Actor         string
	IP            string
	Success       bool
	FailureReason string
	Details       []detail
}

type detail struct {
	Key   string
	Value string
}

// filters is what the filter form submitted, echoed back to it.
type filters struct {
	Category  string
	EventType string
	MemberID  string
	StartDate string
	EndDate   string
}

// listData is the view model for the activity page.
type listData struct {
	viewdata.BaseVM
	filters

	// Disabled is set when no audit store is configured.
	Disabled bool

	Items []listItem

	// Filter options
	Categories []categoryOption
	EventTypes []string

	paging.Window
}

// categoryOption represents a category for the filter dropdown.
type categoryOption struct {
	Value string
	Label string
}

// allCategories returns the available categories for filtering.
func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryRegistration, Label: "Registrations"},
		{Value: audit.CategoryPayment, Label: "Payments"},
		{Value: audit.CategoryReview, Label: "Reviews"},
		{Value: audit.CategoryAuth, Label: "Admin sign-in"},
	}
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	registration := []string{
		audit.EventRegistrationSubmitted,
		audit.EventRegistrationFailed,
	}
	payment := []string{
		audit.EventPaymentSubmitted,
		audit.EventPaymentFailed,
	}
	review := []string{
		audit.EventPaymentApproved,
		audit.EventPaymentRejected,
		audit.EventReviewFailed,
	}
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailed,
		audit.EventLoginRateLimited,
		audit.EventLogout,
	}

	switch category {
	case audit.CategoryRegistration:
		return registration
	case audit.CategoryPayment:
		return payment
	case audit.CategoryReview:
		return review
	case audit.CategoryAuth:
		return authEvents
	case "":
		all := make([]string, 0, len(registration)+len(payment)+len(review)+len(authEvents))
		all = append(all, registration...)
		all = append(all, payment...)
		all = append(all, review...)
		all = append(all, authEvents...)
		return all
	default:
		return nil
	}
}
