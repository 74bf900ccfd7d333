// internal/app/features/admin/types.go
package admin

import (
	"github.com/dalemusser/retreatreg/internal/app/system/paging"
	"github.com/dalemusser/retreatreg/internal/app/system/viewdata"
	"github.com/dalemusser/retreatreg/internal/domain/models"
)

const (
	msgListFailed     = "Failed to fetch members"
	msgMemberNotFound = "Member not found"
	msgNotAwaiting    = "This payment is no longer awaiting approval."
)

// memberRow is one line of the members table.
type memberRow struct {
	ID          string
	Name        string
	Phone       string
	Plan        string
	PlanLabel   string
	Codes       []string
	TotalPaid   models.Money
	Remaining   models.Money
	PhaseStatus string
	Status      string
}

type membersData struct {
	viewdata.BaseVM
	Q         string
	Rows      []memberRow
	LoadError string
	paging.Window
}

// historyRow is one phase in the member details payment history.
type historyRow struct {
	Number      int
	Description string
	Amount      models.Money
	Code        string
	Status      string
	Awaiting    bool
}

type eventRow struct {
	When          string
	EventType     string
	Actor         string
	Success       bool
	FailureReason string
}

type memberData struct {
	viewdata.BaseVM
	Member    models.Member
	PlanLabel string
	Status    string
	Paid      models.Money
	Total     models.Money
	Remaining models.Money
	Percent   int
	Updated   string
	History   []historyRow

	EventsEnabled bool
	EventsError   bool
	Events        []eventRow
}

// pendingRow is one entry of the approval queue.
type pendingRow struct {
	MemberID       string
	MemberName     string
	Phone          string
	PhaseNumber    int
	Description    string
	Amount         models.Money
	ExpectedAmount models.Money
	Code           string
	Submitted      string
}

type paymentsData struct {
	viewdata.BaseVM
	Rows      []pendingRow
	LoadError string
}

type reviewData struct {
	viewdata.BaseVM
	pendingRow
}

// statsView is the statistics tab.
type statsView struct {
	Members          int
	Collected        models.Money
	Outstanding      models.Money
	Completed        int
	Active           int
	NotStarted       int
	PendingApprovals int
	FullPlan         int
	InstallmentPlan  int
}

type statsData struct {
	viewdata.BaseVM
	statsView
	LoadError string
}
