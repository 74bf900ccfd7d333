// internal/app/features/register/types.go
package register

import (
	"github.com/dalemusser/retreatreg/internal/app/system/formutil"
	"github.com/dalemusser/retreatreg/internal/app/system/viewdata"
	"github.com/dalemusser/retreatreg/internal/domain/models"
)

// Messages shown on the registration form.
const (
	msgRequired    = "Please fill in all required fields."
	msgFailed      = "Registration failed. Please try again."
	msgRateLimited = "Too many registration attempts. Please wait a few minutes and try again."
	msgSuccess     = "Registration Successful!"
)

// paymentInstructions are the M-Pesa steps printed beside the form.
var paymentInstructions = []string{
	"Go to M-Pesa",
	"Select “Lipa na M-Pesa”",
	"Select “Buy Goods and Services”",
	"Enter Till Number",
	"Enter amount based on your plan",
	"Copy and paste confirmation here",
}

// input is what the visitor typed, echoed back when the form is re-rendered.
type input struct {
	FullName       string
	Phone          string
	Location       string
	EmergencyName  string
	EmergencyPhone string
	Plan           string
	MpesaMessage   string
}

type scheduleRow struct {
	Label  string
	Amount models.Money
}

type formData struct {
	formutil.Base
	input

	Plans        []models.PlanOption
	Schedule     []scheduleRow
	Total        models.Money
	Instructions []string
}

type successStep struct {
	Title string
	Desc  string
}

type successData struct {
	viewdata.BaseVM
	Steps []successStep
	Notes []string
}
