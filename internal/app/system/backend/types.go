package backend

import "github.com/dalemusser/retreatreg/internal/domain/models"

// RegistrationRequest is the POST /retreatreg body. MpesaCode is sent as
// null when the pasted message carried no code.
type RegistrationRequest struct {
	FullName         string             `json:"fullName"`
	PhoneNumber      string             `json:"phoneNumber"`
	Location         string             `json:"location"`
	EmergencyContact string             `json:"emergencyContact"`
	EmergencyPhone   string             `json:"emergencyPhone"`
	PaymentPlan      models.PaymentPlan `json:"paymentPlan"`
	MpesaCode        *string            `json:"mpesaCode"`
}

// PaymentRequest is the POST /payments/process body.
type PaymentRequest struct {
	Phone       string       `json:"phone"`
	MpesaCode   string       `json:"mpesa_code"`
	PhaseNumber int          `json:"phase_number"`
	Amount      models.Money `json:"amount"`
}

// Result is a mutating call's outcome: the backend's message and the
// authoritative record it returned, nil when it sent none.
type Result struct {
	Message string
	Record  *models.Member
}

type phasesUpdate struct {
	ID     string                `json:"id"`
	Phases []models.PaymentPhase `json:"phases"`
}

type recordEnvelope struct {
	Message string         `json:"message"`
	Record  *models.Member `json:"record"`
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
