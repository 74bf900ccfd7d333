// internal/app/features/register/handler.go
package register

import (
	"net/http"
	"strconv"
	"time"

	uierrors "github.com/dalemusser/retreatreg/internal/app/features/errors"
	"github.com/dalemusser/retreatreg/internal/app/system/auditlog"
	"github.com/dalemusser/retreatreg/internal/app/system/auth"
	"github.com/dalemusser/retreatreg/internal/app/system/backend"
	"github.com/dalemusser/retreatreg/internal/app/system/formutil"
	"github.com/dalemusser/retreatreg/internal/app/system/htmlsanitize"
	"github.com/dalemusser/retreatreg/internal/app/system/mpesa"
	"github.com/dalemusser/retreatreg/internal/app/system/normalize"
	"github.com/dalemusser/retreatreg/internal/app/system/ratelimit"
	"github.com/dalemusser/retreatreg/internal/app/system/viewdata"
	"github.com/dalemusser/retreatreg/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Submissions allowed per client IP in each window.
const (
	submitLimit  = 10
	submitWindow = 10 * time.Minute
)

type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	Backend    *backend.Client
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Limiter    *ratelimit.Limiter
	Plan       models.PlanConfig
}

func NewHandler(
	client *backend.Client,
	sessionMgr *auth.SessionManager,
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
		Limiter:    ratelimit.New(submitLimit, submitWindow),
		Plan:       plan,
	}
}

// ServeForm renders an empty registration form.
// GET /register
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	data := h.newFormData(r, input{Plan: string(models.PlanFull)})
	data.WithFlashes(w, r, h.SessionMgr)
	templates.Render(w, r, "register_form", data)
}

// HandleSubmit validates the form and creates the registration.
// POST /register
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse registration form", err, "We could not read your form. Please try again.", "/register")
		return
	}

	in := readInput(r)
	plan, planOK := models.NormalizePlan(in.Plan)
	if !in.complete() || !planOK {
		h.reRender(w, r, in, http.StatusOK, msgRequired)
		return
	}

	if !h.Limiter.Allow(ratelimit.ClientIP(r)) {
		h.Log.Warn("registration rate limited", zap.String("ip", ratelimit.ClientIP(r)))
		h.reRender(w, r, in, http.StatusTooManyRequests, msgRateLimited)
		return
	}

	req := in.request(plan)
	res, err := h.Backend.Register(r.Context(), req)
	if err != nil {
		msg := backend.UserMessage(err, msgFailed)
		if backend.IsDuplicateCode(err) {
			msg = backend.DuplicateCodeMessage
		}
		h.Log.Info("registration refused",
			zap.String("full_name", req.FullName),
			zap.Error(err),
		)
		h.AuditLog.RegistrationFailed(r.Context(), r, req.FullName, err.Error())
		h.reRender(w, r, in, http.StatusOK, msg)
		return
	}

	memberID := ""
	if res.Record != nil {
		memberID = res.Record.ID
	}
	h.AuditLog.RegistrationSubmitted(r.Context(), r, memberID, req.FullName, plan, req.MpesaCode)

	// The tracker looks the registrant up with exactly what they typed.
	if err := h.SessionMgr.SetLookup(w, r, auth.Lookup{Phone: req.PhoneNumber, FullName: req.FullName}); err != nil {
		h.Log.Warn("failed to remember registrant", zap.Error(err))
	}
	if err := h.SessionMgr.FlashSuccess(w, r, msgSuccess); err != nil {
		h.Log.Warn("failed to queue flash", zap.Error(err))
	}
	http.Redirect(w, r, "/register/success", http.StatusSeeOther)
}

// ServeSuccess renders the confirmation page.
// GET /register/success
func (h *Handler) ServeSuccess(w http.ResponseWriter, r *http.Request) {
	data := successData{
		BaseVM: viewdata.NewBaseVM(r, "Registration Received", "/"),
		Steps: []successStep{
			{Title: "Registration Submitted", Desc: "Your form and payment confirmation have been received"},
			{Title: "Payment Verification", Desc: "We’ll verify your M-Pesa payment within 24 hours"},
		},
		Notes: []string{
			"Keep your phone available - we may call to confirm details",
			"Check your messages regularly for updates",
			"If you don’t hear from us within 48 hours, please contact us",
		},
	}
	data.WithFlashes(w, r, h.SessionMgr)
	templates.Render(w, r, "register_success", data)
}

func (h *Handler) reRender(w http.ResponseWriter, r *http.Request, in input, status int, msg string) {
	data := h.newFormData(r, in)
	data.SetError(msg)
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "register_form", data)
}

func (h *Handler) newFormData(r *http.Request, in input) formData {
	data := formData{
		input:        in,
		Plans:        h.Plan.Options(),
		Schedule:     schedule(h.Plan),
		Total:        h.Plan.Total,
		Instructions: paymentInstructions,
	}
	formutil.SetBase(&data.Base, r, "Register", "/")
	if data.TillNumber == "" {
		data.TillNumber = h.Plan.TillNumber
	}
	return data
}

func readInput(r *http.Request) input {
	clean := func(key string) string {
		return htmlsanitize.PlainText(r.PostFormValue(key))
	}
	return input{
		FullName:       normalize.Name(clean("full_name")),
		Phone:          clean("phone"),
		Location:       clean("location"),
		EmergencyName:  normalize.Name(clean("emergency_name")),
		EmergencyPhone: clean("emergency_phone"),
		Plan:           clean("payment_plan"),
		MpesaMessage:   clean("mpesa_message"),
	}
}

func (in input) complete() bool {
	for _, v := range []string{in.FullName, in.Phone, in.Location, in.EmergencyName, in.EmergencyPhone, in.Plan} {
		if v == "" {
			return false
		}
	}
	return true
}

func (in input) request(plan models.PaymentPlan) backend.RegistrationRequest {
	return backend.RegistrationRequest{
		FullName:         in.FullName,
		PhoneNumber:      normalize.Phone(in.Phone),
		Location:         in.Location,
		EmergencyContact: in.EmergencyName,
		EmergencyPhone:   normalize.Phone(in.EmergencyPhone),
		PaymentPlan:      plan,
		MpesaCode:        mpesa.ExtractCodePtr(in.MpesaMessage),
	}
}

// schedule labels the installment amounts for the plan sidebar.
func schedule(plan models.PlanConfig) []scheduleRow {
	rows := make([]scheduleRow, 0, len(plan.InstallmentAmounts))
	n := len(plan.InstallmentAmounts)
	for i, a := range plan.InstallmentAmounts {
		label := ordinal(i) + " Installment"
		switch {
		case i == 0:
			label = "Initial Deposit"
		case i == n-1:
			label = "Final Payment"
		}
		rows = append(rows, scheduleRow{Label: label, Amount: a})
	}
	return rows
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}
