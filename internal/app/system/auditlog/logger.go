// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/retreatreg/internal/app/store/audit"
	"github.com/dalemusser/retreatreg/internal/app/system/ratelimit"
	"github.com/dalemusser/retreatreg/internal/app/system/timeouts"
	"github.com/dalemusser/retreatreg/internal/domain/models"
	"go.uber.org/zap"
)

// Destinations for a category.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Payments covers registration and installment submissions.
	Payments string
	// Admin covers payment decisions and admin sign-in.
	Admin string
}

// Logger records audit events to structured logs and, when a store is
// configured, to MongoDB.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil, in which case "db"
// destinations are skipped.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// HasStore reports whether events are persisted.
func (l *Logger) HasStore() bool { return l != nil && l.store != nil }

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.MemberID != "" {
		fields = append(fields, zap.String("member_id", event.MemberID))
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

func (l *Logger) setting(category string) string {
	switch category {
	case audit.CategoryRegistration, audit.CategoryPayment:
		return l.config.Payments
	case audit.CategoryReview, audit.CategoryAuth:
		return l.config.Admin
	default:
		return All
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := l.setting(event.Category)
	if setting == "" {
		setting = All
	}
	if setting == Off {
		return
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}

	if (setting == All || setting == DB) && l.store != nil {
		ctx, cancel := timeouts.WithTimeout(context.WithoutCancel(ctx), timeouts.Short(), l.zapLog, "audit insert")
		defer cancel()
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func base(r *http.Request, category, eventType string) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// --- Registrant events ---

// RegistrationSubmitted logs a registration the backend accepted.
// memberID is empty when the backend returned no record.
func (l *Logger) RegistrationSubmitted(ctx context.Context, r *http.Request, memberID, fullName string, plan models.PaymentPlan, code *string) {
	e := base(r, audit.CategoryRegistration, audit.EventRegistrationSubmitted)
	e.MemberID = memberID
	e.Success = true
	e.Details = map[string]string{
		"full_name":    fullName,
		"payment_plan": string(plan),
		"has_code":     strconv.FormatBool(code != nil),
	}
	if code != nil {
		e.Details["mpesa_code"] = *code
	}
	l.Log(ctx, e)
}

// RegistrationFailed logs a registration the backend refused.
func (l *Logger) RegistrationFailed(ctx context.Context, r *http.Request, fullName, reason string) {
	e := base(r, audit.CategoryRegistration, audit.EventRegistrationFailed)
	e.FailureReason = reason
	e.Details = map[string]string{"full_name": fullName}
	l.Log(ctx, e)
}

// PaymentSubmitted logs an installment the backend accepted for review.
func (l *Logger) PaymentSubmitted(ctx context.Context, r *http.Request, memberID string, phase int, amount models.Money, code string) {
	e := base(r, audit.CategoryPayment, audit.EventPaymentSubmitted)
	e.MemberID = memberID
	e.Success = true
	e.Details = map[string]string{
		"phase":      strconv.Itoa(phase),
		"amount":     amount.String(),
		"mpesa_code": code,
	}
	l.Log(ctx, e)
}

// PaymentFailed logs an installment submission the backend refused.
func (l *Logger) PaymentFailed(ctx context.Context, r *http.Request, memberID string, phase int, code, reason string) {
	e := base(r, audit.CategoryPayment, audit.EventPaymentFailed)
	e.MemberID = memberID
	e.FailureReason = reason
	e.Details = map[string]string{
		"phase":      strconv.Itoa(phase),
		"mpesa_code": code,
	}
	l.Log(ctx, e)
}

// --- Admin events ---

// PaymentDecided logs an approve or reject the backend accepted.
func (l *Logger) PaymentDecided(ctx context.Context, r *http.Request, actor, memberID string, phase int, approved bool, code string) {
	eventType := audit.EventPaymentRejected
	if approved {
		eventType = audit.EventPaymentApproved
	}
	e := base(r, audit.CategoryReview, eventType)
	e.MemberID = memberID
	e.Actor = actor
	e.Success = true
	e.Details = map[string]string{
		"phase":      strconv.Itoa(phase),
		"mpesa_code": code,
	}
	l.Log(ctx, e)
}

// ReviewFailed logs a decision that did not reach the backend.
func (l *Logger) ReviewFailed(ctx context.Context, r *http.Request, actor, memberID string, phase int, decision, reason string) {
	e := base(r, audit.CategoryReview, audit.EventReviewFailed)
	e.MemberID = memberID
	e.Actor = actor
	e.FailureReason = reason
	e.Details = map[string]string{
		"phase":    strconv.Itoa(phase),
		"decision": decision,
	}
	l.Log(ctx, e)
}

// LoginSuccess logs an admin sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, username string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginSuccess)
	e.Actor = username
	e.Success = true
	l.Log(ctx, e)
}

// LoginFailed logs a rejected admin sign-in.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, username, reason string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailed)
	e.Actor = username
	e.FailureReason = reason
	l.Log(ctx, e)
}

// LoginRateLimited logs a sign-in refused by the rate limiter.
func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, username string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginRateLimited)
	e.Actor = username
	e.FailureReason = "rate limited"
	l.Log(ctx, e)
}

// Logout logs an admin sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, username string) {
	e := base(r, audit.CategoryAuth, audit.EventLogout)
	e.Actor = username
	e.Success = true
	l.Log(ctx, e)
}
