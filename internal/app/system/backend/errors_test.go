package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsDuplicateCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("duplicate code"), false},
		{"conflict status", &APIError{Status: http.StatusConflict, Message: "nope"}, true},
		{"duplicate mpesa", &APIError{Status: 400, Message: "Duplicate M-Pesa code"}, true},
		{"already used", &APIError{Status: 400, Message: "This transaction has already been recorded"}, true},
		{"wrapped", fmt.Errorf("register: %w", &APIError{Status: 400, Message: "mpesa code already exists"}), true},
		{"other validation", &APIError{Status: 400, Message: "Phone number is required"}, false},
		{"already registered", &APIError{Status: 400, Message: "You are already registered"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicateCode(tt.err); got != tt.want {
				t.Errorf("IsDuplicateCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"api error", &APIError{Status: 400, Message: "Invalid phase"}, "Invalid phase"},
		{"malformed", fmt.Errorf("%w: x", ErrMalformedResponse), "We received an unexpected response from the registration service. Please try again."},
		{"deadline", fmt.Errorf("lookup: %w", context.DeadlineExceeded), "The registration service took too long to respond. Please try again."},
		{"transport", errors.New("connection refused"), "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err, "fallback"); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIErrorPrefersErrorField(t *testing.T) {
	e := apiError(OpPayment, 400, []byte(`{"error":"Code used","message":"ignored"}`))
	if e.Message != "Code used" {
		t.Errorf("Message = %q", e.Message)
	}
	e = apiError(OpPayment, 400, []byte(`{"message":"Only message"}`))
	if e.Message != "Only message" {
		t.Errorf("Message = %q", e.Message)
	}
	e = apiError("unknown_op", 502, nil)
	if e.Message != http.StatusText(502) {
		t.Errorf("Message = %q", e.Message)
	}
}
