// Package mpesa pulls the transaction code out of a pasted M-Pesa
// confirmation SMS.
//
// Confirmation messages start with the code, e.g.
//
//	"TFK3XY12AB Confirmed. Ksh2,200.00 paid to VAULT MINISTRIES..."
//
// Only a code at the very start of the message counts. Anything else is
// treated as "no code", which is valid for a registration.
package mpesa

import (
	"regexp"
	"strings"
)

// CodeLength is the length of an M-Pesa transaction code.
const CodeLength = 10

var leadingCode = regexp.MustCompile(`^[A-Z0-9]{10}`)

// ExtractCode returns the first run of ten upper-case letters or digits
// at the start of msg. Leading whitespace is ignored.
func ExtractCode(msg string) (string, bool) {
	code := leadingCode.FindString(strings.TrimSpace(msg))
	if code == "" {
		return "", false
	}
	return code, true
}

// ExtractCodePtr is ExtractCode shaped for a nullable JSON field.
func ExtractCodePtr(msg string) *string {
	code, ok := ExtractCode(msg)
	if !ok {
		return nil
	}
	return &code
}

// NormalizeCode trims a code typed by hand and upper-cases it. It does not
// validate the shape; the backend owns that decision.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
