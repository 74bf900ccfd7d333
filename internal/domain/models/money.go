// internal/domain/models/money.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is an amount in whole Kenyan shillings.
//
// The backend is not consistent about amount encoding: some records carry
// JSON numbers, others numeric strings ("500" or "500.00"). Money accepts
// both and always encodes as a JSON number.
type Money int64

// UnmarshalJSON accepts a number, a numeric string, an empty string, or null.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = 0
		return nil
	}

	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("money: %w", err)
		}
		raw = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
		if raw == "" {
			*m = 0
			return nil
		}
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("money: invalid amount %q", raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("money: invalid amount %q", raw)
	}
	*m = Money(math.Round(f))
	return nil
}

// MarshalJSON encodes the amount as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(m), 10)), nil
}

// String formats with thousands separators, e.g. 2200 → "2,200".
func (m Money) String() string {
	n := int64(m)
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return sign + s
	}

	var out strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		out.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if out.Len() > 0 {
			out.WriteByte(',')
		}
		out.WriteString(s[i : i+3])
	}
	return sign + out.String()
}

// KSH formats the amount for display, e.g. "KSH 2,200".
func (m Money) KSH() string {
	return "KSH " + m.String()
}
