package search

import (
	"testing"

	"github.com/dalemusser/retreatreg/internal/domain/models"
	"github.com/google/go-cmp/cmp"
)

func member(id, name, phone string, codes ...string) models.Member {
	m := models.Member{ID: id, FullName: name, Phone: phone}
	for i, c := range codes {
		m.Phases = append(m.Phases, models.PaymentPhase{
			PhaseNumber: i + 1,
			MpesaCode:   models.StringPtr(c),
			Status:      models.PhasePending,
		})
	}
	return m
}

func TestMatcher_Member(t *testing.T) {
	m := member("1", "Zoe Wanjiru", "0712 345 678", "QWE1234567", "")

	tests := []struct {
		q    string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"zoe", true},
		{"WANJIRU", true},
		{"345", true},
		{"0712345678", true},
		{"0712-345", true},
		{"qwe123", true},
		{"QWE1234567", true},
		{"otieno", false},
		{"999", false},
		{"ZZZ", false},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			if got := NewMatcher(tt.q).Member(m); got != tt.want {
				t.Errorf("Member(%q) = %v, want %v", tt.q, got, tt.want)
			}
		})
	}
}

func TestMatcher_EmptyCodeNeverMatches(t *testing.T) {
	m := member("1", "Amina", "0700000000", "")
	if NewMatcher("x").Member(m) {
		t.Error("a phase with no code should not match")
	}
}

func TestMembers(t *testing.T) {
	all := []models.Member{
		member("1", "Amina Otieno", "0700000001"),
		member("2", "Brian Kibet", "0700000002", "ABC1234567"),
		member("3", "Amos Kiptoo", "0700000003"),
	}

	ids := func(ms []models.Member) []string {
		var out []string
		for _, m := range ms {
			out = append(out, m.ID)
		}
		return out
	}

	if diff := cmp.Diff([]string{"1", "3"}, ids(Members(all, "am"))); diff != "" {
		t.Errorf("name search (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"2"}, ids(Members(all, "abc"))); diff != "" {
		t.Errorf("code search (-want +got):\n%s", diff)
	}
	if got := Members(all, ""); len(got) != 3 {
		t.Errorf("empty query returned %d members", len(got))
	}
}
