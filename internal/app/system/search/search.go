// Package search holds the matching rules for the admin member search box.
package search

import (
	"strings"

	"github.com/dalemusser/retreatreg/internal/app/system/normalize"
	"github.com/dalemusser/retreatreg/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Matcher is a prepared search query. The zero value matches everything.
type Matcher struct {
	raw   string
	fold  string
	phone string
	code  string
}

// NewMatcher prepares q once so a long member list is not re-folded per row.
func NewMatcher(q string) Matcher {
	q = normalize.Query(q)
	return Matcher{
		raw:   q,
		fold:  text.Fold(q),
		phone: normalize.Phone(q),
		code:  strings.ToUpper(q),
	}
}

// Empty reports whether the query is blank.
func (mt Matcher) Empty() bool { return mt.raw == "" }

// Member reports whether m matches: name (case and accent insensitive),
// phone substring, or any phase's transaction code (case insensitive).
func (mt Matcher) Member(m models.Member) bool {
	if mt.Empty() {
		return true
	}
	if strings.Contains(text.Fold(m.FullName), mt.fold) {
		return true
	}
	if mt.phone != "" && strings.Contains(normalize.Phone(m.Phone), mt.phone) {
		return true
	}
	for _, p := range m.Phases {
		if c := p.Code(); c != "" && strings.Contains(strings.ToUpper(c), mt.code) {
			return true
		}
	}
	return false
}

// Members returns the members matching q, in their original order.
func Members(members []models.Member, q string) []models.Member {
	mt := NewMatcher(q)
	if mt.Empty() {
		return members
	}
	out := make([]models.Member, 0, len(members))
	for _, m := range members {
		if mt.Member(m) {
			out = append(out, m)
		}
	}
	return out
}
