package qr

import (
	"strings"

	"github.com/dmitrijs2005/gophgate/internal/client/models"
)

// SessionRule maps a session description to a pass type when Match reports
// true.
type SessionRule struct {
	PassType string
	Match    func(session string) bool
}

// DefaultSessionRules returns the keyword rules printed passes are matched
// with, in priority order.
func DefaultSessionRules() []SessionRule {
	return []SessionRule{
		{PassType: models.PassExhibitionDay1, Match: containsAll("25 Nov", "Exhibition")},
		{PassType: models.PassExhibitionDay2, Match: containsAll("26 Nov", "Exhibition")},
		{PassType: models.PassExhibitionBothDays, Match: containsAny("25 & 26", "both")},
		{PassType: models.PassInteractiveSessions, Match: containsFold("interactive")},
		{PassType: models.PassPlenary, Match: containsFold("plenary")},
	}
}

// InferPassType returns the pass type of the first matching rule.
func InferPassType(rules []SessionRule, session string) string {
	for _, r := range rules {
		if r.Match(session) {
			return r.PassType
		}
	}
	return models.PassUnknown
}

func containsAll(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if !strings.Contains(s, sub) {
				return false
			}
		}
		return true
	}
}

func containsAny(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

func containsFold(sub string) func(string) bool {
	return func(s string) bool {
		return strings.Contains(strings.ToLower(s), sub)
	}
}
