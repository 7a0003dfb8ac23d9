package alert

import (
	"sort"
	"strings"
)

// Category is a user-facing alert toggle.
type Category string

const (
	CategoryKickoff  Category = "kickoff"
	CategoryGoals    Category = "goals"
	CategoryRedCards Category = "red_cards"
	CategoryHalftime Category = "halftime"
	CategoryFulltime Category = "fulltime"
)

var AllCategories = []Category{
	CategoryKickoff,
	CategoryGoals,
	CategoryRedCards,
	CategoryHalftime,
	CategoryFulltime,
}

// Policy decides which categories are delivered. The zero value allows everything.
type Policy struct {
	disabled map[Category]struct{}
}

func DefaultPolicy() Policy {
	return Policy{}
}

// NewPolicy builds a policy from a category name -> enabled mapping. Absent
// keys keep the default (enabled); unrecognised keys are returned so callers
// can report them.
func NewPolicy(toggles map[string]bool) (Policy, []string) {
	policy := Policy{disabled: make(map[Category]struct{})}
	var unknown []string
	for rawKey, enabled := range toggles {
		category, ok := ParseCategory(rawKey)
		if !ok {
			unknown = append(unknown, rawKey)
			continue
		}
		if !enabled {
			policy.disabled[category] = struct{}{}
		}
	}
	sort.Strings(unknown)
	return policy, unknown
}

func ParseCategory(raw string) (Category, bool) {
	value := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, category := range AllCategories {
		if category == value {
			return category, true
		}
	}
	return "", false
}

func (p Policy) Allow(category Category) bool {
	if category == "" {
		return false
	}
	_, off := p.disabled[category]
	return !off
}

// Filter keeps the allowed notifications in their original order.
func (p Policy) Filter(items []Notification) []Notification {
	out := make([]Notification, 0, len(items))
	for _, item := range items {
		if p.Allow(item.Kind.Category()) {
			out = append(out, item)
		}
	}
	return out
}

// Toggles reports the effective setting of every category.
func (p Policy) Toggles() map[string]bool {
	out := make(map[string]bool, len(AllCategories))
	for _, category := range AllCategories {
		out[string(category)] = p.Allow(category)
	}
	return out
}
