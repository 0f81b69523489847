package conditionals

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formbridge/forms"
)

// Operator names accepted in rules.
const (
	OpIs          = "=="
	OpIsNot       = "!="
	OpEmpty       = "e"
	OpNotEmpty    = "!e"
	OpContains    = "c"
	OpNotContains = "!c"
	OpStartsWith  = "^"
	OpEndsWith    = "~"
	OpGreater     = ">"
	OpLess        = "<"
)

// Operator pairs an operator with its builder label.
type Operator struct {
	Name  string
	Label string
}

var operators = []Operator{
	{OpIs, "is"},
	{OpIsNot, "is not"},
	{OpEmpty, "empty"},
	{OpNotEmpty, "not empty"},
	{OpContains, "contains"},
	{OpNotContains, "does not contain"},
	{OpStartsWith, "starts with"},
	{OpEndsWith, "ends with"},
	{OpGreater, "greater than"},
	{OpLess, "less than"},
}

// Operators lists the supported operators in builder order.
func Operators() []Operator {
	out := make([]Operator, len(operators))
	copy(out, operators)
	return out
}

// Evaluate reports whether any rule group matches the submitted fields. A
// group matches when all of its rules match. Rules without a field or an
// operator are ignored, and a group left without rules never matches.
func Evaluate(fields map[int]forms.EntryField, groups forms.ConditionalGroups) bool {
	for _, group := range groups {
		if groupMatches(fields, group) {
			return true
		}
	}
	return false
}

func groupMatches(fields map[int]forms.EntryField, rules []forms.ConditionalRule) bool {
	checked := 0
	for _, rule := range rules {
		if rule.Field == 0 || rule.Operator == "" {
			continue
		}
		if !ruleMatches(fields[rule.Field], rule) {
			return false
		}
		checked++
	}
	return checked > 0
}

func ruleMatches(field forms.EntryField, rule forms.ConditionalRule) bool {
	right := normalize(rule.Value)

	// multi value fields match == / != against any submitted choice
	values := []string{normalize(field.Value)}
	if field.Type == "checkbox" && strings.Contains(field.Value, "\n") {
		values = values[:0]
		for _, part := range strings.Split(field.Value, "\n") {
			values = append(values, normalize(part))
		}
	}

	switch rule.Operator {
	case OpIs:
		return containsValue(values, right)
	case OpIsNot:
		return !containsValue(values, right)
	}

	left := normalize(field.Value)
	switch rule.Operator {
	case OpEmpty:
		return left == ""
	case OpNotEmpty:
		return left != ""
	case OpContains:
		return strings.Contains(left, right)
	case OpNotContains:
		return !strings.Contains(left, right)
	case OpStartsWith:
		return strings.HasPrefix(left, right)
	case OpEndsWith:
		return strings.HasSuffix(left, right)
	case OpGreater, OpLess:
		l, errL := strconv.ParseFloat(left, 64)
		r, errR := strconv.ParseFloat(right, 64)
		if errL != nil || errR != nil {
			return false
		}
		if rule.Operator == OpGreater {
			return l > r
		}
		return l < r
	default:
		return false
	}
}

func containsValue(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
