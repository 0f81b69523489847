package forms

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbridge/forms"
)

// maxConditionalIndex bounds the group and rule indices accepted from the
// builder.
const maxConditionalIndex = 100

// ParseProviderValues rebuilds connection metadata from builder form values
// named "providers[slug][connection_id][...]". Unknown keys are kept under
// the connection options.
func ParseProviderValues(values url.Values) forms.Providers {
	out := forms.Providers{}
	for name, vals := range values {
		path, ok := bracketPath(name)
		if !ok || len(path) < 3 || path[0] != "providers" {
			continue
		}
		slug, connectionID := path[1], path[2]
		if slug == "" || connectionID == "" {
			continue
		}
		value := ""
		if len(vals) > 0 {
			value = vals[len(vals)-1]
		}

		if out[slug] == nil {
			out[slug] = map[string]forms.Connection{}
		}
		conn := out[slug][connectionID]
		applyConnectionValue(&conn, path[3:], vals, value)
		out[slug][connectionID] = conn
	}
	for _, conns := range out {
		for id, conn := range conns {
			for _, names := range conn.Groups {
				sort.Strings(names)
			}
			conn.Conditionals = compactConditionals(conn.Conditionals)
			conns[id] = conn
		}
	}
	return out
}

// compactConditionals drops the blank rules and groups left behind by index
// gaps, e.g. after the first rule group was deleted in the builder.
func compactConditionals(groups forms.ConditionalGroups) forms.ConditionalGroups {
	var out forms.ConditionalGroups
	for _, group := range groups {
		var rules []forms.ConditionalRule
		for _, rule := range group {
			if rule != (forms.ConditionalRule{}) {
				rules = append(rules, rule)
			}
		}
		if len(rules) > 0 {
			out = append(out, rules)
		}
	}
	return out
}

func applyConnectionValue(conn *forms.Connection, path []string, vals []string, value string) {
	if len(path) == 0 {
		return
	}
	switch path[0] {
	case "connection_name":
		conn.Name = value
	case "account_id":
		conn.AccountID = value
	case "list_id":
		conn.ListID = value
	case "conditional_logic":
		conn.ConditionalLogic = value == "1" || strings.EqualFold(value, "true") || strings.EqualFold(value, "on")
	case "conditional_type":
		conn.ConditionalType = value
	case "fields":
		if len(path) == 2 && value != "" {
			if conn.Fields == nil {
				conn.Fields = map[string]string{}
			}
			conn.Fields[path[1]] = value
		}
	case "groups":
		if len(path) >= 2 && value != "" {
			if conn.Groups == nil {
				conn.Groups = map[string][]string{}
			}
			conn.Groups[path[1]] = append(conn.Groups[path[1]], vals...)
		}
	case "conditionals":
		// conditionals[group][rule][field|operator|value]
		if len(path) != 4 {
			return
		}
		group, errGroup := strconv.Atoi(path[1])
		rule, errRule := strconv.Atoi(path[2])
		if errGroup != nil || errRule != nil || group < 0 || rule < 0 ||
			group >= maxConditionalIndex || rule >= maxConditionalIndex {
			return
		}
		for len(conn.Conditionals) <= group {
			conn.Conditionals = append(conn.Conditionals, nil)
		}
		for len(conn.Conditionals[group]) <= rule {
			conn.Conditionals[group] = append(conn.Conditionals[group], forms.ConditionalRule{})
		}
		target := &conn.Conditionals[group][rule]
		switch path[3] {
		case "field":
			target.Field, _ = strconv.Atoi(value)
		case "operator":
			target.Operator = value
		case "value":
			target.Value = value
		}
	case "options":
		if len(path) == 2 {
			if conn.Options == nil {
				conn.Options = map[string]any{}
			}
			conn.Options[path[1]] = value
		}
	}
}

// bracketPath splits "a[b][c]" into [a b c].
func bracketPath(name string) ([]string, bool) {
	open := strings.IndexByte(name, '[')
	if open <= 0 || !strings.HasSuffix(name, "]") {
		return nil, false
	}
	path := []string{name[:open]}
	rest := name[open:]
	for rest != "" {
		if rest[0] != '[' {
			return nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, false
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}
	return path, true
}
