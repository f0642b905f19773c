package registry

import "strings"

// Rule is one validator rule, e.g. "min=3" or "required".
type Rule struct {
	Name  string
	Param string
}

// Rules is the parsed content of a `validate` struct tag. Rules after "dive"
// apply to slice or map elements.
type Rules struct {
	Field []Rule
	Dive  []Rule
}

// ParseRules parses a go-playground/validator tag value.
func ParseRules(tag string) Rules {
	var (
		rules Rules
		dive  bool
	)
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "dive" {
			dive = true
			continue
		}
		name, param, _ := strings.Cut(part, "=")
		rule := Rule{Name: name, Param: param}
		if dive {
			rules.Dive = append(rules.Dive, rule)
		} else {
			rules.Field = append(rules.Field, rule)
		}
	}
	return rules
}

// Has reports whether the field level rules include name.
func (r Rules) Has(name string) bool {
	for _, rule := range r.Field {
		if rule.Name == name {
			return true
		}
	}
	return false
}

// Required reports whether the field carries the required rule.
func (r Rules) Required() bool { return r.Has("required") }
