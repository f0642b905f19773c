package schema

import (
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/barisgit/fluxdoc/internal/registry"
)

var ruleFormats = map[string]string{
	"email":       "email",
	"url":         "url",
	"http_url":    "url",
	"uri":         "uri",
	"uuid":        "uuid",
	"uuid4":       "uuid",
	"datetime":    "date-time",
	"credit_card": "credit-card",
	"ip":          "ipv4",
	"ipv4":        "ipv4",
	"ipv6":        "ipv6",
	"hostname":    "hostname",
	"fqdn":        "hostname",
}

var rulePatterns = map[string]string{
	"mongodb":  `^[a-f\d]{24}$`,
	"alpha":    `^[a-zA-Z]+$`,
	"alphanum": `^[a-zA-Z0-9]+$`,
	"numeric":  `^[-+]?[0-9]+(?:\.[0-9]+)?$`,
	"e164":     `^\+[1-9]?[0-9]{7,14}$`,
}

// applyRules adds the constraints of rules to s. References are left untouched.
func applyRules(s *huma.Schema, rules []registry.Rule) {
	if s == nil || s.Ref != "" {
		return
	}
	for _, rule := range rules {
		if format, ok := ruleFormats[rule.Name]; ok {
			s.Format = format
			continue
		}
		if pattern, ok := rulePatterns[rule.Name]; ok {
			s.Pattern = pattern
			continue
		}

		switch rule.Name {
		case "oneof":
			s.Enum = nil
			for _, v := range strings.Fields(rule.Param) {
				s.Enum = append(s.Enum, enumValue(s.Type, v))
			}
		case "len":
			bound(s, rule.Param, true, true, false)
		case "min", "gte":
			bound(s, rule.Param, true, false, false)
		case "max", "lte":
			bound(s, rule.Param, false, true, false)
		case "gt":
			bound(s, rule.Param, true, false, true)
		case "lt":
			bound(s, rule.Param, false, true, true)
		}
	}
}

// bound sets a lower and/or upper limit whose meaning depends on the kind: a length
// for strings, an item count for arrays and a value range for numbers.
func bound(s *huma.Schema, param string, lower, upper, exclusive bool) {
	n, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return
	}

	switch s.Type {
	case huma.TypeString, huma.TypeArray:
		size := int(n)
		if exclusive && lower {
			size++
		}
		if exclusive && upper {
			size--
		}
		if s.Type == huma.TypeString {
			if lower {
				s.MinLength = &size
			}
			if upper {
				s.MaxLength = &size
			}
			return
		}
		if lower {
			s.MinItems = &size
		}
		if upper {
			s.MaxItems = &size
		}
	case huma.TypeInteger, huma.TypeNumber:
		switch {
		case exclusive && lower:
			s.ExclusiveMinimum = &n
		case exclusive && upper:
			s.ExclusiveMaximum = &n
		default:
			if lower {
				s.Minimum = &n
			}
			if upper {
				s.Maximum = &n
			}
		}
	}
}

func enumValue(kind, v string) any {
	switch kind {
	case huma.TypeInteger:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case huma.TypeNumber:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return strings.Trim(v, "'")
}
