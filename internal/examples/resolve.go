package examples

import (
	"math"
	"sort"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/danielgtaylor/huma/v2"
)

const schemaPrefix = "#/components/schemas/"

type state struct {
	faker   *gofakeit.Faker
	schemas map[string]*huma.Schema
	policy  Policy
	stack   map[string]bool
}

// value returns an example for s. The second result reports that s leads back to a
// schema already being resolved.
func (st *state) value(s *huma.Schema) (any, bool) {
	if s == nil {
		return nil, false
	}
	if s.Ref != "" {
		return st.ref(s.Ref)
	}
	if len(s.AllOf) > 0 {
		merged := map[string]any{}
		for _, part := range s.AllOf {
			v, cyclic := st.value(part)
			if cyclic {
				continue
			}
			if obj, ok := v.(map[string]any); ok {
				for k, pv := range obj {
					merged[k] = pv
				}
			}
		}
		return merged, false
	}
	if len(s.Enum) > 0 {
		return s.Enum[st.faker.Number(0, len(s.Enum)-1)], false
	}

	switch s.Type {
	case huma.TypeString:
		return st.str(s), false
	case huma.TypeInteger:
		lo, hi := bounds(s, 0, 1000)
		return int64(st.faker.Number(int(math.Ceil(lo)), int(math.Floor(hi)))), false
	case huma.TypeNumber:
		lo, hi := bounds(s, 0, 1000)
		return math.Round(st.faker.Float64Range(lo, hi)*100) / 100, false
	case huma.TypeBoolean:
		return st.faker.Bool(), false
	case huma.TypeArray:
		return st.array(s), false
	case huma.TypeObject:
		return st.object(s), false
	}
	return nil, false
}

// ref follows a local schema reference, including references into properties.
func (st *state) ref(ref string) (any, bool) {
	path, ok := strings.CutPrefix(ref, schemaPrefix)
	if !ok {
		return nil, false
	}
	parts := strings.Split(path, "/")
	name := parts[0]
	if st.stack[name] {
		return nil, true
	}

	target := st.schemas[name]
	for i := 1; i+1 < len(parts) && target != nil; i += 2 {
		if parts[i] != "properties" {
			return nil, false
		}
		target = target.Properties[parts[i+1]]
	}

	st.stack[name] = true
	defer delete(st.stack, name)
	return st.value(target)
}

func (st *state) str(s *huma.Schema) string {
	var v string
	switch gen, ok := Formats[s.Format]; {
	case ok:
		v, _ = gen(st.faker, s).(string)
	case s.Pattern != "":
		return st.faker.Regex(s.Pattern)
	default:
		v = st.faker.Word()
	}

	if s.MinLength != nil {
		for len(v) < *s.MinLength {
			v += st.faker.Letter()
		}
	}
	if s.MaxLength != nil && len(v) > *s.MaxLength {
		v = v[:*s.MaxLength]
	}
	return v
}

func (st *state) array(s *huma.Schema) []any {
	n := st.faker.Number(1, 2)
	if s.MinItems != nil && n < *s.MinItems {
		n = *s.MinItems
	}
	if s.MaxItems != nil && n > *s.MaxItems {
		n = *s.MaxItems
	}

	items := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, cyclic := st.value(s.Items)
		if cyclic {
			return []any{}
		}
		items = append(items, v)
	}
	return items
}

func (st *state) object(s *huma.Schema) map[string]any {
	out := map[string]any{}

	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		required := isRequired(s, name)
		if !required && !st.include() {
			continue
		}
		v, cyclic := st.value(s.Properties[name])
		if cyclic {
			if required {
				out[name] = nil
			}
			continue
		}
		out[name] = v
	}

	if extra, ok := s.AdditionalProperties.(*huma.Schema); ok && len(s.Properties) == 0 {
		if v, cyclic := st.value(extra); !cyclic {
			out[st.faker.Word()] = v
		}
	}
	return out
}

func (st *state) include() bool {
	switch st.policy {
	case PolicyAlways:
		return true
	case PolicyNever:
		return false
	}
	return st.faker.Bool()
}

func isRequired(s *huma.Schema, name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// bounds returns the value range of a numeric schema, defaulting to [lo, hi].
func bounds(s *huma.Schema, lo, hi float64) (float64, float64) {
	if s.Minimum != nil {
		lo = *s.Minimum
	}
	if s.ExclusiveMinimum != nil {
		lo = *s.ExclusiveMinimum + 1
	}
	if s.Maximum != nil {
		hi = *s.Maximum
	}
	if s.ExclusiveMaximum != nil {
		hi = *s.ExclusiveMaximum - 1
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
