package routes

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// RootTag names the group mounted at "/".
const RootTag = "General"

// Tags collects the user and admin tag groups. The first registration of a name
// wins in either group.
type Tags struct {
	seen  map[string]struct{}
	user  []*huma.Tag
	admin []*huma.Tag
}

// NewTags creates an empty tag registry.
func NewTags() *Tags {
	return &Tags{seen: make(map[string]struct{})}
}

// Register adds a tag unless one with the same name exists. It reports whether the
// tag was added.
func (t *Tags) Register(name, description string, admin bool) bool {
	if _, ok := t.seen[name]; ok {
		return false
	}
	t.seen[name] = struct{}{}

	tag := &huma.Tag{Name: name, Description: description}
	if admin {
		t.admin = append(t.admin, tag)
	} else {
		t.user = append(t.user, tag)
	}
	return true
}

// Len returns the number of registered tags.
func (t *Tags) Len() int { return len(t.seen) }

// Sorted returns the user group followed by the admin group, each ordered by name.
func (t *Tags) Sorted() []*huma.Tag {
	c := collate.New(language.English)
	byName := func(tags []*huma.Tag) []*huma.Tag {
		out := append([]*huma.Tag(nil), tags...)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Name, out[j].Name) < 0
		})
		return out
	}
	return append(byName(t.user), byName(t.admin)...)
}

// DeriveTag turns a route into a tag name: "users/orders" becomes "Users - Orders"
// and the root route becomes RootTag.
func DeriveTag(route string) string {
	var parts []string
	for _, seg := range strings.Split(route, "/") {
		if seg == "" {
			continue
		}
		parts = append(parts, Capitalize(seg))
	}
	if len(parts) == 0 {
		return RootTag
	}
	return strings.Join(parts, " - ")
}

// IsAdmin reports whether a route belongs to the admin group.
func IsAdmin(route string) bool {
	return strings.Contains(route, "admin")
}

// Capitalize upper-cases the first letter of s and keeps the rest as is.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return cases.Upper(language.English).String(string(r)) + s[size:]
}
