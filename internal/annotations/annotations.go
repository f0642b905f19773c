// Package annotations parses the `@Name(args)` directives and `@tag text` doc tags
// written in Go doc comments.
package annotations

import (
	"go/ast"
	"regexp"
	"strings"
)

var annotationLine = regexp.MustCompile(`^@([A-Za-z_][\w-]*)(?:\((.*?)\))?(?:\s+(.*))?$`)

// Annotation is one annotation line and the plain lines that continue it.
type Annotation struct {
	Name    string
	Args    string
	HasArgs bool
	Text    string
}

// Arg returns the directive argument with surrounding quotes removed.
func (a Annotation) Arg() string {
	return Unquote(a.Args)
}

// Doc is one parsed comment block.
type Doc struct {
	// Text is the free text before the first annotation.
	Text        string
	Annotations []Annotation
}

// Parse parses each non-nil comment group in order.
func Parse(groups ...*ast.CommentGroup) []Doc {
	var docs []Doc
	for _, g := range groups {
		if g == nil {
			continue
		}
		docs = append(docs, ParseText(g.Text()))
	}
	return docs
}

// ParseText parses raw comment text with the comment markers already removed.
func ParseText(text string) Doc {
	var (
		doc     Doc
		free    []string
		current *Annotation
		cont    []string
	)

	flush := func() {
		if current == nil {
			return
		}
		parts := append([]string{current.Text}, cont...)
		current.Text = strings.TrimSpace(strings.Join(parts, "\n"))
		doc.Annotations = append(doc.Annotations, *current)
		current, cont = nil, nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if m := annotationLine.FindStringSubmatch(trimmed); m != nil {
			flush()
			current = &Annotation{
				Name:    m[1],
				Args:    strings.TrimSpace(m[2]),
				HasArgs: strings.HasPrefix(trimmed[len(m[1])+1:], "("),
				Text:    strings.TrimSpace(m[3]),
			}
			continue
		}
		if current != nil {
			cont = append(cont, trimmed)
			continue
		}
		free = append(free, trimmed)
	}
	flush()

	doc.Text = strings.TrimSpace(strings.Join(free, "\n"))
	return doc
}

// Find returns the first annotation named name across docs. Matching is exact
// unless fold is set.
func Find(docs []Doc, name string, fold bool) (Annotation, bool) {
	for _, d := range docs {
		for _, a := range d.Annotations {
			if a.Name == name || (fold && strings.EqualFold(a.Name, name)) {
				return a, true
			}
		}
	}
	return Annotation{}, false
}

// All returns every annotation across docs in source order.
func All(docs []Doc) []Annotation {
	var all []Annotation
	for _, d := range docs {
		all = append(all, d.Annotations...)
	}
	return all
}

// Unquote removes every ', " and ` character from s.
func Unquote(s string) string {
	return strings.NewReplacer(`"`, "", `'`, "", "`", "").Replace(strings.TrimSpace(s))
}
