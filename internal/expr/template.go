package expr

import (
	"regexp"
	"slices"
	"strings"
)

// placeholderPattern matches $:name inside action templates. A dot is part
// of the name only when more name characters follow it, so "$:name." ends a
// sentence.
var placeholderPattern = regexp.MustCompile(`\$:([A-Za-z0-9_-]+(?:\.[A-Za-z0-9_-]+)*)`)

// Template is an action command with $:name placeholders.
type Template struct {
	Source string

	// spans holds [start, end, nameStart, nameEnd] for each placeholder.
	spans [][]int
}

// ParseTemplate scans text for placeholders. Any text is a valid template.
func ParseTemplate(text string) *Template {
	return &Template{
		Source: text,
		spans:  placeholderPattern.FindAllStringSubmatchIndex(text, -1),
	}
}

// Placeholders returns the sorted, de-duplicated placeholder names.
func (t *Template) Placeholders() []string {
	var names []string
	for _, s := range t.spans {
		name := t.Source[s[2]:s[3]]
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Render substitutes every placeholder with the literal text of its value.
// All placeholders must resolve; the first missing one is reported as a
// *MissingVariableError and nothing is rendered.
func (t *Template) Render(env Env) (string, error) {
	if len(t.spans) == 0 {
		return t.Source, nil
	}

	var b strings.Builder
	last := 0
	for _, s := range t.spans {
		name := t.Source[s[2]:s[3]]
		val, ok := env.Lookup(name)
		if !ok {
			return "", &MissingVariableError{Name: name}
		}
		b.WriteString(t.Source[last:s[0]])
		b.WriteString(val.Literal())
		last = s[1]
	}
	b.WriteString(t.Source[last:])
	return b.String(), nil
}
